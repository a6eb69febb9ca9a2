package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("invalid request")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrSelfTransfer        = errors.New("cannot transfer to the same account")
	ErrAccountNotFound     = errors.New("account not found")
	ErrDestinationNotFound = errors.New("destination account not found")
	ErrNotAccountOwner     = errors.New("account is not owned by caller")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrConcurrencyConflict = errors.New("account was modified concurrently")
	ErrPersistence         = errors.New("storage failure")
	ErrEmailTaken          = errors.New("email already registered")

	// ErrReconciliationRequired means the balance mutations and the ledger
	// entry committed but the transfer audit trail could not be completed.
	// The money movement is real and is never rolled back for this; the
	// request is surfaced as failed so the gap gets reconciled by hand.
	ErrReconciliationRequired = errors.New("transfer committed but audit record missing")
)
