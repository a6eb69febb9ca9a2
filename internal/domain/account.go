package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountType is an open-ended label; the core attaches no behavior to it.
type AccountType string

const (
	AccountTypeSavings  AccountType = "Savings"
	AccountTypeChecking AccountType = "Checking"
)

type Account struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	AccountType   AccountType
	AccountName   string
	Balance       int64
	Version       int64
	CreatedAt     time.Time
}
