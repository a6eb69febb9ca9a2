package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/logging"
)

type transferAccountRepo interface {
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, number string, newBalance, newVersion int64) error
}

type transferLedgerRepo interface {
	Append(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
}

type transferEventRepo interface {
	Create(ctx context.Context, event *domain.TransferEvent) error
}

type TransferRequest struct {
	UserID      uuid.UUID
	FromAccount string
	ToAccount   string
	Amount      int64
	Description string
}

// TransferService moves money between two accounts as one atomic unit:
// debit, credit and ledger append commit together or not at all. Atomicity
// is delegated to the storage engine's transaction; row locks taken in
// lexicographic account-number order keep concurrent transfers between the
// same pair from deadlocking.
type TransferService struct {
	accounts   transferAccountRepo
	ledger     transferLedgerRepo
	events     transferEventRepo
	db         *sql.DB
	maxRetries int
}

func NewTransferService(accounts transferAccountRepo, ledger transferLedgerRepo, events transferEventRepo, db *sql.DB, maxRetries int) *TransferService {
	return &TransferService{
		accounts:   accounts,
		ledger:     ledger,
		events:     events,
		db:         db,
		maxRetries: maxRetries,
	}
}

func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if err := validateTransferRequest(req); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	var (
		txn *domain.Transaction
		err error
	)
	// A lost race on a balance is safe to retry from validation; everything
	// else is terminal for this request.
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		txn, err = s.attemptTransfer(ctx, req)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			break
		}
		log.Warn("transfer lost a balance race, retrying",
			"from_account", req.FromAccount,
			"to_account", req.ToAccount,
			"attempt", attempt+1,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	log.Info("transfer completed",
		"transaction_id", txn.ID,
		"from_account", txn.FromAccount,
		"to_account", txn.ToAccount,
		"amount", txn.Amount,
	)
	return txn, nil
}

// validateTransferRequest covers the purely syntactic preconditions, in
// reporting order: identifiers first, then amount, then self-transfer.
func validateTransferRequest(req TransferRequest) error {
	if !validAccountNumber(req.FromAccount) || !validAccountNumber(req.ToAccount) {
		return domain.ErrValidation
	}
	if req.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if req.FromAccount == req.ToAccount {
		return domain.ErrSelfTransfer
	}
	return nil
}

func validAccountNumber(number string) bool {
	if len(number) < 4 || len(number) > 34 {
		return false
	}
	for _, c := range number {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return true
}

// attemptTransfer runs one full pass: cheap precondition reads, then the
// transactional commit. Precondition failures leave no trace; failures
// after validation leave an unwound event.
func (s *TransferService) attemptTransfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error) {
	if err := s.checkPreconditions(ctx, req); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, req, domain.TransferStateValidated, "", nil)

	txn, err := s.executeTransfer(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrReconciliationRequired) {
			s.recordEvent(ctx, req, domain.TransferStateUnwound, err.Error(), nil)
		}
		return nil, err
	}
	return txn, nil
}

// checkPreconditions validates the stateful preconditions in their
// reporting order, before any mutation. The source must exist and belong
// to the caller; the destination only has to exist — crediting someone
// else's account is allowed by contract (open payee).
func (s *TransferService) checkPreconditions(ctx context.Context, req TransferRequest) error {
	src, err := s.accounts.GetByNumber(ctx, req.FromAccount)
	if err != nil {
		return fmt.Errorf("checkPreconditions: source: %w", err)
	}
	if src.UserID != req.UserID {
		return fmt.Errorf("checkPreconditions: %w", domain.ErrNotAccountOwner)
	}

	if _, err := s.accounts.GetByNumber(ctx, req.ToAccount); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Errorf("checkPreconditions: %w", domain.ErrDestinationNotFound)
		}
		return fmt.Errorf("checkPreconditions: destination: %w", err)
	}

	if src.Balance < req.Amount {
		return fmt.Errorf("checkPreconditions: %w", domain.ErrInsufficientFunds)
	}

	return nil
}

func (s *TransferService) executeTransfer(ctx context.Context, req TransferRequest) (*domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: begin tx: %w", domain.ErrPersistence)
	}
	defer tx.Rollback()

	locked, err := s.lockAccountsInOrder(ctx, tx, req.FromAccount, req.ToAccount)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}
	src, dst := locked[req.FromAccount], locked[req.ToAccount]

	// The balance is re-checked under lock: a concurrent transfer may have
	// spent it between the precondition read and here.
	if src.Balance < req.Amount {
		return nil, fmt.Errorf("executeTransfer: %w", domain.ErrInsufficientFunds)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, src.AccountNumber, src.Balance-req.Amount, src.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: debit: %w", err)
	}
	s.recordEvent(ctx, req, domain.TransferStateDebited, "", nil)

	if err := s.accounts.UpdateBalance(ctx, tx, dst.AccountNumber, dst.Balance+req.Amount, dst.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: credit: %w", err)
	}
	s.recordEvent(ctx, req, domain.TransferStateCredited, "", nil)

	txn := &domain.Transaction{
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if err := s.ledger.Append(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("executeTransfer: ledger append: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeTransfer: commit: %w", domain.ErrPersistence)
	}

	// Past this point the money movement and its ledger entry are durable.
	// A failure writing the terminal audit event must not roll them back;
	// it is escalated for manual reconciliation instead.
	event := &domain.TransferEvent{
		ID:            uuid.New(),
		TransactionID: &txn.ID,
		FromAccount:   req.FromAccount,
		ToAccount:     req.ToAccount,
		State:         domain.TransferStateRecorded,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		logging.FromContext(ctx).Error("transfer committed but audit trail incomplete",
			"transaction_id", txn.ID,
			"from_account", req.FromAccount,
			"to_account", req.ToAccount,
			"amount", req.Amount,
			"error", err,
		)
		return nil, fmt.Errorf("executeTransfer: %w", domain.ErrReconciliationRequired)
	}

	return txn, nil
}

// lockAccountsInOrder takes FOR UPDATE locks on both rows, always in
// lexicographic account-number order, so two transfers between the same
// pair in opposite directions cannot deadlock.
func (s *TransferService) lockAccountsInOrder(ctx context.Context, tx *sql.Tx, numbers ...string) (map[string]*domain.Account, error) {
	ordered := make([]string, len(numbers))
	copy(ordered, numbers)
	sort.Strings(ordered)

	result := make(map[string]*domain.Account, len(numbers))
	for _, n := range ordered {
		acct, err := s.accounts.GetForUpdate(ctx, tx, n)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[n] = acct
	}
	return result, nil
}

// recordEvent writes an audit state transition outside the transfer's
// transaction. Intermediate event writes are best effort; a miss is logged
// and never fails the transfer.
func (s *TransferService) recordEvent(ctx context.Context, req TransferRequest, state domain.TransferState, detail string, transactionID *int64) {
	event := &domain.TransferEvent{
		ID:            uuid.New(),
		TransactionID: transactionID,
		FromAccount:   req.FromAccount,
		ToAccount:     req.ToAccount,
		State:         state,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("transfer event write failed",
			"state", state,
			"from_account", req.FromAccount,
			"to_account", req.ToAccount,
			"error", err,
		)
	}
}
