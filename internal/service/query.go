package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Saideepak144/KodBank/internal/domain"
)

type queryLedgerRepo interface {
	ListByAccounts(ctx context.Context, numbers []string) ([]domain.Transaction, error)
}

// QueryService is the read-only side: balances and history derived from
// the account store and the ledger. It never mutates either.
type QueryService struct {
	accounts accountRepo
	ledger   queryLedgerRepo
}

func NewQueryService(accounts accountRepo, ledger queryLedgerRepo) *QueryService {
	return &QueryService{accounts: accounts, ledger: ledger}
}

// BalanceOf returns the account only to its owner.
func (s *QueryService) BalanceOf(ctx context.Context, number string, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("BalanceOf: %w", err)
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("BalanceOf: %w", domain.ErrNotAccountOwner)
	}
	return account, nil
}

// HistoryFor returns every ledger entry touching any of the caller's
// accounts, newest first. A user with no accounts gets an empty history.
func (s *QueryService) HistoryFor(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("HistoryFor: %w", err)
	}
	if len(accounts) == 0 {
		return []domain.Transaction{}, nil
	}

	numbers := make([]string, len(accounts))
	for i := range accounts {
		numbers[i] = accounts[i].AccountNumber
	}

	txns, err := s.ledger.ListByAccounts(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("HistoryFor: %w", err)
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return txns, nil
}
