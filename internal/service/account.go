package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/logging"
	"github.com/Saideepak144/KodBank/internal/repository"
)

type accountRepo interface {
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
}

type AccountService struct {
	accounts   accountRepo
	maxRetries int
}

func NewAccountService(accounts accountRepo, maxRetries int) *AccountService {
	return &AccountService{accounts: accounts, maxRetries: maxRetries}
}

// CreateAccount opens an account with the given opening balance. The seed
// deposit at registration is the only way money enters the system; every
// later balance change goes through the transfer engine.
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, accountName string, openingBalance int64) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if accountType == "" || accountName == "" {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrValidation)
	}
	if openingBalance < 0 {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrValidation)
	}

	// Number collisions are a retryable internal condition, never a user
	// error unless the retries run out.
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		number, err := generateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("CreateAccount: %w", err)
		}

		account := &domain.Account{
			ID:            uuid.New(),
			UserID:        userID,
			AccountNumber: number,
			AccountType:   accountType,
			AccountName:   accountName,
			Balance:       openingBalance,
			Version:       1,
			CreatedAt:     time.Now().UTC(),
		}

		err = s.accounts.Create(ctx, account)
		if err == nil {
			log.Info("account created",
				"account_number", account.AccountNumber,
				"user_id", userID,
				"account_type", accountType,
			)
			return account, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("CreateAccount: %w", err)
		}

		lastErr = err
		log.Warn("account number collision, regenerating", "attempt", attempt+1)
	}

	return nil, fmt.Errorf("CreateAccount: exhausted %d attempts: %w: %w", s.maxRetries, domain.ErrPersistence, lastErr)
}

func (s *AccountService) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetUserAccounts: %w", err)
	}
	return accounts, nil
}

// Account numbers follow the original KodBank shape: "KB" plus an opaque
// uppercase base-36 suffix.
const accountNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func generateAccountNumber() (string, error) {
	suffix := make([]byte, 12)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(accountNumberAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		suffix[i] = accountNumberAlphabet[n.Int64()]
	}
	return "KB" + string(suffix), nil
}
