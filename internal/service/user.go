package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/logging"
)

type userRepo interface {
	Create(ctx context.Context, user *domain.User) error
}

type accountCreator interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, accountName string, openingBalance int64) (*domain.Account, error)
}

type UserService struct {
	users       userRepo
	accounts    accountCreator
	seedBalance int64
}

func NewUserService(users userRepo, accounts accountCreator, seedBalance int64) *UserService {
	return &UserService{users: users, accounts: accounts, seedBalance: seedBalance}
}

// Register creates the user in the identity store and seeds their default
// Savings account in the bank store. The stores are independent databases,
// so seeding failure cannot be rolled into the user insert; the user is
// kept and the missing account is logged for follow-up, matching the
// original registration behavior.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, *domain.Account, error) {
	log := logging.FromContext(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("Register: hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("Register: %w", err)
	}

	account, err := s.accounts.CreateAccount(ctx, user.ID, domain.AccountTypeSavings, "Primary Savings", s.seedBalance)
	if err != nil {
		log.Error("default account seeding failed", "user_id", user.ID, "error", err)
		return user, nil, nil
	}

	log.Info("user registered", "user_id", user.ID, "default_account", account.AccountNumber)
	return user, account, nil
}
