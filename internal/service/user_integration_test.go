package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/repository"
	"github.com/Saideepak144/KodBank/internal/service"
	"github.com/Saideepak144/KodBank/internal/testutil"
)

func TestRegister(t *testing.T) {
	authDB := testutil.SetupAuthDB(t)
	bankDB := testutil.SetupBankDB(t)

	users := repository.NewUserRepository(authDB)
	accounts := service.NewAccountService(repository.NewAccountRepository(bankDB), 5)
	svc := service.NewUserService(users, accounts, 100000)
	ctx := context.Background()

	user, account, err := svc.Register(ctx, "Alice", "Alice@Test.com", "s3cret-pass")

	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))

	require.NotNil(t, account)
	assert.Equal(t, user.ID, account.UserID)
	assert.Equal(t, domain.AccountTypeSavings, account.AccountType)
	assert.Equal(t, "Primary Savings", account.AccountName)
	assert.Equal(t, int64(100000), account.Balance)

	// Email lookups are case-insensitive.
	stored, err := users.GetByEmail(ctx, "alice@test.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	authDB := testutil.SetupAuthDB(t)
	bankDB := testutil.SetupBankDB(t)

	users := repository.NewUserRepository(authDB)
	accounts := service.NewAccountService(repository.NewAccountRepository(bankDB), 5)
	svc := service.NewUserService(users, accounts, 100000)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "alice@test.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Impostor", "ALICE@test.com", "other-pass")
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}
