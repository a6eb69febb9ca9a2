package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/repository"
	"github.com/Saideepak144/KodBank/internal/testutil"
)

func TestAccountRepository_GetByNumber(t *testing.T) {
	db := testutil.SetupBankDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	seeded := testutil.SeedTestAccount(t, db, owner, "KBREPOAAAA001", 1234)

	account, err := repo.GetByNumber(ctx, seeded.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, account.ID)
	assert.Equal(t, int64(1234), account.Balance)
	assert.Equal(t, int64(1), account.Version)

	_, err = repo.GetByNumber(ctx, "KBNOSUCHACCT01")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountRepository_UpdateBalance_StaleVersion(t *testing.T) {
	db := testutil.SetupBankDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	seeded := testutil.SeedTestAccount(t, db, uuid.New(), "KBREPOBBBB001", 1000)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	// Version 1 is current; claiming to move from version 5 is a lost race.
	err = repo.UpdateBalance(ctx, tx, seeded.AccountNumber, 900, 6)
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestAccountRepository_UpdateBalance_NegativeBalanceRejected(t *testing.T) {
	db := testutil.SetupBankDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	seeded := testutil.SeedTestAccount(t, db, uuid.New(), "KBREPOCCCC001", 100)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	// The schema's balance check backstops the engine's own guard.
	err = repo.UpdateBalance(ctx, tx, seeded.AccountNumber, -50, 2)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestAccountRepository_UpdateBalance_BumpsVersion(t *testing.T) {
	db := testutil.SetupBankDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	seeded := testutil.SeedTestAccount(t, db, uuid.New(), "KBREPODDDD001", 1000)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, repo.UpdateBalance(ctx, tx, seeded.AccountNumber, 750, 2))
	require.NoError(t, tx.Commit())

	account, err := repo.GetByNumber(ctx, seeded.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(750), account.Balance)
	assert.Equal(t, int64(2), account.Version)
}
