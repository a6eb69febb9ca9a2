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

func TestLedgerRepository_AppendAndGetByID(t *testing.T) {
	db := testutil.SetupBankDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	testutil.SeedTestAccount(t, db, owner, "KBLEDGSRC0001", 1000)
	testutil.SeedTestAccount(t, db, owner, "KBLEDGDST0001", 0)

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txn := &domain.Transaction{
		FromAccount: "KBLEDGSRC0001",
		ToAccount:   "KBLEDGDST0001",
		Amount:      250,
		Description: "groceries",
	}
	require.NoError(t, repo.Append(ctx, tx, txn))
	require.NoError(t, tx.Commit())

	assert.Positive(t, txn.ID)
	assert.False(t, txn.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
	assert.Equal(t, "KBLEDGSRC0001", got.FromAccount)
	assert.Equal(t, "KBLEDGDST0001", got.ToAccount)
	assert.Equal(t, int64(250), got.Amount)
	assert.Equal(t, "groceries", got.Description)

	_, err = repo.GetByID(ctx, txn.ID+1000)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
