package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/repository"
	"github.com/Saideepak144/KodBank/internal/testutil"
)

func seedSessionToken(t *testing.T, repo *repository.TokenRepository, value string, expiresAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.SessionToken{
		ID:         uuid.New(),
		TokenValue: value,
		UserID:     uuid.New(),
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestTokenRepository_Lifecycle(t *testing.T) {
	db := testutil.SetupAuthDB(t)
	repo := repository.NewTokenRepository(db)
	ctx := context.Background()

	seedSessionToken(t, repo, "live-token", time.Now().UTC().Add(30*time.Minute))

	token, err := repo.GetValid(ctx, "live-token")
	require.NoError(t, err)
	assert.Equal(t, "live-token", token.TokenValue)

	require.NoError(t, repo.Delete(ctx, "live-token"))

	_, err = repo.GetValid(ctx, "live-token")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	db := testutil.SetupAuthDB(t)
	repo := repository.NewTokenRepository(db)
	ctx := context.Background()

	seedSessionToken(t, repo, "expired-token", time.Now().UTC().Add(-time.Minute))
	seedSessionToken(t, repo, "live-token", time.Now().UTC().Add(30*time.Minute))

	// An expired row no longer authenticates even before the sweep runs.
	_, err := repo.GetValid(ctx, "expired-token")
	require.ErrorIs(t, err, domain.ErrNotFound)

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetValid(ctx, "live-token")
	require.NoError(t, err)
}
