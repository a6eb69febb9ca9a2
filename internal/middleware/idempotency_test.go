package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saideepak144/KodBank/internal/auth"
	"github.com/Saideepak144/KodBank/internal/handler"
	"github.com/Saideepak144/KodBank/internal/repository"
)

type memoryIdempotencyRepo struct {
	entries map[string]*repository.IdempotencyCacheEntry
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{entries: make(map[string]*repository.IdempotencyCacheEntry)}
}

func (m *memoryIdempotencyRepo) Get(_ context.Context, key string, userID uuid.UUID) (*repository.IdempotencyCacheEntry, error) {
	return m.entries[key+"/"+userID.String()], nil
}

func (m *memoryIdempotencyRepo) Set(_ context.Context, entry *repository.IdempotencyCacheEntry) (bool, error) {
	k := entry.Key + "/" + entry.UserID.String()
	if _, exists := m.entries[k]; exists {
		return false, nil
	}
	m.entries[k] = entry
	return true, nil
}

func idempotentRequest(userID uuid.UUID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/transfer", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func TestIdempotency_PassThroughWithoutKey(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0
	wrapped := Idempotency(repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler.RespondSuccess(w, http.StatusOK, map[string]string{"n": "1"})
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, idempotentRequest(uuid.New(), "", `{"amount":"10.00"}`))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2, calls)
	assert.Empty(t, repo.entries)
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	userID := uuid.New()
	body := `{"fromAccount":"KBAAAA11112222","toAccount":"KBBBBB33334444","amount":"10.00"}`

	calls := 0
	wrapped := Idempotency(repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler.RespondSuccess(w, http.StatusOK, map[string]int64{"transactionId": 7})
	}))

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, idempotentRequest(userID, "key-1", body))
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, 1, calls)

	// The same key with the same request replays without reaching the
	// handler; no second transfer happens.
	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, idempotentRequest(userID, "key-1", body))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_ConflictOnDifferentRequest(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	userID := uuid.New()

	calls := 0
	wrapped := Idempotency(repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler.RespondSuccess(w, http.StatusOK, map[string]int64{"transactionId": 7})
	}))

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, idempotentRequest(userID, "key-1", `{"amount":"10.00"}`))
	require.Equal(t, http.StatusOK, first.Code)

	// Reusing the key with a different body is a client bug, not a retry.
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, idempotentRequest(userID, "key-1", `{"amount":"999.00"}`))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, calls)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", resp.Error.Code)
}

func TestIdempotency_KeysAreScopedPerUser(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	body := `{"amount":"10.00"}`

	calls := 0
	wrapped := Idempotency(repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler.RespondSuccess(w, http.StatusOK, map[string]int{"n": calls})
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, idempotentRequest(uuid.New(), "shared-key", body))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2, calls)
}

func TestIdempotency_ServerErrorsNotCached(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	userID := uuid.New()
	body := `{"amount":"10.00"}`

	calls := 0
	wrapped := Idempotency(repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			handler.RespondAppError(w, handler.ErrInternalError, nil)
			return
		}
		handler.RespondSuccess(w, http.StatusOK, map[string]int64{"transactionId": 7})
	}))

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, idempotentRequest(userID, "key-1", body))
	require.Equal(t, http.StatusInternalServerError, first.Code)

	// A transient failure must stay retryable under the same key.
	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, idempotentRequest(userID, "key-1", body))

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Empty(t, second.Header().Get("X-Idempotent-Replayed"))
}

func TestIdempotency_ReconciliationResponseIsCached(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	userID := uuid.New()
	body := `{"amount":"10.00"}`

	calls := 0
	wrapped := Idempotency(repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler.RespondAppError(w, handler.ErrReconciliationRequired, nil)
	}))

	first := httptest.NewRecorder()
	wrapped.ServeHTTP(first, idempotentRequest(userID, "key-1", body))
	require.Equal(t, http.StatusInternalServerError, first.Code)

	// The money already moved; retrying under the same key must replay the
	// outcome instead of running another transfer.
	second := httptest.NewRecorder()
	wrapped.ServeHTTP(second, idempotentRequest(userID, "key-1", body))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_EntryCarriesTTL(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	userID := uuid.New()

	wrapped := Idempotency(repo)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.RespondSuccess(w, http.StatusOK, map[string]int64{"transactionId": 7})
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, idempotentRequest(userID, "key-1", `{"amount":"10.00"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	entry := repo.entries["key-1/"+userID.String()]
	require.NotNil(t, entry)
	assert.WithinDuration(t, time.Now().UTC().Add(idempotencyTTL), entry.ExpiresAt, time.Minute)
}
