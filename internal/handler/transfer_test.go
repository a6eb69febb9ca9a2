package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saideepak144/KodBank/internal/auth"
	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/service"
)

type stubTransferService struct {
	txn     *domain.Transaction
	err     error
	lastReq service.TransferRequest
}

func (s *stubTransferService) Transfer(_ context.Context, req service.TransferRequest) (*domain.Transaction, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.txn, nil
}

func postTransfer(t *testing.T, h *TransferHandler, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/transfer", strings.NewReader(body))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestTransferCreate_Success(t *testing.T) {
	stub := &stubTransferService{
		txn: &domain.Transaction{ID: 42, FromAccount: "KBAAAA11112222", ToAccount: "KBBBBB33334444", Amount: 12550},
	}
	h := NewTransferHandler(stub, nil)
	userID := uuid.New()

	rec := postTransfer(t, h, userID,
		`{"fromAccount":"KBAAAA11112222","toAccount":"KBBBBB33334444","amount":"125.50","description":"dinner"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	// Decimal amounts cross the wire; the engine sees minor units.
	assert.Equal(t, int64(12550), stub.lastReq.Amount)
	assert.Equal(t, userID, stub.lastReq.UserID)
	assert.Equal(t, "dinner", stub.lastReq.Description)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TransactionID int64  `json:"transactionId"`
			Amount        string `json:"amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(42), resp.Data.TransactionID)
	assert.Equal(t, "125.50", resp.Data.Amount)
}

func TestTransferCreate_SubCentAmountRejected(t *testing.T) {
	h := NewTransferHandler(&stubTransferService{}, nil)

	rec := postTransfer(t, h, uuid.New(),
		`{"fromAccount":"KBAAAA11112222","toAccount":"KBBBBB33334444","amount":"10.005"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferCreate_MissingFields(t *testing.T) {
	h := NewTransferHandler(&stubTransferService{}, nil)

	rec := postTransfer(t, h, uuid.New(), `{"amount":"10.00"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
}

func TestTransferCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"self transfer", domain.ErrSelfTransfer, http.StatusBadRequest, "SELF_TRANSFER_NOT_ALLOWED"},
		{"unknown source", domain.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"unknown destination", domain.ErrDestinationNotFound, http.StatusNotFound, "DESTINATION_NOT_FOUND"},
		{"not the owner", domain.ErrNotAccountOwner, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"lost race", domain.ErrConcurrencyConflict, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"reconciliation required", domain.ErrReconciliationRequired, http.StatusInternalServerError, "RECONCILIATION_REQUIRED"},
		{"persistence failure", domain.ErrPersistence, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransferHandler(&stubTransferService{err: tt.err}, nil)

			rec := postTransfer(t, h, uuid.New(),
				`{"fromAccount":"KBAAAA11112222","toAccount":"KBBBBB33334444","amount":"10.00"}`)

			require.Equal(t, tt.wantStatus, rec.Code)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestTransferCreate_Unauthenticated(t *testing.T) {
	h := NewTransferHandler(&stubTransferService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transfer", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
