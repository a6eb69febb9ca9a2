package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Saideepak144/KodBank/internal/auth"
	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/logging"
	"github.com/Saideepak144/KodBank/internal/service"
)

type transferService interface {
	Transfer(ctx context.Context, req service.TransferRequest) (*domain.Transaction, error)
}

type historyReader interface {
	HistoryFor(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
}

type TransferHandler struct {
	transfers transferService
	queries   historyReader
}

func NewTransferHandler(transfers transferService, queries historyReader) *TransferHandler {
	return &TransferHandler{transfers: transfers, queries: queries}
}

type transferRequest struct {
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if r.FromAccount == "" {
		errs = append(errs, FieldError{Field: "fromAccount", Message: "required"})
	}
	if r.ToAccount == "" {
		errs = append(errs, FieldError{Field: "toAccount", Message: "required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	return errs
}

type transferResponse struct {
	TransactionID int64  `json:"transactionId"`
	FromAccount   string `json:"fromAccount"`
	ToAccount     string `json:"toAccount"`
	Amount        string `json:"amount"`
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	cents, err := domain.ParseAmount(req.Amount)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "amount", Message: "at most two decimal places"}})
		return
	}

	txn, err := h.transfers.Transfer(r.Context(), service.TransferRequest{
		UserID:      userID,
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      cents,
		Description: req.Description,
	})
	if err != nil {
		log.Warn("transfer rejected", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, transferResponse{
		TransactionID: txn.ID,
		FromAccount:   txn.FromAccount,
		ToAccount:     txn.ToAccount,
		Amount:        domain.FormatAmount(txn.Amount),
	})
}

type transactionDTO struct {
	TransactionID int64     `json:"transactionId"`
	FromAccount   string    `json:"fromAccount"`
	ToAccount     string    `json:"toAccount"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	txns, err := h.queries.HistoryFor(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(txns))
	for i, t := range txns {
		dtos[i] = transactionDTO{
			TransactionID: t.ID,
			FromAccount:   t.FromAccount,
			ToAccount:     t.ToAccount,
			Amount:        domain.FormatAmount(t.Amount),
			Description:   t.Description,
			CreatedAt:     t.CreatedAt,
		}
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
