package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Saideepak144/KodBank/internal/auth"
	"github.com/Saideepak144/KodBank/internal/domain"
	"github.com/Saideepak144/KodBank/internal/logging"
)

type accountService interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, accountType domain.AccountType, accountName string, openingBalance int64) (*domain.Account, error)
	GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
}

type balanceReader interface {
	BalanceOf(ctx context.Context, number string, userID uuid.UUID) (*domain.Account, error)
}

type AccountHandler struct {
	accounts accountService
	queries  balanceReader
}

func NewAccountHandler(accounts accountService, queries balanceReader) *AccountHandler {
	return &AccountHandler{accounts: accounts, queries: queries}
}

type createAccountRequest struct {
	AccountType string `json:"accountType"`
	AccountName string `json:"accountName"`
}

func (r createAccountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.AccountType == "" {
		errs = append(errs, FieldError{Field: "accountType", Message: "required"})
	}
	if r.AccountName == "" {
		errs = append(errs, FieldError{Field: "accountName", Message: "required"})
	}
	return errs
}

type accountDTO struct {
	AccountNumber string    `json:"accountNumber"`
	AccountType   string    `json:"accountType"`
	AccountName   string    `json:"accountName"`
	Balance       string    `json:"balance"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		AccountNumber: a.AccountNumber,
		AccountType:   string(a.AccountType),
		AccountName:   a.AccountName,
		Balance:       domain.FormatAmount(a.Balance),
		CreatedAt:     a.CreatedAt,
	}
}

// Create opens an additional account for the caller. Unlike the seeded
// registration account, these always start at zero.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), userID, domain.AccountType(req.AccountType), req.AccountName, 0)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accounts, err := h.accounts.GetUserAccounts(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	account, err := h.queries.BalanceOf(r.Context(), r.PathValue("accountNumber"), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

type balanceDTO struct {
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Balance       string `json:"balance"`
}

func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	account, err := h.queries.BalanceOf(r.Context(), r.PathValue("accountNumber"), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceDTO{
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		Balance:       domain.FormatAmount(account.Balance),
	})
}
