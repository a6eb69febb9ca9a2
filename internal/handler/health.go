package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"
)

type HealthHandler struct {
	authDB *sql.DB
	bankDB *sql.DB
}

func NewHealthHandler(authDB, bankDB *sql.DB) *HealthHandler {
	return &HealthHandler{authDB: authDB, bankDB: bankDB}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"auth_database": "ok",
		"bank_database": "ok",
	}
	httpStatus := http.StatusOK

	if err := h.authDB.PingContext(r.Context()); err != nil {
		slog.Warn("readiness check failed: auth database unreachable", "error", err)
		checks["auth_database"] = "down"
		httpStatus = http.StatusServiceUnavailable
	}
	if err := h.bankDB.PingContext(r.Context()); err != nil {
		slog.Warn("readiness check failed: bank database unreachable", "error", err)
		checks["bank_database"] = "down"
		httpStatus = http.StatusServiceUnavailable
	}

	status := "ok"
	if httpStatus != http.StatusOK {
		status = "down"
	}

	RespondJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
