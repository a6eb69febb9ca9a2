package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Saideepak144/KodBank/internal/domain"
)

const transferEventColumns = `id, transaction_id, from_account, to_account, state, detail, created_at`

// TransferEventRepository records state transitions of the transfer engine.
// Writes go through the pool, not the transfer's transaction, so the trail
// of an aborted transfer survives its rollback.
type TransferEventRepository struct {
	db *sql.DB
}

func NewTransferEventRepository(db *sql.DB) *TransferEventRepository {
	return &TransferEventRepository{db: db}
}

func (r *TransferEventRepository) Create(ctx context.Context, event *domain.TransferEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transfer_events (id, transaction_id, from_account, to_account, state, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID, event.TransactionID, event.FromAccount, event.ToAccount,
		event.State, event.Detail, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransferEventRepository) ListByAccountPair(ctx context.Context, from, to string) ([]domain.TransferEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transferEventColumns+` FROM transfer_events
		WHERE from_account = $1 AND to_account = $2
		ORDER BY created_at`, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountPair: %w", err)
	}
	defer rows.Close()

	var events []domain.TransferEvent
	for rows.Next() {
		var e domain.TransferEvent
		if err := rows.Scan(
			&e.ID, &e.TransactionID, &e.FromAccount, &e.ToAccount,
			&e.State, &e.Detail, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListByAccountPair: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccountPair: rows: %w", err)
	}
	return events, nil
}
