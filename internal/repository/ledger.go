package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Saideepak144/KodBank/internal/domain"
)

const transactionColumns = `id, from_account, to_account, amount, description, created_at`

// LedgerRepository is the append-only transaction log. There is no update
// or delete path, by contract.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append writes one ledger entry inside the caller's transaction and fills
// in the sequence-assigned id and the commit timestamp.
func (r *LedgerRepository) Append(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO transactions (from_account, to_account, amount, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		t.FromAccount, t.ToAccount, t.Amount, t.Description,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

// ListByAccounts returns every entry touching any of the given account
// numbers as sender or receiver, newest first.
func (r *LedgerRepository) ListByAccounts(ctx context.Context, numbers []string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE from_account = ANY($1) OR to_account = ANY($1)
		ORDER BY created_at DESC, id DESC`,
		pq.Array(numbers),
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccounts: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByAccounts: scan: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccounts: rows: %w", err)
	}
	return txns, nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// SumDeltaForAccount replays the ledger for one account: credits received
// minus debits sent. Balances can be reconstructed as seed + delta.
func (r *LedgerRepository) SumDeltaForAccount(ctx context.Context, number string) (int64, error) {
	var delta int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN to_account = $1 THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE from_account = $1 OR to_account = $1`,
		number,
	).Scan(&delta)
	if err != nil {
		return 0, fmt.Errorf("SumDeltaForAccount: %w", err)
	}
	return delta, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(
		&t.ID, &t.FromAccount, &t.ToAccount, &t.Amount,
		&t.Description, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
