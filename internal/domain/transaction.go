package domain

import "time"

// Transaction is one committed ledger entry. Entries are append-only:
// nothing in the codebase updates or deletes a row once written, and the
// id is taken from a sequence so it is unique and strictly increasing.
type Transaction struct {
	ID          int64
	FromAccount string
	ToAccount   string
	Amount      int64
	Description string
	CreatedAt   time.Time
}
