package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Saideepak144/KodBank/internal/domain"
)

func SeedTestUser(t *testing.T, authDB *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = authDB.Exec(
		`INSERT INTO users (id, email, name, password_hash, created_at)
		 VALUES ($1, LOWER($2), $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTestAccount(t *testing.T, bankDB *sql.DB, userID uuid.UUID, number string, balance int64) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: number,
		AccountType:   domain.AccountTypeSavings,
		AccountName:   "Test " + number,
		Balance:       balance,
		Version:       1,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := bankDB.Exec(
		`INSERT INTO accounts (id, user_id, account_number, account_type, account_name, balance, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UserID, a.AccountNumber, a.AccountType, a.AccountName, a.Balance, a.Version, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, bankDB *sql.DB, number string) int64 {
	t.Helper()

	var balance int64
	err := bankDB.QueryRow(
		`SELECT balance FROM accounts WHERE account_number = $1`, number,
	).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance of %s: %v", number, err)
	}
	return balance
}

// SumBalances totals every balance in the store; with a quiescent system
// it must equal the sum of the seed balances.
func SumBalances(t *testing.T, bankDB *sql.DB) int64 {
	t.Helper()

	var sum int64
	err := bankDB.QueryRow(`SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&sum)
	if err != nil {
		t.Fatalf("sum balances: %v", err)
	}
	return sum
}

func CountTransactions(t *testing.T, bankDB *sql.DB) int {
	t.Helper()

	var count int
	err := bankDB.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return count
}
