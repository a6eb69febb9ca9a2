package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionToken is the server-side record of an issued JWT. A request is
// only authenticated when its JWT verifies AND a matching unexpired row
// exists, so logout revokes access before the JWT itself expires.
type SessionToken struct {
	ID         uuid.UUID
	TokenValue string
	UserID     uuid.UUID
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
