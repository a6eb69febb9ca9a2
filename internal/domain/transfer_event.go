package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferState tags the stages a transfer walks through. The success path
// is validated -> debited -> credited -> recorded; any failure after
// validation ends in unwound.
type TransferState string

const (
	TransferStateValidated TransferState = "validated"
	TransferStateDebited   TransferState = "debited"
	TransferStateCredited  TransferState = "credited"
	TransferStateRecorded  TransferState = "recorded"
	TransferStateUnwound   TransferState = "unwound"
)

// TransferEvent is an audit record of a single state transition. Events are
// written outside the balance transaction so the trail of an aborted
// transfer survives its rollback.
type TransferEvent struct {
	ID            uuid.UUID
	TransactionID *int64
	FromAccount   string
	ToAccount     string
	State         TransferState
	Detail        string
	CreatedAt     time.Time
}
