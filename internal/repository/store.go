package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightledger/internal/ledger"
)

// ErrStorage marks failures of the durable store, as opposed to ledger
// validation errors.
var ErrStorage = errors.New("storage failure")

// SnapshotStore persists whole ledger states. It is used at process
// boundaries only, never in the middle of a ledger mutation.
type SnapshotStore interface {
	Load(ctx context.Context) (ledger.State, error)
	Store(ctx context.Context, state ledger.State) error
}
