package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/repository"
)

// Snapshotter writes the ledger to its store on a fixed interval.
type Snapshotter struct {
	ledger   *ledger.Ledger
	store    repository.SnapshotStore
	interval time.Duration
}

// NewSnapshotter returns a snapshotter; a non-positive interval disables
// periodic writes and leaves only explicit Flush calls.
func NewSnapshotter(l *ledger.Ledger, store repository.SnapshotStore, interval time.Duration) *Snapshotter {
	return &Snapshotter{ledger: l, store: store, interval: interval}
}

func (s *Snapshotter) Flush(ctx context.Context) error {
	return s.store.Store(ctx, s.ledger.Snapshot())
}

// Run blocks until ctx is canceled. Failed writes are logged and retried on
// the next tick.
func (s *Snapshotter) Run(ctx context.Context) {
	if s.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				log.Printf("snapshot error: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
