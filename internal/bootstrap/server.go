package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightledger/config"
)

const shutdownTimeout = 5 * time.Second

// Run serves handler and the snapshot loop until ctx is canceled or the
// server fails. On the way out the ledger is flushed one last time.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, snapshotter *Snapshotter) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler,
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go snapshotter.Run(loopCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	var runErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("shutdown http server: %w", err)
		}
	}
	stopLoop()

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := snapshotter.Flush(flushCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("final snapshot: %w", err))
	}
	return runErr
}
