package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// RetryWriter retries failed chunk writes with exponential backoff.
// It is a caller-side policy layered around a transport; the Sequencer
// itself never retries.
type RetryWriter struct {
	next    ports.ChunkWriter
	retries int
	initial time.Duration
	max     time.Duration
	logger  ports.Logger
}

// NewRetryWriter wraps next so that each chunk gets up to retries extra
// attempts.
func NewRetryWriter(next ports.ChunkWriter, retries int, logger ports.Logger) *RetryWriter {
	return &RetryWriter{
		next:    next,
		retries: retries,
		initial: DefaultBackoffInitial,
		max:     DefaultBackoffMax,
		logger:  loggerOrNoop(logger),
	}
}

// WithBackoff overrides the backoff bounds.
func (w *RetryWriter) WithBackoff(initial, max time.Duration) *RetryWriter {
	w.initial = initial
	w.max = max
	return w
}

// WriteChunk implements ports.ChunkWriter.
func (w *RetryWriter) WriteChunk(ctx context.Context, index domain.ChunkIndex, data []byte) error {
	b := newBackoff(w.initial, w.max)

	var err error
	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 {
			w.logger.Warn("retrying chunk",
				ports.Int("index", int(index)),
				ports.Int("attempt", attempt+1),
				ports.Duration("backoff", b.Current()),
				ports.Err(err),
			)
			if waitErr := b.Wait(ctx); waitErr != nil {
				return fmt.Errorf("retry chunk %d: %w", index, waitErr)
			}
		}

		if err = w.next.WriteChunk(ctx, index, data); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}

	if w.retries == 0 {
		return err
	}
	return fmt.Errorf("chunk %d failed after %d attempts: %w", index, w.retries+1, err)
}
