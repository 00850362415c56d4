package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/canship/internal/chunk"
	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// DeliveryObserver is notified as chunks are acknowledged or rejected.
type DeliveryObserver interface {
	OnChunkDelivered(index domain.ChunkIndex, c domain.Chunk, took time.Duration)
	OnChunkFailed(index domain.ChunkIndex, c domain.Chunk, err error)
}

// SequencerOptions configures a Sequencer.
type SequencerOptions struct {
	// IndexBase is the index of the first chunk of a payload (0 or 1,
	// as the remote endpoint expects).
	IndexBase domain.ChunkIndex

	Logger           ports.Logger
	Observer         DeliveryObserver
	TransferObserver TransferObserver
}

// Report summarises one delivery run.
type Report struct {
	State TransferState

	// First is the index delivery started at.
	First domain.ChunkIndex

	// Last is the last index acknowledged in this run. Only meaningful when
	// Chunks > 0.
	Last domain.ChunkIndex

	// Chunks and Bytes count what was acknowledged in this run.
	Chunks int
	Bytes  int64

	Duration time.Duration
}

// Sequencer delivers a chunk sequence through a ChunkWriter, one awaited
// call at a time, in ascending index order. It stops at the first failure.
type Sequencer struct {
	writer           ports.ChunkWriter
	base             domain.ChunkIndex
	logger           ports.Logger
	observer         DeliveryObserver
	transferObserver TransferObserver
}

// NewSequencer creates a sequencer writing through writer.
func NewSequencer(writer ports.ChunkWriter, opts SequencerOptions) *Sequencer {
	return &Sequencer{
		writer:           writer,
		base:             opts.IndexBase,
		logger:           loggerOrNoop(opts.Logger),
		observer:         opts.Observer,
		transferObserver: opts.TransferObserver,
	}
}

// Deliver sends every chunk of seq starting at its first chunk.
func (s *Sequencer) Deliver(ctx context.Context, seq chunk.Sequence) (Report, error) {
	return s.DeliverFrom(ctx, seq, s.base+domain.ChunkIndex(seq.First()))
}

// DeliverFrom sends the chunks of seq starting at remote index start,
// skipping chunks the remote already holds. start must lie in
// [base, base+seq.Total()]; the upper bound means nothing is left to send.
//
// On failure the returned error is a *domain.DeliveryError describing how
// much of the payload the remote holds. The remote state is never rolled back.
func (s *Sequencer) DeliverFrom(ctx context.Context, seq chunk.Sequence, start domain.ChunkIndex) (Report, error) {
	report := Report{State: StateIdle, First: start}

	pos := int(start - s.base)
	if start < s.base || pos > seq.Total() {
		return report, fmt.Errorf("%w: index %d not in [%d, %d]",
			domain.ErrInvalidResumeIndex, start, s.base, s.base+domain.ChunkIndex(seq.Total()))
	}
	rest, err := seq.Skip(pos)
	if err != nil {
		return report, err
	}

	transfer := NewTransfer(s.logger, s.transferObserver)
	began := time.Now()
	total := seq.Total()
	sent := 0

	for c := range rest.All() {
		index := c.Index(s.base)
		if err := transfer.TransitionTo(StateInFlight, index, "next chunk"); err != nil {
			return report, err
		}

		if err := ctx.Err(); err != nil {
			return s.fail(transfer, report, began, c, index, sent, fmt.Errorf("transfer canceled: %w", err))
		}

		callStart := time.Now()
		sent++
		if err := s.writer.WriteChunk(ctx, index, c.Data); err != nil {
			return s.fail(transfer, report, began, c, index, sent, err)
		}
		took := time.Since(callStart)

		report.Last = index
		report.Chunks++
		report.Bytes += int64(c.Len())

		s.logger.Info("uploaded chunk",
			ports.String("chunk", fmt.Sprintf("%d/%d", c.Position+1, total)),
			ports.Int("index", int(index)),
			ports.Int("bytes", c.Len()),
			ports.Duration("took", took),
		)

		if s.observer != nil {
			s.observer.OnChunkDelivered(index, c, took)
		}
	}

	reason := "all chunks acknowledged"
	if report.Chunks == 0 {
		reason = "nothing to send"
	}
	if err := transfer.TransitionTo(StateComplete, report.Last, reason); err != nil {
		return report, err
	}

	report.State = StateComplete
	report.Duration = time.Since(began)
	return report, nil
}

func (s *Sequencer) fail(transfer *Transfer, report Report, began time.Time, c domain.Chunk, index domain.ChunkIndex, sent int, cause error) (Report, error) {
	derr := &domain.DeliveryError{
		Index:        index,
		Acknowledged: c.Position,
		AckedBytes:   int64(c.Offset),
		Sent:         sent,
		Err:          cause,
	}

	if err := transfer.TransitionTo(StateFailed, index, cause.Error()); err != nil {
		return report, err
	}

	s.logger.Error("chunk failed",
		ports.Int("index", int(index)),
		ports.Int("acknowledged", derr.Acknowledged),
		ports.Int64("acked_bytes", derr.AckedBytes),
		ports.Err(cause),
	)

	if s.observer != nil {
		s.observer.OnChunkFailed(index, c, cause)
	}

	report.State = StateFailed
	report.Duration = time.Since(began)
	return report, derr
}
