package app

import (
	"fmt"
	"sync"

	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// TransferState represents the state of a single chunked transfer.
type TransferState int

const (
	StateIdle TransferState = iota
	StateInFlight
	StateComplete
	StateFailed
)

// String returns a human-readable representation of the state.
func (s TransferState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateInFlight:
		return "InFlight"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no transition can leave s.
func (s TransferState) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// TransferObserver is called when a transfer changes state.
type TransferObserver interface {
	OnStateChange(previous, current TransferState, index domain.ChunkIndex, reason string)
}

// Transfer is the state machine of one delivery:
//
//	Idle -> InFlight(i) -> InFlight(i+1) -> ... -> Complete
//	                    \-> Failed(i)
//	Idle -> Complete (nothing to send)
type Transfer struct {
	mu       sync.RWMutex
	state    TransferState
	index    domain.ChunkIndex
	logger   ports.Logger
	observer TransferObserver
}

// NewTransfer creates a transfer in the Idle state.
func NewTransfer(logger ports.Logger, observer TransferObserver) *Transfer {
	return &Transfer{
		state:    StateIdle,
		logger:   loggerOrNoop(logger),
		observer: observer,
	}
}

// State returns the current state.
func (t *Transfer) State() TransferState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Index returns the index of the chunk in flight, or of the failed chunk.
func (t *Transfer) Index() domain.ChunkIndex {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index
}

// TransitionTo moves the transfer to next. For InFlight and Failed, index is
// the chunk concerned; successive InFlight indices must grow by exactly one.
func (t *Transfer) TransitionTo(next TransferState, index domain.ChunkIndex, reason string) error {
	t.mu.Lock()
	prev := t.state
	prevIndex := t.index

	valid := false
	switch prev {
	case StateIdle:
		valid = next == StateInFlight || next == StateComplete
	case StateInFlight:
		switch next {
		case StateInFlight:
			valid = index == prevIndex+1
		case StateFailed:
			valid = index == prevIndex
		case StateComplete:
			valid = true
		}
	}
	if !valid {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s(%d) -> %s(%d)", domain.ErrInvalidTransition, prev, prevIndex, next, index)
	}

	t.state = next
	if next != StateComplete {
		t.index = index
	}
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.OnStateChange(prev, next, index, reason)
	}

	if prev != next {
		t.logger.Debug("transfer state",
			ports.String("from", prev.String()),
			ports.String("to", next.String()),
			ports.Int("index", int(index)),
			ports.String("reason", reason),
		)
	}

	return nil
}
