package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

type writeCall struct {
	index domain.ChunkIndex
	data  []byte
}

// recordingWriter records every call and fails on the configured call numbers
// (1-based).
type recordingWriter struct {
	mu     sync.Mutex
	calls  []writeCall
	failOn map[int]error
	active int
	maxAct int
}

var errRejected = errors.New("remote rejected chunk")

func (w *recordingWriter) WriteChunk(ctx context.Context, index domain.ChunkIndex, data []byte) error {
	w.mu.Lock()
	w.active++
	if w.active > w.maxAct {
		w.maxAct = w.active
	}
	w.calls = append(w.calls, writeCall{index: index, data: append([]byte(nil), data...)})
	n := len(w.calls)
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.active--
		w.mu.Unlock()
	}()

	if err, ok := w.failOn[n]; ok {
		return err
	}
	return nil
}

func (w *recordingWriter) indices() []domain.ChunkIndex {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.ChunkIndex, len(w.calls))
	for i, c := range w.calls {
		out[i] = c.index
	}
	return out
}

func (w *recordingWriter) joined() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []byte
	for _, c := range w.calls {
		out = append(out, c.data...)
	}
	return out
}

type deliveredEvent struct {
	index  domain.ChunkIndex
	length int
}

// mockObserver records delivery events.
type mockObserver struct {
	delivered []deliveredEvent
	failed    []domain.ChunkIndex
}

func (o *mockObserver) OnChunkDelivered(index domain.ChunkIndex, c domain.Chunk, took time.Duration) {
	o.delivered = append(o.delivered, deliveredEvent{index, c.Len()})
}

func (o *mockObserver) OnChunkFailed(index domain.ChunkIndex, c domain.Chunk, err error) {
	o.failed = append(o.failed, index)
}

type stateChangeEvent struct {
	previous TransferState
	current  TransferState
	index    domain.ChunkIndex
}

// mockTransferObserver tracks state change events.
type mockTransferObserver struct {
	events []stateChangeEvent
}

func (m *mockTransferObserver) OnStateChange(previous, current TransferState, index domain.ChunkIndex, reason string) {
	m.events = append(m.events, stateChangeEvent{previous, current, index})
}

// memorySource implements ports.PayloadSource.
type memorySource struct {
	name    string
	payload []byte
	err     error
}

func (s *memorySource) Load(ctx context.Context) ([]byte, error) { return s.payload, s.err }
func (s *memorySource) Name() string                             { return s.name }

// memoryProgress implements ports.ProgressRepository.
type memoryProgress struct {
	stored  domain.Progress
	saves   []domain.Progress
	cleared bool
	loadErr error
}

func (m *memoryProgress) Load(ctx context.Context) (domain.Progress, error) {
	return m.stored, m.loadErr
}

func (m *memoryProgress) Save(ctx context.Context, p domain.Progress) error {
	m.stored = p
	m.saves = append(m.saves, p)
	return nil
}

func (m *memoryProgress) Clear(ctx context.Context) error {
	m.stored = domain.Progress{}
	m.cleared = true
	return nil
}
