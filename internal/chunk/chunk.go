// Package chunk splits a payload into bounded-size chunks.
//
// A [Sequence] is a lazy, finite and restartable view over an immutable
// payload. Chunks are computed on demand and alias the payload; nothing is
// copied and nothing is materialised ahead of the consumer.
//
//	seq, err := chunk.Split(payload, 2_000_000)
//	if err != nil {
//	    return err
//	}
//	for c := range seq.All() {
//	    // c.Data is payload[c.Offset:c.End()]
//	}
package chunk

import (
	"fmt"
	"iter"

	"github.com/bft-labs/canship/internal/domain"
)

// Sequence is the ordered chunking of a payload. The zero value is an empty
// sequence. Sequences are values: copying one never shares iteration state.
type Sequence struct {
	payload []byte
	size    int
	first   int
}

// Split returns the chunk sequence of payload with chunks of at most
// maxChunkSize bytes. The payload must not be modified while the sequence
// is in use.
func Split(payload []byte, maxChunkSize int) (Sequence, error) {
	if maxChunkSize <= 0 {
		return Sequence{}, fmt.Errorf("%w: max chunk size must be positive, got %d",
			domain.ErrInvalidConfig, maxChunkSize)
	}
	return Sequence{payload: payload, size: maxChunkSize}, nil
}

// Total returns the number of chunks covering the whole payload.
func (s Sequence) Total() int {
	if s.size == 0 || len(s.payload) == 0 {
		return 0
	}
	return (len(s.payload)-1)/s.size + 1
}

// Len returns the number of chunks from the start of this sequence.
func (s Sequence) Len() int {
	return s.Total() - s.first
}

// First returns the position of the first chunk of this sequence.
func (s Sequence) First() int {
	return s.first
}

// ChunkSize returns the maximum chunk size.
func (s Sequence) ChunkSize() int {
	return s.size
}

// Size returns the payload length in bytes.
func (s Sequence) Size() int {
	return len(s.payload)
}

// Remaining returns the number of payload bytes covered by this sequence.
func (s Sequence) Remaining() int {
	if s.first >= s.Total() {
		return 0
	}
	return len(s.payload) - s.first*s.size
}

// At returns the chunk at the given position of the full payload.
func (s Sequence) At(position int) (domain.Chunk, bool) {
	if position < 0 || position >= s.Total() {
		return domain.Chunk{}, false
	}
	off := position * s.size
	end := off + min(s.size, len(s.payload)-off)
	return domain.Chunk{
		Position: position,
		Offset:   off,
		Data:     s.payload[off:end:end],
	}, true
}

// Skip returns the sub-sequence starting n chunks into the payload.
// Skip(Total()) is valid and yields an empty sequence.
func (s Sequence) Skip(n int) (Sequence, error) {
	if n < 0 || n > s.Total() {
		return Sequence{}, fmt.Errorf("%w: position %d not in [0, %d]",
			domain.ErrInvalidResumeIndex, n, s.Total())
	}
	s.first = n
	return s, nil
}

// All yields the chunks of the sequence in ascending offset order.
// Each call starts from the beginning of the sequence.
func (s Sequence) All() iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		for pos := s.first; pos < s.Total(); pos++ {
			c, _ := s.At(pos)
			if !yield(c) {
				return
			}
		}
	}
}

// Cursor returns a new cursor positioned at the start of the sequence.
func (s Sequence) Cursor() *Cursor {
	return &Cursor{seq: s, next: s.first}
}

// Cursor walks a Sequence with explicit Next calls.
type Cursor struct {
	seq  Sequence
	next int
}

// Next returns the next chunk, or false when the sequence is exhausted.
func (c *Cursor) Next() (domain.Chunk, bool) {
	ch, ok := c.seq.At(c.next)
	if ok {
		c.next++
	}
	return ch, ok
}
