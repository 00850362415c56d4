package domain

import "fmt"

// ChunkIndex identifies a chunk's position in the delivery sequence as seen
// by the remote side. Indices grow by exactly one per chunk, starting at the
// configured base.
type ChunkIndex int

// Supported index bases.
const (
	IndexBaseZero ChunkIndex = 0
	IndexBaseOne  ChunkIndex = 1
)

// Chunk is a contiguous, read-only view into a payload.
type Chunk struct {
	// Position is the zero-based ordinal of the chunk within the full payload.
	Position int

	// Offset is the byte offset of Data within the payload.
	Offset int

	// Data aliases the payload. Callers must not modify it.
	Data []byte
}

// Len returns the chunk length in bytes.
func (c Chunk) Len() int {
	return len(c.Data)
}

// End returns the payload offset just past the chunk.
func (c Chunk) End() int {
	return c.Offset + len(c.Data)
}

// Index returns the remote index of the chunk for the given base.
func (c Chunk) Index(base ChunkIndex) ChunkIndex {
	return base + ChunkIndex(c.Position)
}

// String implements fmt.Stringer.
func (c Chunk) String() string {
	return fmt.Sprintf("chunk #%d [%d,%d)", c.Position, c.Offset, c.End())
}
