package ports

import (
	"context"

	"github.com/bft-labs/canship/internal/domain"
)

// ChunkWriter is the remote write capability. WriteChunk returns once the
// remote side acknowledged or rejected the chunk. Implementations may append
// to remote state, so calls for one transfer must not overlap.
type ChunkWriter interface {
	WriteChunk(ctx context.Context, index domain.ChunkIndex, data []byte) error
}

// ChunkWriterFunc adapts a function to ChunkWriter.
type ChunkWriterFunc func(ctx context.Context, index domain.ChunkIndex, data []byte) error

// WriteChunk calls f(ctx, index, data).
func (f ChunkWriterFunc) WriteChunk(ctx context.Context, index domain.ChunkIndex, data []byte) error {
	return f(ctx, index, data)
}

// DigestSetter is implemented by writers that send the payload digest along
// with each chunk. The uploader calls SetDigest before the first write.
type DigestSetter interface {
	SetDigest(digest string)
}
