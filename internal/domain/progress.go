package domain

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Digest is the BLAKE3-256 hash of a payload, used to tell whether a stored
// progress record still describes the file on disk.
type Digest [32]byte

// DigestOf hashes the payload.
func DigestOf(payload []byte) Digest {
	return blake3.Sum256(payload)
}

// String returns the lowercase hex form.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Progress records how much of a payload a remote target holds.
// It is saved after every acknowledged chunk so a failed transfer can be
// resumed without re-sending acknowledged chunks.
type Progress struct {
	File      string     `json:"file"`
	Size      int64      `json:"size"`
	Digest    string     `json:"digest"`
	ChunkSize int        `json:"chunk_size"`
	Offset    int64      `json:"offset"`
	IndexBase ChunkIndex `json:"index_base"`

	Canister string `json:"canister"`
	Method   string `json:"method"`
	Network  string `json:"network,omitempty"`

	// Acknowledged is the number of chunks the remote holds.
	Acknowledged int `json:"acknowledged"`

	// AckedBytes is the number of payload bytes the remote holds.
	AckedBytes int64 `json:"acked_bytes"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether the record was never written.
func (p Progress) Empty() bool {
	return p.Digest == "" && p.Acknowledged == 0
}

// Matches reports whether p was recorded for the same payload, chunking and
// target as want. Acknowledged counts and timestamps are ignored.
func (p Progress) Matches(want Progress) bool {
	return p.Digest == want.Digest &&
		p.Size == want.Size &&
		p.ChunkSize == want.ChunkSize &&
		p.Offset == want.Offset &&
		p.IndexBase == want.IndexBase &&
		p.Canister == want.Canister &&
		p.Method == want.Method &&
		p.Network == want.Network
}

// NextIndex returns the remote index of the first chunk the remote does not
// hold yet.
func (p Progress) NextIndex() ChunkIndex {
	return p.IndexBase + ChunkIndex(p.Acknowledged)
}

// Advance records one more acknowledged chunk.
func (p *Progress) Advance(c Chunk) {
	p.Acknowledged = c.Position + 1
	p.AckedBytes = int64(c.End())
	p.UpdatedAt = time.Now().UTC()
}
