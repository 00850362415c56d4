package dfx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/canship/internal/domain"
)

const hexDigits = "0123456789ABCDEF"

// ArgMode selects the Candid argument a chunk is sent as.
type ArgMode string

const (
	// ArgModeIndexed sends (index : nat, blob "..."), for methods that place
	// chunks by index.
	ArgModeIndexed ArgMode = "indexed"

	// ArgModeBlob sends (blob "..."), for methods that append in call order.
	ArgModeBlob ArgMode = "blob"
)

// ParseArgMode validates an argument mode name.
func ParseArgMode(s string) (ArgMode, error) {
	switch m := ArgMode(s); m {
	case ArgModeIndexed, ArgModeBlob:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown argument mode %q (want %q or %q)",
		domain.ErrInvalidConfig, s, ArgModeIndexed, ArgModeBlob)
}

// BlobLiteral renders data as a Candid text blob: blob "\0A\FF...".
func BlobLiteral(data []byte) string {
	var b strings.Builder
	b.Grow(len(data)*3 + len(`blob ""`))
	writeBlob(&b, data)
	return b.String()
}

// Argument renders the full Candid argument tuple for a chunk.
func Argument(mode ArgMode, index domain.ChunkIndex, data []byte) string {
	var b strings.Builder
	b.Grow(len(data)*3 + 32)
	b.WriteByte('(')
	if mode == ArgModeIndexed {
		b.WriteString(strconv.Itoa(int(index)))
		b.WriteString(" : nat, ")
	}
	writeBlob(&b, data)
	b.WriteByte(')')
	return b.String()
}

func writeBlob(b *strings.Builder, data []byte) {
	b.WriteString(`blob "`)
	for _, c := range data {
		b.WriteByte('\\')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0f])
	}
	b.WriteByte('"')
}
