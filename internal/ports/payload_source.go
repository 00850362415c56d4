package ports

import "context"

// PayloadSource supplies the full payload of a transfer.
type PayloadSource interface {
	// Load returns the payload bytes. The caller treats them as immutable.
	Load(ctx context.Context) ([]byte, error)

	// Name identifies the payload in logs and progress records.
	Name() string
}
