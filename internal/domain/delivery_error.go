package domain

import "fmt"

// DeliveryError reports a failed chunk write. The remote side holds the
// payload prefix [0, AckedBytes) and nothing after it is rolled back.
type DeliveryError struct {
	// Index is the remote index of the chunk whose write failed.
	Index ChunkIndex

	// Acknowledged is the number of chunks the remote holds, counting chunks
	// acknowledged by earlier runs that this run resumed after.
	Acknowledged int

	// AckedBytes is the number of payload bytes the remote holds.
	AckedBytes int64

	// Sent is the number of write calls issued by this run, including the
	// failed one.
	Sent int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("chunk %d failed after %d chunks (%d bytes) acknowledged: %v",
		e.Index, e.Acknowledged, e.AckedBytes, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransportFailure for every delivery error, and
// ErrPartialTransfer when part of the payload was written.
func (e *DeliveryError) Is(target error) bool {
	switch target {
	case ErrTransportFailure:
		return true
	case ErrPartialTransfer:
		return e.Acknowledged > 0
	}
	return false
}

// ResumeIndex returns the index a later run should start from.
func (e *DeliveryError) ResumeIndex() ChunkIndex {
	return e.Index
}
