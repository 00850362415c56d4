package app

import (
	logAdapter "github.com/bft-labs/canship/internal/adapters/log"
	"github.com/bft-labs/canship/internal/ports"
)

// loggerOrNoop returns logger, or a logger that discards everything when
// logger is nil.
func loggerOrNoop(logger ports.Logger) ports.Logger {
	if logger == nil {
		return logAdapter.NewNoopLogger()
	}
	return logger
}
