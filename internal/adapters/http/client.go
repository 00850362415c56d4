package http

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/bft-labs/canship/internal/ports"
)

// NewClient returns an *http.Client that retries transient failures
// (connection errors, 5xx, 429) up to retries times.
func NewClient(retries int, timeout time.Duration, logger ports.Logger) *http.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 10 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = leveledLogger{logger}
	return client.StandardClient()
}

// leveledLogger adapts ports.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger ports.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues)...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues)...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fields(keysAndValues)...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues)...)
}

func fields(keysAndValues []interface{}) []ports.Field {
	out := make([]ports.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		out = append(out, ports.Any(key, keysAndValues[i+1]))
	}
	return out
}
