package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"

	"github.com/bft-labs/canship/internal/adapters/dfx"
	"github.com/bft-labs/canship/internal/domain"
)

// DefaultChunkSize keeps a chunk and its Candid encoding under the
// canister message limit.
const DefaultChunkSize = 2_000_000

// MaxChunkSize is the largest chunk a single remote call may carry.
const MaxChunkSize = 2 * units.MiB

// Transports.
const (
	TransportDFX  = "dfx"
	TransportHTTP = "http"
)

// Config holds CLI configuration for canship.
type Config struct {
	Canister string
	Method   string
	File     string
	Network  string

	// Offset drops this many leading bytes of File.
	Offset int64

	ChunkSize  int
	IndexBase  int
	StartIndex int
	AutoResume bool
	EmptyWrite bool

	ArgMode   string
	Transport string
	Endpoint  string
	AuthKey   string
	DFXPath   string

	Timeout time.Duration
	Retries int

	StateDir      string
	LogLevel      string
	WatchDebounce time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     DefaultChunkSize,
		IndexBase:     0,
		StartIndex:    -1,
		ArgMode:       string(dfx.ArgModeIndexed),
		Transport:     TransportDFX,
		DFXPath:       dfx.DefaultBinary,
		Timeout:       30 * time.Second,
		Retries:       0,
		LogLevel:      "info",
		WatchDebounce: time.Second,
		StateDir:      "", // Derived from File during Validate
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.File == "" {
		return fmt.Errorf("%w: file is required", domain.ErrInvalidConfig)
	}

	switch c.Transport {
	case TransportDFX:
		if c.Canister == "" || c.Method == "" {
			return fmt.Errorf("%w: canister and method are required", domain.ErrInvalidConfig)
		}
		if _, err := dfx.ParseArgMode(c.ArgMode); err != nil {
			return err
		}
	case TransportHTTP:
		if c.Endpoint == "" {
			return fmt.Errorf("%w: endpoint is required for the http transport", domain.ErrInvalidConfig)
		}
		c.Endpoint = strings.TrimSuffix(c.Endpoint, "/")
	default:
		return fmt.Errorf("%w: unknown transport %q", domain.ErrInvalidConfig, c.Transport)
	}

	if c.ChunkSize <= 0 || c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk size %d not in (0, %s]",
			domain.ErrInvalidConfig, c.ChunkSize, units.BytesSize(MaxChunkSize))
	}
	if c.IndexBase != 0 && c.IndexBase != 1 {
		return fmt.Errorf("%w: index base must be 0 or 1", domain.ErrInvalidConfig)
	}
	if c.StartIndex != -1 && c.StartIndex < c.IndexBase {
		return fmt.Errorf("%w: start index %d below index base %d",
			domain.ErrInvalidResumeIndex, c.StartIndex, c.IndexBase)
	}
	if c.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", domain.ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.WatchDebounce <= 0 {
		return fmt.Errorf("%w: watch debounce must be positive", domain.ErrInvalidConfig)
	}

	if c.StateDir == "" {
		c.StateDir = filepath.Dir(c.File)
	}
	if c.DFXPath == "" {
		c.DFXPath = dfx.DefaultBinary
	}

	return nil
}

// ProgressKey names the progress record of this upload.
func (c Config) ProgressKey() string {
	if c.Transport == TransportHTTP {
		return filepath.Base(c.File)
	}
	return c.Canister + "." + c.Method + "." + filepath.Base(c.File)
}

// ParseSize parses a byte count such as "2000000", "2MB" or "1.5MiB".
func ParseSize(value string) (int64, error) {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, nil
	}
	if strings.Contains(strings.ToLower(value), "ib") {
		return units.RAMInBytes(value)
	}
	return units.FromHumanSize(value)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if non-negative and flag not changed.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || *value < 0 || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setSize parses a human-readable size and sets the destination.
func (s *configSetter) setSize(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	n, err := ParseSize(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = int(n)
	return nil
}

// setSize64 is setSize for int64 destinations.
func (s *configSetter) setSize64(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	n, err := ParseSize(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = n
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
