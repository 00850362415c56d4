// Package dfx writes chunks to an Internet Computer canister by running
// `dfx canister call`.
package dfx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/bitrise-io/go-utils/v2/command"

	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// DefaultBinary is the dfx executable looked up in PATH.
const DefaultBinary = "dfx"

// Config describes the canister method chunks are written to.
type Config struct {
	Binary   string
	Canister string
	Method   string
	Network  string
	Mode     ArgMode

	// TempDir holds argument files; empty means os.TempDir.
	TempDir string
}

// Writer implements ports.ChunkWriter with one dfx call per chunk. The
// Candid argument goes through --argument-file because a chunk's text form
// is far larger than the command line allows.
type Writer struct {
	config  Config
	factory command.Factory
	logger  ports.Logger
}

// NewWriter creates a dfx chunk writer.
func NewWriter(config Config, factory command.Factory, logger ports.Logger) *Writer {
	if config.Binary == "" {
		config.Binary = DefaultBinary
	}
	if config.Mode == "" {
		config.Mode = ArgModeIndexed
	}
	return &Writer{
		config:  config,
		factory: factory,
		logger:  logger,
	}
}

// WriteChunk implements ports.ChunkWriter.
func (w *Writer) WriteChunk(ctx context.Context, index domain.ChunkIndex, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	argFile, err := w.writeArgument(index, data)
	if err != nil {
		return err
	}
	defer os.Remove(argFile)

	cmd := w.factory.Create(w.config.Binary, w.callArgs(argFile), nil)
	w.logger.Debug("$ "+cmd.PrintableCommandArgs(), ports.Int("index", int(index)))

	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("dfx exited with status %d (%s.%s): %s: %w",
				exitErr.ExitCode(), w.config.Canister, w.config.Method, out, err)
		}
		return fmt.Errorf("executing dfx failed (%s.%s): %w", w.config.Canister, w.config.Method, err)
	}

	if out != "" {
		w.logger.Debug("dfx reply", ports.Int("index", int(index)), ports.String("output", out))
	}
	return nil
}

func (w *Writer) writeArgument(index domain.ChunkIndex, data []byte) (string, error) {
	f, err := os.CreateTemp(w.config.TempDir, "canship-chunk-*.did")
	if err != nil {
		return "", fmt.Errorf("create argument file: %w", err)
	}

	if _, err := f.WriteString(Argument(w.config.Mode, index, data)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write argument file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close argument file: %w", err)
	}

	return f.Name(), nil
}

func (w *Writer) callArgs(argFile string) []string {
	args := []string{"canister", "call"}
	if w.config.Network != "" {
		args = append(args, "--network", w.config.Network)
	}
	return append(args, w.config.Canister, w.config.Method, "--argument-file", argFile)
}
