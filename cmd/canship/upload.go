package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/docker/go-units"
	"github.com/rs/zerolog"

	"github.com/bft-labs/canship/internal/adapters/dfx"
	"github.com/bft-labs/canship/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/canship/internal/adapters/http"
	logAdapter "github.com/bft-labs/canship/internal/adapters/log"
	"github.com/bft-labs/canship/internal/app"
	"github.com/bft-labs/canship/internal/cliconfig"
	"github.com/bft-labs/canship/internal/domain"
	"github.com/bft-labs/canship/internal/ports"
)

// upload runs one upload of cfg.File.
func upload(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger) (app.UploadResult, error) {
	logger := logAdapter.NewZerologAdapterWithLogger(log)

	writer, err := newWriter(cfg, logger)
	if err != nil {
		return app.UploadResult{}, err
	}

	uploader := app.NewUploader(
		app.UploadConfig{
			Canister:   cfg.Canister,
			Method:     cfg.Method,
			Network:    cfg.Network,
			ChunkSize:  cfg.ChunkSize,
			IndexBase:  domain.ChunkIndex(cfg.IndexBase),
			Offset:     cfg.Offset,
			StartIndex: cfg.StartIndex,
			AutoResume: cfg.AutoResume,
			EmptyWrite: cfg.EmptyWrite,
		},
		fs.NewFileSource(cfg.File, cfg.Offset),
		writer,
		fs.NewProgressFile(cfg.StateDir, cfg.ProgressKey()),
		logger,
	)

	result, err := uploader.Run(ctx)
	if err != nil {
		var derr *domain.DeliveryError
		if errors.As(err, &derr) {
			log.Error().
				Int("failed_index", int(derr.Index)).
				Int("chunks_held", derr.Acknowledged).
				Str("bytes_held", units.HumanSize(float64(derr.AckedBytes))).
				Str("resume", fmt.Sprintf("--start-index %d", derr.ResumeIndex())).
				Msg("upload stopped; the canister keeps the chunks it acknowledged")
		}
		return result, err
	}

	log.Info().
		Str("file", result.File).
		Str("size", units.HumanSize(float64(result.Size))).
		Int("chunks", result.Total).
		Bool("resumed", result.Resumed).
		Dur("took", result.Duration).
		Msg("done")
	return result, nil
}

// newWriter builds the chunk transport named by cfg.Transport.
func newWriter(cfg cliconfig.Config, logger ports.Logger) (ports.ChunkWriter, error) {
	switch cfg.Transport {
	case cliconfig.TransportHTTP:
		client := httpAdapter.NewClient(cfg.Retries, cfg.Timeout, logger)
		return httpAdapter.NewChunkWriter(client, httpAdapter.UploadMetadata{
			Endpoint: cfg.Endpoint,
			AuthKey:  cfg.AuthKey,
			Name:     filepath.Base(cfg.File),
		}, logger), nil

	case cliconfig.TransportDFX:
		mode, err := dfx.ParseArgMode(cfg.ArgMode)
		if err != nil {
			return nil, err
		}
		var w ports.ChunkWriter = dfx.NewWriter(dfx.Config{
			Binary:   cfg.DFXPath,
			Canister: cfg.Canister,
			Method:   cfg.Method,
			Network:  cfg.Network,
			Mode:     mode,
		}, command.NewFactory(env.NewRepository()), logger)
		if cfg.Retries > 0 {
			w = app.NewRetryWriter(w, cfg.Retries, logger)
		}
		return w, nil

	default:
		return nil, fmt.Errorf("%w: unknown transport %q", domain.ErrInvalidConfig, cfg.Transport)
	}
}

// watchFile uploads cfg.File once and again after every change until ctx
// is canceled. Uploads after a change always start from the first chunk.
func watchFile(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger) error {
	if _, err := upload(ctx, cfg, log); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Error().Err(err).Msg("initial upload failed, waiting for changes")
	}

	rerun := cfg
	rerun.StartIndex = app.NoStartIndex
	rerun.AutoResume = false

	log.Info().Str("file", cfg.File).Dur("debounce", cfg.WatchDebounce).Msg("watching for changes")

	watcher := fs.NewWatcher(cfg.File, cfg.WatchDebounce, logAdapter.NewZerologAdapterWithLogger(log))
	err := watcher.Run(ctx, func(ctx context.Context) {
		if _, err := upload(ctx, rerun, log); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("upload failed, waiting for changes")
		}
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", cfg.File, err)
	}
	log.Info().Msg("received signal, stopping...")
	return nil
}
