package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/canship/internal/cliconfig"
)

const helpDescription = `
Upload a file of any size to an Internet Computer canister, one bounded chunk
per awaited canister call, so the canister can rebuild the exact byte stream.

Highlights:
  - Chunks stay under the per-message limit (2,000,000 bytes by default).
  - Calls are strictly sequential; the first rejected chunk stops the upload.
  - Progress is recorded after every acknowledged chunk; resume with
    --autoresume or an explicit --start-index.
  - Configure via file ($HOME/.canship/config.toml), CANSHIP_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  canship backend upload_chunk ./model.bin
  canship --network ic --offset 4000000 backend upload_chunk ./model.bin
  canship --autoresume --retries 3 backend upload_chunk ./model.bin
  canship --transport http --endpoint http://localhost:8080/ingest ./model.bin
  canship watch backend upload_chunk ./assets/index.js
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	// replaced once --log-level is known
	log := cliconfig.Logger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// load resolves the final configuration: flags > CANSHIP_* env > file > defaults.
	load := func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 3:
			cfg.Canister, cfg.Method, cfg.File = args[0], args[1], args[2]
		case 1:
			cfg.File = args[0]
		default:
			return fmt.Errorf("expected <canister> <method> <file> or <file>, got %d arguments", len(args))
		}

		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
		if len(args) == 3 {
			changed["canister"] = true
			changed["method"] = true
		}

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}

		if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
			return err
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		log = cliconfig.Logger(cfg.LogLevel)

		logCfg := cfg
		if len(logCfg.AuthKey) > 0 {
			logCfg.AuthKey = "*****"
		}
		log.Debug().Interface("config", logCfg).Msg("configuration")
		return nil
	}

	root := &cobra.Command{
		Use:           "canship [flags] <canister> <method> <file>",
		Short:         "Upload a file to a canister in size-limited chunks",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd, args); err != nil {
				return err
			}
			_, err := upload(ctx, cfg, log)
			return err
		},
	}

	watch := &cobra.Command{
		Use:   "watch [flags] <canister> <method> <file>",
		Short: "Upload a file, then upload it again whenever it changes",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd, args); err != nil {
				return err
			}
			return watchFile(ctx, cfg, log)
		},
	}
	root.AddCommand(watch)

	// Flags
	flags := root.PersistentFlags()
	flags.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.canship/config.toml)")
	flags.StringVar(&cfg.Network, "network", cfg.Network, "dfx network to call (e.g. ic); empty uses the dfx default")
	flags.Var(cliconfig.Size64Var(&cfg.Offset), "offset", "number of leading file bytes to skip (e.g. 4000000, 4MB)")
	flags.Var(cliconfig.SizeVar(&cfg.ChunkSize), "chunk-size", fmt.Sprintf("maximum bytes per chunk, at most %d (e.g. 2000000, 2MB, 1.5MiB)", cliconfig.MaxChunkSize))
	flags.IntVar(&cfg.IndexBase, "index-base", cfg.IndexBase, "index of the first chunk (0 or 1)")
	flags.IntVar(&cfg.StartIndex, "start-index", cfg.StartIndex, "chunk index to start at, skipping chunks the canister already holds")
	flags.BoolVar(&cfg.AutoResume, "autoresume", cfg.AutoResume, "resume after the last chunk recorded for this file")
	flags.BoolVar(&cfg.EmptyWrite, "empty-write", cfg.EmptyWrite, "send one zero-length chunk for an empty file")

	flags.StringVar(&cfg.Transport, "transport", cfg.Transport, "chunk transport: dfx or http")
	flags.StringVar(&cfg.ArgMode, "arg-mode", cfg.ArgMode, "candid argument: indexed (index, blob) or blob")
	flags.StringVar(&cfg.DFXPath, "dfx", cfg.DFXPath, "dfx executable")
	flags.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "URL chunks are POSTed to (http transport)")
	flags.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "bearer token for the http transport")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP timeout per chunk")
	flags.IntVar(&cfg.Retries, "retries", cfg.Retries, "extra attempts per chunk before giving up")

	flags.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for progress files (defaults to the file's directory)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	watch.Flags().DurationVar(&cfg.WatchDebounce, "debounce", cfg.WatchDebounce, "delay after the last change before uploading")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("canship")
		stop()
		os.Exit(1)
	}
}
