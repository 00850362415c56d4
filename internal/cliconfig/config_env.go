package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (CANSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("canister", os.Getenv("CANSHIP_CANISTER"), &cfg.Canister)
	s.setString("method", os.Getenv("CANSHIP_METHOD"), &cfg.Method)
	s.setString("network", os.Getenv("CANSHIP_NETWORK"), &cfg.Network)
	s.setString("arg-mode", os.Getenv("CANSHIP_ARG_MODE"), &cfg.ArgMode)
	s.setString("transport", os.Getenv("CANSHIP_TRANSPORT"), &cfg.Transport)
	s.setString("endpoint", os.Getenv("CANSHIP_ENDPOINT"), &cfg.Endpoint)
	s.setString("auth-key", os.Getenv("CANSHIP_AUTH_KEY"), &cfg.AuthKey)
	s.setString("dfx", os.Getenv("CANSHIP_DFX"), &cfg.DFXPath)
	s.setString("state-dir", os.Getenv("CANSHIP_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("CANSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setSize64("offset", os.Getenv("CANSHIP_OFFSET"), &cfg.Offset); err != nil {
		return err
	}
	if err := s.setSize("chunk-size", os.Getenv("CANSHIP_CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("CANSHIP_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("CANSHIP_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	if err := s.setIntFromString("index-base", os.Getenv("CANSHIP_INDEX_BASE"), &cfg.IndexBase); err != nil {
		return err
	}
	if err := s.setIntFromString("retries", os.Getenv("CANSHIP_RETRIES"), &cfg.Retries); err != nil {
		return err
	}

	s.setBoolFromString("autoresume", os.Getenv("CANSHIP_AUTORESUME"), &cfg.AutoResume)
	s.setBoolFromString("empty-write", os.Getenv("CANSHIP_EMPTY_WRITE"), &cfg.EmptyWrite)

	return nil
}
