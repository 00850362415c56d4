package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations and sizes to make TOML friendly.
type FileConfig struct {
	Canister      string `toml:"canister"`
	Method        string `toml:"method"`
	Network       string `toml:"network"`
	Offset        string `toml:"offset"`
	ChunkSize     string `toml:"chunk_size"`
	IndexBase     *int   `toml:"index_base"`
	AutoResume    *bool  `toml:"auto_resume"`
	EmptyWrite    *bool  `toml:"empty_write"`
	ArgMode       string `toml:"arg_mode"`
	Transport     string `toml:"transport"`
	Endpoint      string `toml:"endpoint"`
	AuthKey       string `toml:"auth_key"`
	DFXPath       string `toml:"dfx_path"`
	Timeout       string `toml:"timeout"`
	Retries       *int   `toml:"retries"`
	StateDir      string `toml:"state_dir"`
	LogLevel      string `toml:"log_level"`
	WatchDebounce string `toml:"watch_debounce"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.canship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".canship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("canister", fc.Canister, &cfg.Canister)
	s.setString("method", fc.Method, &cfg.Method)
	s.setString("network", fc.Network, &cfg.Network)
	s.setString("arg-mode", fc.ArgMode, &cfg.ArgMode)
	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("dfx", fc.DFXPath, &cfg.DFXPath)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setSize64("offset", fc.Offset, &cfg.Offset); err != nil {
		return err
	}
	if err := s.setSize("chunk-size", fc.ChunkSize, &cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.WatchDebounce, &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setInt("index-base", fc.IndexBase, &cfg.IndexBase)
	s.setInt("retries", fc.Retries, &cfg.Retries)

	s.setBool("autoresume", fc.AutoResume, &cfg.AutoResume)
	s.setBool("empty-write", fc.EmptyWrite, &cfg.EmptyWrite)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
