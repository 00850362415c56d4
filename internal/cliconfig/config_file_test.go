package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	zero := 0
	three := 3

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Canister:      "backend",
				Method:        "append",
				Network:       "ic",
				Offset:        "1kB",
				ChunkSize:     "1MiB",
				IndexBase:     &zero,
				AutoResume:    &trueVal,
				EmptyWrite:    &trueVal,
				ArgMode:       "blob",
				Transport:     "dfx",
				DFXPath:       "/opt/dfx",
				Timeout:       "1m",
				Retries:       &three,
				StateDir:      "/state",
				LogLevel:      "debug",
				WatchDebounce: "250ms",
			},
			changed: map[string]bool{},
			initial: Config{IndexBase: 1},
			expected: Config{
				Canister:      "backend",
				Method:        "append",
				Network:       "ic",
				Offset:        1000,
				ChunkSize:     1 << 20,
				IndexBase:     0,
				AutoResume:    true,
				EmptyWrite:    true,
				ArgMode:       "blob",
				Transport:     "dfx",
				DFXPath:       "/opt/dfx",
				Timeout:       time.Minute,
				Retries:       3,
				StateDir:      "/state",
				LogLevel:      "debug",
				WatchDebounce: 250 * time.Millisecond,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Canister:  "config-canister",
				Method:    "config-method",
				ChunkSize: "1000",
			},
			changed: map[string]bool{"canister": true, "chunk-size": true},
			initial: Config{
				Canister:  "flag-canister",
				ChunkSize: 4096,
			},
			expected: Config{
				Canister:  "flag-canister", // unchanged because flag was set
				Method:    "config-method",
				ChunkSize: 4096,
			},
		},
		{
			name: "http transport values",
			fileConfig: FileConfig{
				Transport: "http",
				Endpoint:  "http://localhost:9000/ingest",
				AuthKey:   "secret",
			},
			changed: map[string]bool{},
			expected: Config{
				Transport: "http",
				Endpoint:  "http://localhost:9000/ingest",
				AuthKey:   "secret",
			},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{Timeout: "not-a-duration"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "returns error for invalid size",
			fileConfig: FileConfig{ChunkSize: "huge"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	// Create a temporary TOML file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
canister = "backend"
method = "upload_chunk"
chunk_size = "2MB"
index_base = 1
auto_resume = true
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Canister != "backend" {
		t.Errorf("Canister = %v, want backend", fc.Canister)
	}
	if fc.Method != "upload_chunk" {
		t.Errorf("Method = %v, want upload_chunk", fc.Method)
	}
	if fc.ChunkSize != "2MB" {
		t.Errorf("ChunkSize = %v, want 2MB", fc.ChunkSize)
	}
	if fc.IndexBase == nil || *fc.IndexBase != 1 {
		t.Errorf("IndexBase = %v, want 1", fc.IndexBase)
	}
	if fc.AutoResume == nil || !*fc.AutoResume {
		t.Errorf("AutoResume = %v, want true", fc.AutoResume)
	}
	if fc.Retries != nil {
		t.Errorf("Retries = %v, want nil", *fc.Retries)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := LoadFileConfig(filepath.Join(tmpDir, "missing.toml")); err == nil {
		t.Error("LoadFileConfig() expected error for missing file")
	}

	bad := filepath.Join(tmpDir, "bad.toml")
	if err := os.WriteFile(bad, []byte("canister = [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(bad); err == nil {
		t.Error("LoadFileConfig() expected parse error")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	p := DefaultConfigPath()
	if p == "" {
		t.Skip("no home directory")
	}
	if !strings.HasSuffix(p, filepath.Join(".canship", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %v", p)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	p := filepath.Join(tmpDir, "x.toml")
	if FileExists(p) {
		t.Error("FileExists() = true before create")
	}
	if err := os.WriteFile(p, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(p) {
		t.Error("FileExists() = false after create")
	}
}
