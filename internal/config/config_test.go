package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/papapumpkin/prism/internal/telemetry"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"DataDir", cfg.DataDir, ".prism"},
		{"Backend", cfg.Backend, BackendSQLite},
		{"CatalogFile", cfg.CatalogFile, filepath.Join(".prism", "routes.toml")},
		{"Slot", cfg.Slot, ""},
		{"Telemetry", cfg.Telemetry, true},
		{"Verbose", cfg.Verbose, false},
		{"NoColor", cfg.NoColor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "data_dir",
			envKey: "PRISM_DATA_DIR",
			envVal: "/tmp/saves",
			field:  func(c Config) any { return c.DataDir },
			want:   "/tmp/saves",
		},
		{
			name:   "backend",
			envKey: "PRISM_BACKEND",
			envVal: "file",
			field:  func(c Config) any { return c.Backend },
			want:   BackendFile,
		},
		{
			name:   "catalog_file",
			envKey: "PRISM_CATALOG_FILE",
			envVal: "/etc/prism/routes.toml",
			field:  func(c Config) any { return c.CatalogFile },
			want:   "/etc/prism/routes.toml",
		},
		{
			name:   "slot",
			envKey: "PRISM_SLOT",
			envVal: "2",
			field:  func(c Config) any { return c.Slot },
			want:   "2",
		},
		{
			name:   "telemetry",
			envKey: "PRISM_TELEMETRY",
			envVal: "false",
			field:  func(c Config) any { return c.Telemetry },
			want:   false,
		},
		{
			name:   "no_color",
			envKey: "PRISM_NO_COLOR",
			envVal: "true",
			field:  func(c Config) any { return c.NoColor },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so PRISM_* env vars map to config keys.
			viper.SetEnvPrefix("PRISM")
			viper.AutomaticEnv()
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestLoad_CatalogFollowsDataDir(t *testing.T) {
	resetViper()
	viper.Set("data_dir", "/var/prism")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if want := filepath.Join("/var/prism", CatalogFile); cfg.CatalogFile != want {
		t.Errorf("CatalogFile = %q, want %q", cfg.CatalogFile, want)
	}
	if want := filepath.Join("/var/prism", DatabaseFile); cfg.DatabasePath() != want {
		t.Errorf("DatabasePath() = %q, want %q", cfg.DatabasePath(), want)
	}
	if want := filepath.Join("/var/prism", telemetry.FileName); cfg.TelemetryPath() != want {
		t.Errorf("TelemetryPath() = %q, want %q", cfg.TelemetryPath(), want)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	resetViper()
	viper.Set("backend", "postgres")

	_, err := Load()
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("Load() error = %v, want ErrUnknownBackend", err)
	}
}
