package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CPWindowDays != 90 {
		t.Errorf("CPWindowDays = %v, want 90", cfg.CPWindowDays)
	}
	if cfg.ATLDays != 7 {
		t.Errorf("ATLDays = %v, want 7", cfg.ATLDays)
	}
	if cfg.CTLDays != 42 {
		t.Errorf("CTLDays = %v, want 42", cfg.CTLDays)
	}
	if cfg.FTPRollingWindowDays != 42 {
		t.Errorf("FTPRollingWindowDays = %v, want 42", cfg.FTPRollingWindowDays)
	}
	if len(cfg.PowerCurveIntervals) == 0 {
		t.Errorf("PowerCurveIntervals should not be empty")
	}
	if cfg.FTP != 0 {
		t.Errorf("FTP should be unset by default, got %v", cfg.FTP)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errContains string
	}{
		{
			name: "valid minimal config",
			config: Config{
				CPWindowDays: 90, ATLDays: 7, CTLDays: 42, FTPRollingWindowDays: 42,
				DataDir: "d", ActivitiesFile: "a.csv", StreamsDir: "s", ProcessedDataDir: "p",
			},
			expectError: false,
		},
		{
			name: "negative ftp",
			config: Config{
				FTP: -1, CPWindowDays: 90, ATLDays: 7, CTLDays: 42, FTPRollingWindowDays: 42,
				DataDir: "d", ActivitiesFile: "a.csv", StreamsDir: "s", ProcessedDataDir: "p",
			},
			expectError: true,
			errContains: "ftp",
		},
		{
			name: "lt1 power not less than lt2",
			config: Config{
				LT1Power: 300, LT2Power: 280, CPWindowDays: 90, ATLDays: 7, CTLDays: 42, FTPRollingWindowDays: 42,
				DataDir: "d", ActivitiesFile: "a.csv", StreamsDir: "s", ProcessedDataDir: "p",
			},
			expectError: true,
			errContains: "lt1_power",
		},
		{
			name: "atl not less than ctl",
			config: Config{
				CPWindowDays: 90, ATLDays: 42, CTLDays: 42, FTPRollingWindowDays: 42,
				DataDir: "d", ActivitiesFile: "a.csv", StreamsDir: "s", ProcessedDataDir: "p",
			},
			expectError: true,
			errContains: "atl_days",
		},
		{
			name:        "missing paths",
			config:      Config{CPWindowDays: 90, ATLDays: 7, CTLDays: 42, FTPRollingWindowDays: 42},
			expectError: true,
			errContains: "data_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.expectError && tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestLoadAppliesDefaultsAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "ftp: 250\ndata_dir: mydata\nactivities_file: acts.csv\nstreams_dir: streams\nprocessed_data_dir: out\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	t.Setenv("RUNNERAN_FTP", "999") // YAML already sets ftp, so env must not win
	t.Setenv("RUNNERAN_FTHR", "180") // fthr unset in YAML, so env should apply

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FTP != 250 {
		t.Errorf("FTP = %v, want 250 (YAML must win over env)", cfg.FTP)
	}
	if cfg.FTHR != 180 {
		t.Errorf("FTHR = %v, want 180 (env override should apply when YAML is silent)", cfg.FTHR)
	}
	if cfg.CPWindowDays != 90 {
		t.Errorf("CPWindowDays = %v, want default 90", cfg.CPWindowDays)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != ErrNoConfig {
		t.Fatalf("err = %v, want ErrNoConfig", err)
	}
}
