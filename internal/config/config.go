// Package config loads and validates the YAML configuration document that
// drives one analytics run: athlete thresholds, power-curve and fitness
// recurrence parameters, and file layout.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GradeAdjustment holds the Normalized Graded Pace parameters used by the
// PaceCalculator's uphill/downhill weighting.
type GradeAdjustment struct {
	Uphill    float64 `yaml:"uphill"`
	Downhill  float64 `yaml:"downhill"`
	Smoothing int     `yaml:"smoothing"`
}

// Config is the full set of options read from the configuration document.
// Zero-valued numeric fields are treated as "unset" and filled from
// DefaultConfig by Load, except ftp/fthr/lt1_*/lt2_*/cp/w_prime/
// rider_weight_kg, which are genuinely optional and left at zero to mean
// "not configured."
type Config struct {
	FTP  float64 `yaml:"ftp"`
	FTHR float64 `yaml:"fthr"`

	LT1Power float64 `yaml:"lt1_power"`
	LT2Power float64 `yaml:"lt2_power"`
	LT1HR    float64 `yaml:"lt1_hr"`
	LT2HR    float64 `yaml:"lt2_hr"`

	CP     float64 `yaml:"cp"`
	WPrime float64 `yaml:"w_prime"`

	RiderWeightKG float64 `yaml:"rider_weight_kg"`

	PowerCurveIntervals []int `yaml:"power_curve_intervals"`

	CPWindowDays          int `yaml:"cp_window_days"`
	ATLDays               int `yaml:"atl_days"`
	CTLDays               int `yaml:"ctl_days"`
	FTPRollingWindowDays  int `yaml:"ftp_rolling_window_days"`

	GradeAdjustment GradeAdjustment `yaml:"grade_adjustment"`

	DataDir           string `yaml:"data_dir"`
	ActivitiesFile    string `yaml:"activities_file"`
	StreamsDir        string `yaml:"streams_dir"`
	ProcessedDataDir  string `yaml:"processed_data_dir"`
}

// ErrNoConfig is returned when the configuration file does not exist.
var ErrNoConfig = errors.New("config file not found")

// envPrefix is the consistent prefix for environment-variable overrides.
const envPrefix = "RUNNERAN_"

// DefaultConfig returns the configuration applied for any field left unset
// in the loaded document.
func DefaultConfig() Config {
	return Config{
		PowerCurveIntervals: []int{5, 15, 30, 60, 300, 600, 1200, 1800, 3600},
		CPWindowDays:        90,
		ATLDays:             7,
		CTLDays:             42,
		FTPRollingWindowDays: 42,
		GradeAdjustment: GradeAdjustment{
			Uphill:    2.5,
			Downhill:  1.0,
			Smoothing: 3,
		},
		DataDir:          "data",
		ActivitiesFile:   "activities.csv",
		StreamsDir:       "streams",
		ProcessedDataDir: "processed",
	}
}

// Load reads the YAML document at path, applies defaults to anything left
// unset, then applies RUNNERAN_* environment overrides (YAML always wins
// when both set the same field), and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg, data)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	d := DefaultConfig()
	if len(cfg.PowerCurveIntervals) == 0 {
		cfg.PowerCurveIntervals = d.PowerCurveIntervals
	}
	if cfg.CPWindowDays == 0 {
		cfg.CPWindowDays = d.CPWindowDays
	}
	if cfg.ATLDays == 0 {
		cfg.ATLDays = d.ATLDays
	}
	if cfg.CTLDays == 0 {
		cfg.CTLDays = d.CTLDays
	}
	if cfg.FTPRollingWindowDays == 0 {
		cfg.FTPRollingWindowDays = d.FTPRollingWindowDays
	}
	if cfg.GradeAdjustment.Uphill == 0 {
		cfg.GradeAdjustment.Uphill = d.GradeAdjustment.Uphill
	}
	if cfg.GradeAdjustment.Downhill == 0 {
		cfg.GradeAdjustment.Downhill = d.GradeAdjustment.Downhill
	}
	if cfg.GradeAdjustment.Smoothing == 0 {
		cfg.GradeAdjustment.Smoothing = d.GradeAdjustment.Smoothing
	}
	if cfg.DataDir == "" {
		cfg.DataDir = d.DataDir
	}
	if cfg.ActivitiesFile == "" {
		cfg.ActivitiesFile = d.ActivitiesFile
	}
	if cfg.StreamsDir == "" {
		cfg.StreamsDir = d.StreamsDir
	}
	if cfg.ProcessedDataDir == "" {
		cfg.ProcessedDataDir = d.ProcessedDataDir
	}
}

// rawKeys records which top-level YAML keys the document actually set, so
// env overrides only fill fields the document left untouched.
func rawKeys(data []byte) map[string]bool {
	var m map[string]any
	keys := map[string]bool{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return keys
	}
	for k := range m {
		keys[k] = true
	}
	return keys
}

// applyEnvOverrides fills fields from RUNNERAN_* environment variables,
// skipping any field the YAML document already set explicitly, so YAML
// always wins over an environment override for the same field.
func applyEnvOverrides(cfg *Config, data []byte) {
	set := rawKeys(data)

	envFloat := func(name string, yamlKey string, dst *float64) {
		if set[yamlKey] {
			return
		}
		if v, ok := lookupEnv(name); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	envInt := func(name string, yamlKey string, dst *int) {
		if set[yamlKey] {
			return
		}
		if v, ok := lookupEnv(name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envString := func(name string, yamlKey string, dst *string) {
		if set[yamlKey] {
			return
		}
		if v, ok := lookupEnv(name); ok {
			*dst = v
		}
	}

	envFloat("FTP", "ftp", &cfg.FTP)
	envFloat("FTHR", "fthr", &cfg.FTHR)
	envFloat("LT1_POWER", "lt1_power", &cfg.LT1Power)
	envFloat("LT2_POWER", "lt2_power", &cfg.LT2Power)
	envFloat("LT1_HR", "lt1_hr", &cfg.LT1HR)
	envFloat("LT2_HR", "lt2_hr", &cfg.LT2HR)
	envFloat("CP", "cp", &cfg.CP)
	envFloat("W_PRIME", "w_prime", &cfg.WPrime)
	envFloat("RIDER_WEIGHT_KG", "rider_weight_kg", &cfg.RiderWeightKG)
	envInt("CP_WINDOW_DAYS", "cp_window_days", &cfg.CPWindowDays)
	envInt("ATL_DAYS", "atl_days", &cfg.ATLDays)
	envInt("CTL_DAYS", "ctl_days", &cfg.CTLDays)
	envInt("FTP_ROLLING_WINDOW_DAYS", "ftp_rolling_window_days", &cfg.FTPRollingWindowDays)
	envString("DATA_DIR", "data_dir", &cfg.DataDir)
	envString("ACTIVITIES_FILE", "activities_file", &cfg.ActivitiesFile)
	envString("STREAMS_DIR", "streams_dir", &cfg.StreamsDir)
	envString("PROCESSED_DATA_DIR", "processed_data_dir", &cfg.ProcessedDataDir)
}

func lookupEnv(suffix string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + suffix)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Validate checks cross-field invariants. It does not require ftp/fthr/
// cp/w_prime to be present: their absence just disables the metrics that
// depend on them (PowerCalculator, HeartRateCalculator, AdvancedPowerCalculator
// degrade gracefully per their own component contracts).
func (c *Config) Validate() error {
	if c.FTP < 0 {
		return fmt.Errorf("ftp must be non-negative, got %v", c.FTP)
	}
	if c.FTHR < 0 {
		return fmt.Errorf("fthr must be non-negative, got %v", c.FTHR)
	}
	if c.LT1Power > 0 && c.LT2Power > 0 && c.LT1Power >= c.LT2Power {
		return fmt.Errorf("lt1_power (%v) must be less than lt2_power (%v)", c.LT1Power, c.LT2Power)
	}
	if c.LT1HR > 0 && c.LT2HR > 0 && c.LT1HR >= c.LT2HR {
		return fmt.Errorf("lt1_hr (%v) must be less than lt2_hr (%v)", c.LT1HR, c.LT2HR)
	}
	if c.CP < 0 || c.WPrime < 0 {
		return fmt.Errorf("cp and w_prime must be non-negative, got cp=%v w_prime=%v", c.CP, c.WPrime)
	}
	if c.CPWindowDays <= 0 {
		return fmt.Errorf("cp_window_days must be positive, got %v", c.CPWindowDays)
	}
	if c.ATLDays <= 0 || c.CTLDays <= 0 {
		return fmt.Errorf("atl_days and ctl_days must be positive, got atl=%v ctl=%v", c.ATLDays, c.CTLDays)
	}
	if c.ATLDays >= c.CTLDays {
		return fmt.Errorf("atl_days (%v) must be less than ctl_days (%v)", c.ATLDays, c.CTLDays)
	}
	if c.FTPRollingWindowDays <= 0 {
		return fmt.Errorf("ftp_rolling_window_days must be positive, got %v", c.FTPRollingWindowDays)
	}
	for _, d := range c.PowerCurveIntervals {
		if d <= 0 {
			return fmt.Errorf("power_curve_intervals must all be positive, got %v", d)
		}
	}
	if c.DataDir == "" || c.ActivitiesFile == "" || c.StreamsDir == "" || c.ProcessedDataDir == "" {
		return errors.New("data_dir, activities_file, streams_dir and processed_data_dir are all required")
	}
	return nil
}

// HasLTPowerZones reports whether both power LT thresholds are configured,
// selecting the LT-based 7-zone power layout over the %FTP layout.
func (c *Config) HasLTPowerZones() bool {
	return c.LT1Power > 0 && c.LT2Power > 0
}

// HasLTHRZones reports whether both HR LT thresholds are configured,
// selecting the LT-based 5-zone HR layout over the %FTHR layout.
func (c *Config) HasLTHRZones() bool {
	return c.LT1HR > 0 && c.LT2HR > 0
}

// HasWBalance reports whether CP and W' are both configured, enabling
// W'-balance and match-burn metrics.
func (c *Config) HasWBalance() bool {
	return c.CP > 0 && c.WPrime > 0
}
