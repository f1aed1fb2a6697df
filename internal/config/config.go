package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/claude/trainready/internal/analytics"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Athlete   AthleteConfig   `yaml:"athlete"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the database file when Driver is sqlite.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AthleteConfig holds the physiological constants the analytics depend on.
type AthleteConfig struct {
	RestingHR float64 `yaml:"resting_hr"`
	MaxHR     float64 `yaml:"max_hr"`
	// Sex selects the TRIMP gender factor ("male" or "female") unless
	// GenderFactor is set explicitly.
	Sex          string  `yaml:"sex"`
	GenderFactor float64 `yaml:"gender_factor"`
}

// AnalyticsConfig selects models and windows for the report pipeline.
type AnalyticsConfig struct {
	Timezone             string                   `yaml:"timezone"`
	TRIMPMode            string                   `yaml:"trimp_mode"`
	LoadModel            string                   `yaml:"load_model"`
	SimpleWindow         int                      `yaml:"simple_window"`
	IntensityMultipliers map[string]float64       `yaml:"intensity_multipliers"`
	DefaultMultiplier    float64                  `yaml:"default_multiplier"`
	ZoneBasis            string                   `yaml:"zone_basis"`
	ZoneMaxHR            float64                  `yaml:"zone_max_hr"`
	WindowDays           int                      `yaml:"window_days"`
	SignalWindow         int                      `yaml:"signal_window"`
	Forecast             analytics.ForecastConfig `yaml:"forecast"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location returns the configured time zone, UTC when unset.
func (a AnalyticsConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(a.Timezone)
}

// Factor returns the TRIMP gender factor.
func (a AthleteConfig) Factor() float64 {
	if a.GenderFactor > 0 {
		return a.GenderFactor
	}
	if a.Sex == "female" {
		return analytics.GenderFactorFemale
	}
	return analytics.GenderFactorMale
}

// Load reads config from a YAML file, applies defaults, then environment
// variable overrides. Env vars use the prefix TRAINREADY_:
//
//	TRAINREADY_SERVER_HOST, TRAINREADY_SERVER_PORT,
//	TRAINREADY_DB_DRIVER, TRAINREADY_DB_PATH,
//	TRAINREADY_DB_HOST, TRAINREADY_DB_PORT, TRAINREADY_DB_NAME,
//	TRAINREADY_DB_USER, TRAINREADY_DB_PASSWORD, TRAINREADY_DB_SSLMODE,
//	TRAINREADY_AUTH_API_KEY,
//	TRAINREADY_ATHLETE_RESTING_HR, TRAINREADY_ATHLETE_MAX_HR,
//	TRAINREADY_TRIMP_MODE, TRAINREADY_LOAD_MODEL, TRAINREADY_TIMEZONE
func Load(path string) (*Config, error) {
	// Seed forecast coefficients so an explicit zero in the file is kept.
	cfg := &Config{}
	cfg.Analytics.Forecast = analytics.DefaultForecastConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Athlete.RestingHR == 0 {
		cfg.Athlete.RestingHR = 55
	}
	if cfg.Athlete.MaxHR == 0 {
		cfg.Athlete.MaxHR = 205
	}

	a := &cfg.Analytics
	if a.TRIMPMode == "" {
		a.TRIMPMode = "heuristic"
	}
	if a.LoadModel == "" {
		a.LoadModel = "decay"
	}
	if a.SimpleWindow == 0 {
		a.SimpleWindow = 3
	}
	if a.IntensityMultipliers == nil {
		a.IntensityMultipliers = analytics.DefaultHeuristic().Multipliers
	}
	if a.DefaultMultiplier == 0 {
		a.DefaultMultiplier = 1.0
	}
	if a.ZoneBasis == "" {
		a.ZoneBasis = string(analytics.ReserveBasis)
	}
	if a.WindowDays == 0 {
		a.WindowDays = 90
	}
	if a.SignalWindow == 0 {
		a.SignalWindow = 7
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRAINREADY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("TRAINREADY_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TRAINREADY_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("TRAINREADY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRAINREADY_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("TRAINREADY_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("TRAINREADY_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("TRAINREADY_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("TRAINREADY_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("TRAINREADY_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("TRAINREADY_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("TRAINREADY_ATHLETE_RESTING_HR"); v != "" {
		if hr, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Athlete.RestingHR = hr
		}
	}
	if v := os.Getenv("TRAINREADY_ATHLETE_MAX_HR"); v != "" {
		if hr, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Athlete.MaxHR = hr
		}
	}
	if v := os.Getenv("TRAINREADY_TRIMP_MODE"); v != "" {
		cfg.Analytics.TRIMPMode = v
	}
	if v := os.Getenv("TRAINREADY_LOAD_MODEL"); v != "" {
		cfg.Analytics.LoadModel = v
	}
	if v := os.Getenv("TRAINREADY_TIMEZONE"); v != "" {
		cfg.Analytics.Timezone = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Athlete.MaxHR <= c.Athlete.RestingHR {
		return fmt.Errorf("athlete.max_hr (%.0f) must exceed athlete.resting_hr (%.0f)", c.Athlete.MaxHR, c.Athlete.RestingHR)
	}
	switch c.Analytics.TRIMPMode {
	case "heuristic", "physiological":
	default:
		return fmt.Errorf("analytics.trimp_mode %q is not supported", c.Analytics.TRIMPMode)
	}
	switch c.Analytics.LoadModel {
	case "decay", "simple":
	default:
		return fmt.Errorf("analytics.load_model %q is not supported", c.Analytics.LoadModel)
	}
	switch analytics.ZoneBasis(c.Analytics.ZoneBasis) {
	case analytics.ReserveBasis, analytics.MaxBasis:
	default:
		return fmt.Errorf("analytics.zone_basis %q is not supported", c.Analytics.ZoneBasis)
	}
	if f := c.Analytics.Forecast; f.Horizon < 1 || f.MinSamples < 1 {
		return fmt.Errorf("analytics.forecast horizon_days and min_samples must be at least 1")
	}
	if _, err := c.Analytics.Location(); err != nil {
		return fmt.Errorf("analytics.timezone: %w", err)
	}
	return nil
}
