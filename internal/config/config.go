package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "AIRPORT_SIM"

// Weather sources
const (
	WeatherFixed    = "fixed"
	WeatherRandom   = "random"
	WeatherScripted = "scripted"
	WeatherMETAR    = "metar"
)

// Config holds all configuration for the simulator
type Config struct {
	DBPath  string
	Airport AirportConfig
	Weather WeatherConfig
	Traffic TrafficConfig
	Log     LogConfig
}

// AirportConfig holds apron settings
type AirportConfig struct {
	Capacity         int
	ReleaseOnTakeOff bool // false keeps departed planes on the apron
}

// WeatherConfig selects and tunes the weather provider
type WeatherConfig struct {
	Source          string
	Stormy          bool    // fixed: the answer; metar: answer before the first report
	StormChance     float64 // random: probability of a storm per query
	Seed            uint64
	Script          []bool // scripted: answers replayed in order
	Station         string // metar: ICAO station
	APIBaseURL      string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	MaxRetries      int
	MaxAge          time.Duration // metar: older reports fall back to Stormy
	GustThresholdKt int
}

// TrafficConfig drives the traffic generator
type TrafficConfig struct {
	Interval  time.Duration
	FleetCSV  string
	FleetSize int // planes generated when the fleet table is empty and no CSV is set
	Seed      uint64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from config file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("db_path", "airport_sim.db")
	v.SetDefault("airport.capacity", 20)
	v.SetDefault("airport.release_on_take_off", true)
	v.SetDefault("weather.source", WeatherRandom)
	v.SetDefault("weather.stormy", false)
	v.SetDefault("weather.storm_chance", 0.1)
	v.SetDefault("weather.seed", 1)
	v.SetDefault("weather.script", []bool{})
	v.SetDefault("weather.station", "EGLL")
	v.SetDefault("weather.api_base_url", "https://aviationweather.gov/api/data")
	v.SetDefault("weather.refresh_interval", "10m")
	v.SetDefault("weather.request_timeout", "10s")
	v.SetDefault("weather.max_retries", 2)
	v.SetDefault("weather.max_age", "2h")
	v.SetDefault("weather.gust_threshold_kt", 40)
	v.SetDefault("traffic.interval", "5s")
	v.SetDefault("traffic.fleet_csv", "")
	v.SetDefault("traffic.fleet_size", 30)
	v.SetDefault("traffic.seed", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/airport_sim")
	v.AddConfigPath(".")

	if configPath := os.Getenv(envPrefix + "_CONFIG_PATH"); configPath != "" {
		v.SetConfigFile(configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file: defaults + env vars
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		DBPath: v.GetString("db_path"),
		Airport: AirportConfig{
			Capacity:         v.GetInt("airport.capacity"),
			ReleaseOnTakeOff: v.GetBool("airport.release_on_take_off"),
		},
		Weather: WeatherConfig{
			Source:          strings.ToLower(v.GetString("weather.source")),
			Stormy:          v.GetBool("weather.stormy"),
			StormChance:     v.GetFloat64("weather.storm_chance"),
			Seed:            v.GetUint64("weather.seed"),
			Station:         strings.ToUpper(v.GetString("weather.station")),
			APIBaseURL:      v.GetString("weather.api_base_url"),
			RefreshInterval: v.GetDuration("weather.refresh_interval"),
			RequestTimeout:  v.GetDuration("weather.request_timeout"),
			MaxRetries:      v.GetInt("weather.max_retries"),
			MaxAge:          v.GetDuration("weather.max_age"),
			GustThresholdKt: v.GetInt("weather.gust_threshold_kt"),
		},
		Traffic: TrafficConfig{
			Interval:  v.GetDuration("traffic.interval"),
			FleetCSV:  v.GetString("traffic.fleet_csv"),
			FleetSize: v.GetInt("traffic.fleet_size"),
			Seed:      v.GetUint64("traffic.seed"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	script, err := parseScript(v.Get("weather.script"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: weather.script: %w", err)
	}
	cfg.Weather.Script = script

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// parseScript accepts a YAML list of booleans or, from the environment, a
// comma separated string such as "false,true,false"
func parseScript(raw any) ([]bool, error) {
	switch s := raw.(type) {
	case nil:
		return nil, nil
	case []bool:
		return s, nil
	case string:
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		parts := strings.Split(s, ",")
		script := make([]bool, len(parts))
		for i, p := range parts {
			b, err := parseBool(p)
			if err != nil {
				return nil, err
			}
			script[i] = b
		}
		return script, nil
	case []any:
		script := make([]bool, len(s))
		for i, item := range s {
			switch b := item.(type) {
			case bool:
				script[i] = b
			case string:
				parsed, err := parseBool(b)
				if err != nil {
					return nil, err
				}
				script[i] = parsed
			default:
				return nil, fmt.Errorf("entry %d: expected a boolean, got %T", i, item)
			}
		}
		return script, nil
	}
	return nil, fmt.Errorf("expected a list of booleans, got %T", raw)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "stormy", "1":
		return true, nil
	case "false", "clear", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid weather entry %q", s)
}

// validate validates the configuration values
func validate(cfg *Config) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if cfg.Airport.Capacity <= 0 {
		return fmt.Errorf("airport.capacity must be greater than 0")
	}

	switch cfg.Weather.Source {
	case WeatherFixed, WeatherScripted:
	case WeatherRandom:
		if cfg.Weather.StormChance < 0 || cfg.Weather.StormChance > 1 {
			return fmt.Errorf("weather.storm_chance must be between 0 and 1")
		}
	case WeatherMETAR:
		if len(cfg.Weather.Station) != 4 {
			return fmt.Errorf("weather.station must be a 4 letter ICAO code: %q", cfg.Weather.Station)
		}
		if cfg.Weather.RefreshInterval < time.Minute {
			return fmt.Errorf("weather.refresh_interval must be at least 1m")
		}
		if cfg.Weather.RequestTimeout <= 0 {
			return fmt.Errorf("weather.request_timeout must be greater than 0")
		}
		if cfg.Weather.MaxRetries < 0 {
			return fmt.Errorf("weather.max_retries must not be negative")
		}
	default:
		return fmt.Errorf("invalid weather source: %s (must be fixed, random, scripted, or metar)", cfg.Weather.Source)
	}

	if cfg.Traffic.Interval <= 0 {
		return fmt.Errorf("traffic.interval must be greater than 0")
	}
	if cfg.Traffic.FleetCSV == "" && cfg.Traffic.FleetSize <= 0 {
		return fmt.Errorf("traffic.fleet_size must be greater than 0 when traffic.fleet_csv is not set")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Log.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[cfg.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", cfg.Log.Format)
	}

	return nil
}
