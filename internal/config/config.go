package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	DBPath string // e.g. "./data/fleet.db"

	// Deadline alert sweep
	AlertWindowDays    int // 0 = sweep disabled
	AlertIntervalHours int // how often the scanner runs (default 24)
}

// Load reads configuration from FLEETD_* environment variables, with an
// optional yaml file layered underneath (FLEETD_CONFIG points at it).
// Missing values fall back to dev-friendly defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FLEETD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_addr", ":8080")
	v.SetDefault("env", "dev")
	v.SetDefault("db_path", "./data/fleet.db")
	v.SetDefault("alert_window_days", 30)
	v.SetDefault("alert_interval_hours", 24)

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	env := strings.ToLower(v.GetString("env"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	cfg := Config{
		HTTPAddr: v.GetString("http_addr"),
		Env:      env,
		DBPath:   v.GetString("db_path"),

		AlertWindowDays:    v.GetInt("alert_window_days"),
		AlertIntervalHours: v.GetInt("alert_interval_hours"),
	}
	if cfg.AlertWindowDays < 0 {
		cfg.AlertWindowDays = 0
	}
	if cfg.AlertIntervalHours <= 0 {
		cfg.AlertIntervalHours = 24
	}
	return cfg, nil
}
