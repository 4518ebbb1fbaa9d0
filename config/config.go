package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime knob of the analysis pipelines. Values come
// from config.yaml when present, overlaid by MACRO_* environment variables.
type Config struct {
	// DatabaseUrl is the Postgres DSN for the observation cache. Empty
	// disables caching and every run fetches live.
	DatabaseUrl string `mapstructure:"database_url"`

	// FredApiKey authorizes FRED series requests. Empty means the FRED
	// endpoints report the series as unavailable.
	FredApiKey string `mapstructure:"fred_api_key"`

	Port      int    `mapstructure:"port"`
	OutputDir string `mapstructure:"output_dir"`

	// Smoothing is the default trend penalty weight, 100 suits annual data.
	Smoothing    float64 `mapstructure:"smoothing"`
	CapitalShare float64 `mapstructure:"capital_share"`

	StartYear int `mapstructure:"start_year"`
	EndYear   int `mapstructure:"end_year"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Load reads config.yaml from the working directory or ./config, fills in
// defaults, and applies environment overrides. A missing file is fine, a
// malformed one is not.
func Load() (Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("database_url", "")
	viper.SetDefault("fred_api_key", "")
	viper.SetDefault("port", 8080)
	viper.SetDefault("output_dir", "output")
	viper.SetDefault("smoothing", 100.0)
	viper.SetDefault("capital_share", 0.35)
	viper.SetDefault("start_year", 1990)
	viper.SetDefault("end_year", 2019)
	viper.SetDefault("request_timeout", 30*time.Second)

	viper.SetEnvPrefix("MACRO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// the conventional unprefixed names keep working alongside MACRO_*
	_ = viper.BindEnv("database_url", "MACRO_DATABASE_URL", "DATABASE_URL")
	_ = viper.BindEnv("fred_api_key", "MACRO_FRED_API_KEY", "FRED_API_KEY")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}
