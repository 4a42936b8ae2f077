package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/seatrove/seadb/pkg/transport"
)

const (
	DefaultAPIVersion = "2024-06-01"
	DefaultFrequency  = 30 * time.Second
)

// Config is the explicit configuration surface of the SDK and CLI. Every
// knob has a named field; nothing is read out of band.
type Config struct {
	Endpoint   string `yaml:"endpoint"    mapstructure:"endpoint"`
	APIToken   string `yaml:"api_token"   mapstructure:"api_token"`
	Group      string `yaml:"group"       mapstructure:"group"`
	APIVersion string `yaml:"api_version" mapstructure:"api_version"`

	Polling PollingConfig         `yaml:"polling" mapstructure:"polling"`
	Retry   transport.RetryBudget `yaml:"retry"   mapstructure:"retry"`
}

// PollingConfig controls poller construction for CLI-driven operations.
type PollingConfig struct {
	Disabled        bool          `yaml:"disabled"          mapstructure:"disabled"`
	Frequency       time.Duration `yaml:"frequency"         mapstructure:"frequency"`
	KeepRawResponse bool          `yaml:"keep_raw_response" mapstructure:"keep_raw_response"`
}

// Load reads the configuration from viper, which the CLI has already
// pointed at the config file and flags. A .env file in the working
// directory is folded into the environment first, then every key is bound
// to its SEADB_* environment variable, so precedence is
// file < environment < flag.
func Load() (*Config, error) {
	_ = godotenv.Load()

	bindEnv()
	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// bindEnv binds every Config key explicitly; viper.Unmarshal only sees
// environment values for keys it already knows about. Nested keys map
// through the replacer, e.g. polling.frequency <- SEADB_POLLING_FREQUENCY.
func bindEnv() {
	viper.SetEnvPrefix("SEADB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range []string{
		"endpoint", "api_token", "group", "api_version",
		"polling.disabled", "polling.frequency", "polling.keep_raw_response",
		"retry.max_retries", "retry.initial_interval",
		"retry.max_interval", "retry.max_elapsed_time",
	} {
		_ = viper.BindEnv(key)
	}
}

func setDefaults() {
	viper.SetDefault("api_version", DefaultAPIVersion)
	viper.SetDefault("polling.frequency", DefaultFrequency)
	budget := transport.DefaultRetryBudget()
	viper.SetDefault("retry.max_retries", budget.MaxRetries)
	viper.SetDefault("retry.initial_interval", budget.InitialInterval)
	viper.SetDefault("retry.max_interval", budget.MaxInterval)
	viper.SetDefault("retry.max_elapsed_time", budget.MaxElapsedTime)
}

// Validate checks the fields every API call needs.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("api_token is required")
	}
	return nil
}

// DefaultConfigPath returns the path of the default config file,
// $HOME/.seadb.yaml.
func DefaultConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return home + "/.seadb.yaml", nil
}
