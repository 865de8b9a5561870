// Package config loads configuration from defaults, an optional config file,
// .env files and CCPARSER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override.
const EnvPrefix = "CCPARSER"

// Config is the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Addr        string `mapstructure:"addr" yaml:"addr"`
		MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		UploadDir   string `mapstructure:"upload_dir" yaml:"upload_dir"`
	} `mapstructure:"server" yaml:"server"`

	Output struct {
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"output" yaml:"output"`

	Parse struct {
		Workers int `mapstructure:"workers" yaml:"workers"`
	} `mapstructure:"parse" yaml:"parse"`
}

// Load builds a Config. configFile may be empty, in which case the usual
// search paths are tried and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	LoadEnv()

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.card-statement-parser")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadEnv loads a .env file from the working directory when one exists.
// Variables already set in the environment win.
func LoadEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warnf("Error loading .env file: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("server.upload_dir", "")

	v.SetDefault("output.format", "json")

	v.SetDefault("parse.workers", 4)
}

// OutputFormats lists the accepted values of output.format.
var OutputFormats = []string{"json", "yaml", "csv"}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", c.Log.Format)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive, got: %d", c.Server.MaxUploadMB)
	}
	if c.Parse.Workers < 1 {
		return fmt.Errorf("parse.workers must be positive, got: %d", c.Parse.Workers)
	}
	if !validOutputFormat(c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of %s)", c.Output.Format, strings.Join(OutputFormats, ", "))
	}
	return nil
}

func validOutputFormat(f string) bool {
	for _, o := range OutputFormats {
		if f == o {
			return true
		}
	}
	return false
}
