// Package settings resolves tool settings from flags, VERCAST_* environment
// variables, an optional .env file and an optional .vercast.yaml file, in
// that order of precedence.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable vercast reads.
const EnvPrefix = "VERCAST"

// Settings are the resolved tool settings of one invocation.
type Settings struct {
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	DryRun    bool   `mapstructure:"dry-run"`
	Cwd       string `mapstructure:"cwd"`
	// OTelEndpoint enables tracing when set.
	OTelEndpoint string `mapstructure:"otel-endpoint"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{LogLevel: "info", Cwd: "."}
}

// Load resolves settings for cmd. Flags that were set win over VERCAST_*
// variables, which win over the settings file in the working directory.
func Load(cmd *cobra.Command) (*Settings, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("dry-run", d.DryRun)
	v.SetDefault("cwd", d.Cwd)
	v.SetDefault("otel-endpoint", "")

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cwd := v.GetString("cwd")
	if err := loadDotEnv(cwd); err != nil {
		return nil, err
	}

	v.SetConfigName(".vercast")
	v.SetConfigType("yaml")
	v.AddConfigPath(cwd)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return &s, nil
}

// loadDotEnv loads dir/.env without overriding variables already set.
func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
