package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LogLevel      string   `mapstructure:"log_level"`
	LogFile       string   `mapstructure:"log_file"`
	ImageExt      []string `mapstructure:"image_extensions"`
	VideoExt      []string `mapstructure:"video_extensions"`
	ContextLevels int      `mapstructure:"context_levels"`
	UseExifTool   bool     `mapstructure:"use_exiftool"`
	SkipHidden    bool     `mapstructure:"skip_hidden"`
	MediaOnly     bool     `mapstructure:"media_only"`
}

// Classifier builds the media classifier for the configured extension lists.
func (c *Config) Classifier() *Classifier {
	return NewClassifier(c.ImageExt, c.VideoExt)
}

// LoadConfig reads, in increasing priority: defaults, <UserConfigDir>/mfm/mfm.toml,
// and MFM_* environment variables. A .env file in the working directory is
// loaded into the environment first.
func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return loadConfig(filepath.Join(configDir, "mfm"), workDir)
}

func loadConfig(configDir, workDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(workDir, ".env")); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("mfm")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("mfm")
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("image_extensions", DefaultImageExtensions)
	v.SetDefault("video_extensions", DefaultVideoExtensions)
	v.SetDefault("context_levels", 1)
	v.SetDefault("use_exiftool", false)
	v.SetDefault("skip_hidden", false)
	v.SetDefault("media_only", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; that's OK, just use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.ContextLevels < 0 {
		return nil, fmt.Errorf("context_levels must not be negative, got %d", cfg.ContextLevels)
	}
	return &cfg, nil
}

// loadDotEnv exports the keys of a dotenv file that are not already set in
// the process environment. A missing file is fine.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return err
		}
	}
	return nil
}
