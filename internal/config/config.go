package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration shared by the CLI and the stub server.
type Config struct {
	API struct {
		BaseURL       string        `mapstructure:"base_url"`
		Timeout       time.Duration `mapstructure:"timeout"`
		UploadTimeout time.Duration `mapstructure:"upload_timeout"`
		PageSize      int           `mapstructure:"page_size"`
	} `mapstructure:"api"`

	Photo struct {
		MaxBytes    int64 `mapstructure:"max_bytes"`
		MaxEdge     int   `mapstructure:"max_edge"`
		JPEGQuality int   `mapstructure:"jpeg_quality"`
	} `mapstructure:"photo"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   string `mapstructure:"file"`
	} `mapstructure:"logging"`

	Stub struct {
		Addr          string        `mapstructure:"addr"`
		SigningSecret string        `mapstructure:"signing_secret"`
		TokenTTL      time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"stub"`
}

// Load reads configuration from an optional yaml file plus environment
// variables, with defaults good enough for local development.
func Load() (Config, error) {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.base_url", "http://localhost:8080")
	viper.SetDefault("api.timeout", "15s")
	viper.SetDefault("api.upload_timeout", "60s")
	viper.SetDefault("api.page_size", 50)
	viper.SetDefault("photo.max_bytes", 8*1024*1024)
	viper.SetDefault("photo.max_edge", 1600)
	viper.SetDefault("photo.jpeg_quality", 85)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.file", "")
	viper.SetDefault("stub.addr", ":8080")
	viper.SetDefault("stub.signing_secret", "dev-secret")
	viper.SetDefault("stub.token_ttl", "8h")

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/shopfloor")
	}

	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Config{}, fmt.Errorf("config read error: %w", err)
		}
	}

	_ = viper.BindEnv("api.base_url", "API_BASE_URL")
	_ = viper.BindEnv("api.timeout", "API_TIMEOUT")
	_ = viper.BindEnv("api.upload_timeout", "API_UPLOAD_TIMEOUT")
	_ = viper.BindEnv("api.page_size", "API_PAGE_SIZE")
	_ = viper.BindEnv("logging.level", "LOG_LEVEL")
	_ = viper.BindEnv("logging.format", "LOG_FORMAT")
	_ = viper.BindEnv("stub.addr", "STUB_ADDR")
	_ = viper.BindEnv("stub.signing_secret", "STUB_SIGNING_SECRET")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad panics on configuration errors. Used by the binaries at startup.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func validate(c *Config) error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.PageSize <= 0 {
		return errors.New("api.page_size must be positive")
	}
	if c.Photo.JPEGQuality < 1 || c.Photo.JPEGQuality > 100 {
		return errors.New("photo.jpeg_quality must be between 1 and 100")
	}
	return nil
}
