package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file path.
const ConfigPath = "config.yaml"

const defaultFreeTierMonthlyLimit = 10

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                 string `yaml:"port"`
	LogLevel             string `yaml:"logLevel"`
	DatabaseURL          string `yaml:"databaseURL"`
	AuthServiceURL       string `yaml:"authServiceURL"`
	AuthJWKSURL          string `yaml:"authJwksURL"`
	JWTIssuer            string `yaml:"jwtIssuer"`
	JWTAudience          string `yaml:"jwtAudience"`
	JWTLeeway            string `yaml:"jwtLeeway"`
	FreeTierMonthlyLimit int    `yaml:"freeTierMonthlyLimit"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("AUTH_SERVICE_URL"); v != "" {
		cfg.AuthServiceURL = v
	}
	if v := os.Getenv("AUTH_JWKS_URL"); v != "" {
		cfg.AuthJWKSURL = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("JWT_AUDIENCE"); v != "" {
		cfg.JWTAudience = v
	}
	if v := os.Getenv("JWT_LEEWAY"); v != "" {
		cfg.JWTLeeway = v
	}
	if v := os.Getenv("CONTENT_FREE_TIER_MONTHLY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FreeTierMonthlyLimit = n
		}
	}
	if cfg.FreeTierMonthlyLimit <= 0 {
		cfg.FreeTierMonthlyLimit = defaultFreeTierMonthlyLimit
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml)")
	}
	if cfg.AuthServiceURL == "" {
		return errors.New("config: authServiceURL is required")
	}
	if cfg.AuthJWKSURL == "" {
		return errors.New("config: authJwksURL is required")
	}
	return nil
}

// ParseJWTLeeway parses optional JWT leeway duration string.
func ParseJWTLeeway(leewayStr string) (time.Duration, error) {
	if leewayStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(leewayStr)
	if err != nil {
		return 0, fmt.Errorf("invalid jwtLeeway duration: %w", err)
	}
	return dur, nil
}
