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

const (
	defaultModel     = "gpt-5-mini-2025-08-07"
	defaultMaxTokens = 500
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                string `yaml:"port"`
	LogLevel            string `yaml:"logLevel"`
	OpenAIAPIKey        string `yaml:"openaiApiKey"`
	OpenAIBaseURL       string `yaml:"openaiBaseURL"`
	Model               string `yaml:"model"`
	MaxCompletionTokens int    `yaml:"maxCompletionTokens"`
	AuthServiceURL      string `yaml:"authServiceURL"`
	AuthJWKSURL         string `yaml:"authJwksURL"`
	JWTIssuer           string `yaml:"jwtIssuer"`
	JWTAudience         string `yaml:"jwtAudience"`
	JWTLeeway           string `yaml:"jwtLeeway"`
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
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
	if v := os.Getenv("GENERATION_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GENERATION_MAX_COMPLETION_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxCompletionTokens = n
		}
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
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxCompletionTokens <= 0 {
		cfg.MaxCompletionTokens = defaultMaxTokens
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
	if cfg.OpenAIAPIKey == "" {
		return errors.New("config: openaiApiKey is required (set OPENAI_API_KEY)")
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
