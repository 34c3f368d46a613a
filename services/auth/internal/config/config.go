package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file path.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                string `yaml:"port"`
	DatabaseURL         string `yaml:"databaseURL"`
	SessionTTL          string `yaml:"sessionTTL"`
	LogLevel            string `yaml:"logLevel"`
	JWTPrivateKeyPath   string `yaml:"jwtPrivateKeyPath"`
	JWTPublicKeyPath    string `yaml:"jwtPublicKeyPath"`
	JWTKeyID            string `yaml:"jwtKeyId"`
	JWTVerifyPublicKeys string `yaml:"jwtVerifyPublicKeys"`
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
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("JWT_PRIVATE_KEY_PATH"); v != "" {
		cfg.JWTPrivateKeyPath = v
	}
	if v := os.Getenv("JWT_PUBLIC_KEY_PATH"); v != "" {
		cfg.JWTPublicKeyPath = v
	}
	if v := os.Getenv("JWT_KEY_ID"); v != "" {
		cfg.JWTKeyID = v
	}
	if v := os.Getenv("JWT_VERIFY_PUBLIC_KEYS"); v != "" {
		cfg.JWTVerifyPublicKeys = v
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
	if v := os.Getenv("AUTH_SESSION_TTL"); v != "" {
		cfg.SessionTTL = v
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
	if cfg.JWTPrivateKeyPath == "" {
		return errors.New("config: jwtPrivateKeyPath is required (set JWT_PRIVATE_KEY_PATH)")
	}
	return nil
}

// ParseSessionTTL parses optional session TTL duration string.
func ParseSessionTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	return dur, nil
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

// ParseVerifyPublicKeys parses "kid=path,kid2=path2" into a map.
func ParseVerifyPublicKeys(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	pairs := strings.Split(raw, ",")
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid jwtVerifyPublicKeys entry %q", pair)
		}
		kid := strings.TrimSpace(parts[0])
		path := strings.TrimSpace(parts[1])
		if kid == "" || path == "" {
			return nil, fmt.Errorf("invalid jwtVerifyPublicKeys entry %q", pair)
		}
		out[kid] = path
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
