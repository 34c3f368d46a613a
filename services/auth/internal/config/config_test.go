package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "port: \"8081\"\ndatabaseURL: \"postgres://localhost/auth\"\njwtPrivateKeyPath: \"/keys/private.pem\"\nsessionTTL: \"30m\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://db-host/auth")
	t.Setenv("JWT_ISSUER", "issuer-x")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://db-host/auth" {
		t.Fatalf("env override missing, databaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.JWTIssuer != "issuer-x" {
		t.Fatalf("jwt issuer = %q", cfg.JWTIssuer)
	}
	ttl, err := ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		t.Fatalf("parse ttl: %v", err)
	}
	if ttl.Minutes() != 30 {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestLoadRequiresPortAndDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logLevel: debug\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for missing port")
	}
}

func TestParseVerifyPublicKeys(t *testing.T) {
	keys, err := ParseVerifyPublicKeys("kid-a=/keys/a.pem, kid-b=/keys/b.pem")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 2 || keys["kid-a"] != "/keys/a.pem" || keys["kid-b"] != "/keys/b.pem" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if _, err := ParseVerifyPublicKeys("bogus-entry"); err == nil {
		t.Fatalf("expected malformed entry to fail")
	}
	keys, err = ParseVerifyPublicKeys("  ")
	if err != nil || keys != nil {
		t.Fatalf("expected empty input to yield nil, got %v err %v", keys, err)
	}
}
