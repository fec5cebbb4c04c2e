package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BASE_URL", "http://localhost:8000")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.JWTAlgorithm != "HS256" {
		t.Fatalf("JWTAlgorithm want HS256, got %q", cfg.JWTAlgorithm)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("AccessTokenTTL want 1h, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("RefreshTokenTTL want 7d, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.UserCacheTTL != time.Hour {
		t.Fatalf("UserCacheTTL want 1h, got %v", cfg.UserCacheTTL)
	}
	if cfg.HTTPAddress != ":8000" {
		t.Fatalf("HTTPAddress want :8000, got %q", cfg.HTTPAddress)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("REFRESH_TOKEN_TTL", "3h")
	t.Setenv("USER_CACHE_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("AccessTokenTTL want 2m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 3*time.Hour {
		t.Fatalf("RefreshTokenTTL want 3h, got %v", cfg.RefreshTokenTTL)
	}
	if cfg.UserCacheTTL != 90*time.Second {
		t.Fatalf("UserCacheTTL want 90s, got %v", cfg.UserCacheTTL)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("BASE_URL", "http://localhost:8000")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error due to missing JWT_SECRET, got nil")
	}
}

func TestLoadRejectsUnknownAlgorithm(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ALGORITHM", "none")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for JWT_ALGORITHM=none, got nil")
	}
}
