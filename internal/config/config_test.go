package config

import (
	"testing"
	"time"
)

// DATABASE_URL未設定の場合にエラーになることを検証
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DATABASE_URL is not set")
	}
}

// デフォルト値が適用されることを検証
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/decomytree")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.SessionMaxAge != 86400*30 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 86400*30)
	}
	if cfg.Timezone != "Local" {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, "Local")
	}
	if cfg.Location != time.Local {
		t.Errorf("Location = %v, want time.Local", cfg.Location)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitMessagePost != 10 {
		t.Errorf("RateLimitMessagePost = %d, want 10", cfg.RateLimitMessagePost)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:5173" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should be false for http BaseURL")
	}
}

// IANAタイムゾーン名が解決されることを検証
func TestLoad_ExplicitTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/decomytree")
	t.Setenv("TREE_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want time.UTC", cfg.Location)
	}
}

// 不正なタイムゾーン名がエラーになることを検証
func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/decomytree")
	t.Setenv("TREE_TIMEZONE", "Not/AZone")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

// https BaseURLでセキュアクッキーが有効になることを検証
func TestLoad_CookieSecure(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/decomytree")
	t.Setenv("BASE_URL", "https://deco.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should be true for https BaseURL")
	}
}
