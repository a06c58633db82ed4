// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the keywordschat client.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// DEFAULTS AND VALIDATION TESTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
		{"non-http url", func(c *Config) { c.API.BaseURL = "ftp://x" }},
		{"zero timeout", func(c *Config) { c.API.TimeoutSec = 0 }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }},
		{"zero table rows", func(c *Config) { c.UI.MaxTableRows = 0 }},
		{"negative archive cap", func(c *Config) { c.Archive.MaxEntries = -5 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

// =============================================================================
// FILE ROUND TRIP TESTS
// =============================================================================

func TestSaveAndLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://staging.keywordschat.com/v1"
	cfg.UI.Theme = "dark"
	cfg.Archive.Enabled = false

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("base_url = %q, want %q", loaded.API.BaseURL, cfg.API.BaseURL)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", loaded.UI.Theme)
	}
	if loaded.Archive.Enabled {
		t.Error("archive.enabled should survive round trip as false")
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"api": {"base_url": "https://example.com", "timeout_sec": 30}}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.API.BaseURL != "https://example.com" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSec != 30 {
		t.Errorf("timeout_sec = %d, want 30", cfg.API.TimeoutSec)
	}
	// Unset sections keep defaults
	if cfg.UI.MaxTableRows != Default().UI.MaxTableRows {
		t.Error("unset fields should keep defaults")
	}
}

func TestLoadFromPath_UnsupportedExtension(t *testing.T) {
	if _, err := LoadFromPath("/tmp/config.yaml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("KWC_API_URL", "https://env.example.com")
	t.Setenv("KWC_THEME", "light")
	t.Setenv("KWC_ARCHIVE", "false")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if cfg.Archive.Enabled {
		t.Error("KWC_ARCHIVE=false should disable the archive")
	}
}

// =============================================================================
// PATH RESOLUTION TESTS
// =============================================================================

func TestResolvedPaths(t *testing.T) {
	cfg := Default()
	cfg.History.Dir = "/custom/history"
	cfg.Archive.DBPath = "/custom/archive.db"

	dir, err := cfg.HistoryDir()
	if err != nil || dir != "/custom/history" {
		t.Errorf("HistoryDir = %q, %v", dir, err)
	}
	dbPath, err := cfg.ArchivePath()
	if err != nil || dbPath != "/custom/archive.db" {
		t.Errorf("ArchivePath = %q, %v", dbPath, err)
	}
}
