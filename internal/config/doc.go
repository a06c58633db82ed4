// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the keywordschat client.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.keywordschat/config.toml
//   - ~/.keywordschat/config.json
//   - Built-in defaults
//
// Environment variables (highest precedence):
//   - KWC_API_URL: overrides api.base_url
//   - KWC_API_KEY: overrides the stored API token for this process
//   - KWC_THEME: overrides ui.theme
//   - KWC_ARCHIVE: set to "0" or "false" to disable the result archive
package config
