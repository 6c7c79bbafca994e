// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

type ScoutConfig struct {
	// Forge: where release histories are fetched from
	Forge ForgeConfig `yaml:"forge"`

	// ModelBackend: decides which LLM generates upgrade reports
	ModelBackend BackendConfig `yaml:"model_backend"`

	// Logging: CLI log destination and level
	Logging LoggingConfig `yaml:"logging"`
}

type ForgeConfig struct {
	// APIBaseURL overrides the GitHub API root, e.g. for a GHE host.
	// Empty means api.github.com.
	APIBaseURL string `yaml:"api_base_url,omitempty"`

	// TokenEnv names the environment variable holding the bearer
	// token. The token itself never lives in this file.
	TokenEnv string `yaml:"token_env"`
}

type BackendConfig struct {
	// Type can be "openai" or "ollama".
	Type    string `yaml:"type"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Dir enables file logging when set, e.g. "~/.releasescout/logs".
	Dir string `yaml:"dir,omitempty"`
}

// DefaultConfig is what a first run writes to disk.
func DefaultConfig() ScoutConfig {
	return ScoutConfig{
		Forge: ForgeConfig{
			TokenEnv: "GITHUB_TOKEN",
		},
		ModelBackend: BackendConfig{
			Type: "openai",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
