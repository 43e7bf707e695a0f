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

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileSize is the maximum allowed config file size (1MB).
// Prevents memory issues from a mistyped path pointing at a data file.
const MaxConfigFileSize = 1024 * 1024

// Load reads a YAML config from path, layered over Default().
//
// Description:
//
//	Fields absent from the file keep their default values, so a minimal
//	config overriding one section stays valid. The result is validated
//	before being returned.
//
// Inputs:
//
//	path - Config file location. Must not be empty.
//
// Outputs:
//
//	Config - The merged configuration.
//	error - Non-nil on read, parse, or validation failure.
//
// Example:
//
//	cfg, err := config.Load("mqtopo.yaml")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
func Load(path string) (Config, error) {
	cfg := Default()

	info, err := os.Stat(path)
	if err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	if info.Size() > MaxConfigFileSize {
		return cfg, fmt.Errorf("config file %s exceeds %d bytes", path, MaxConfigFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrCreate loads the config at path, writing the default config
// there first if the file does not exist.
//
// Used by the CLI so a first run leaves an editable config behind
// instead of failing.
func LoadOrCreate(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path); err != nil {
			return Default(), err
		}
	}
	return Load(path)
}

func writeDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
