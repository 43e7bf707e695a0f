// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"os"
	"strings"
	"sync"
)

// PersonalityLevel defines the verbosity and richness of CLI output
type PersonalityLevel string

const (
	// PersonalityFull enables all visual flourishes and rich formatting
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard enables colors and icons with minimal theming
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal uses icons and basic formatting only
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine outputs plain text suitable for scripting and parsing
	PersonalityMachine PersonalityLevel = "machine"
)

// Personality holds the current UX personality configuration
type Personality struct {
	// Level controls overall verbosity (full, standard, minimal, machine)
	Level PersonalityLevel
}

var (
	currentPersonality = Personality{
		Level: PersonalityStandard,
	}
	personalityMu sync.RWMutex
)

// GetPersonality returns the current personality settings
func GetPersonality() Personality {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return currentPersonality
}

// SetPersonality updates the current personality settings
func SetPersonality(p Personality) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality = p
}

// SetPersonalityLevel updates just the personality level
func SetPersonalityLevel(level PersonalityLevel) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality.Level = level
}

// ParsePersonalityLevel converts a string to PersonalityLevel
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(s) {
	case "full", "f":
		return PersonalityFull
	case "standard", "std", "s":
		return PersonalityStandard
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "quiet", "q":
		return PersonalityMachine
	default:
		return PersonalityStandard
	}
}

// InitPersonality initializes personality from environment and defaults.
// Piped and redirected output always gets machine mode so cron jobs and
// shell pipelines see parseable text.
func InitPersonality() {
	// Check environment variable first
	if envLevel := os.Getenv("MQTOPO_PERSONALITY"); envLevel != "" {
		SetPersonalityLevel(ParsePersonalityLevel(envLevel))
		return
	}

	// Check if we're in a non-interactive context
	if !isTerminal() {
		SetPersonalityLevel(PersonalityMachine)
		return
	}

	SetPersonalityLevel(PersonalityStandard)
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
