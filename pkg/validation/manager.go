// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for MQ object names.
//
// CMDB exports are hand-maintained and routinely contain values that
// cannot be real IBM MQ object names (stray whitespace, hostnames,
// free-text comments pasted into the wrong column). These validators
// flag such values so parser noise is surfaced early instead of
// propagating into the topology graph as phantom managers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// managerNamePattern matches valid IBM MQ object names.
// MQ allows: letters, digits, period, underscore, forward slash,
// and percent sign. Names are case-sensitive.
// Max length: 48 characters (queue manager and queue names).
var managerNamePattern = regexp.MustCompile(`^[A-Za-z0-9._/%]{1,48}$`)

// ValidateManagerName validates a queue manager name against IBM MQ
// naming rules.
//
// Valid names:
//   - 1-48 characters
//   - Letters A-Z, a-z (case-sensitive, no folding)
//   - Digits 0-9
//   - Period (.), underscore (_), forward slash (/), percent (%)
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateManagerName(name); err != nil {
//	    log.Warn("suspicious manager name in CMDB export", "name", name)
//	}
func ValidateManagerName(name string) error {
	if name == "" {
		return fmt.Errorf("manager name cannot be empty")
	}

	if !managerNamePattern.MatchString(name) {
		return fmt.Errorf("invalid manager name: %q (must be 1-48 chars of letters, digits, '.', '_', '/', '%%')", name)
	}

	return nil
}

// ValidateManagerNames validates multiple queue manager names.
// Returns an error listing all invalid names if any fail validation.
func ValidateManagerNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateManagerName(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid manager names: %v", invalid)
	}
	return nil
}

// SanitizeManagerName trims surrounding whitespace and validates the
// result. Returns the trimmed name if valid, or an error if invalid.
//
// MQ object names are case-sensitive, so no case folding is applied.
// Callers that need case-insensitive comparison fold at the comparison
// site, not here.
//
//	name, err := validation.SanitizeManagerName(record.Manager)
//	if err != nil {
//	    return err
//	}
func SanitizeManagerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateManagerName(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
