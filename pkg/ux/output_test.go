// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// Helper to capture stdout
func captureStdout(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// Helper to capture stderr
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render_Success(t *testing.T) {
	result := IconSuccess.Render()
	if result == "" {
		t.Error("expected non-empty result for IconSuccess")
	}
}

func TestIcon_Render_Warning(t *testing.T) {
	result := IconWarning.Render()
	if result == "" {
		t.Error("expected non-empty result for IconWarning")
	}
}

func TestIcon_Render_Error(t *testing.T) {
	result := IconError.Render()
	if result == "" {
		t.Error("expected non-empty result for IconError")
	}
}

// =============================================================================
// Title Tests
// =============================================================================

func TestTitle_MachineMode(t *testing.T) {
	// Save and restore personality
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Title("Test Title")
	})

	// In machine mode, Title should output nothing
	if output != "" {
		t.Errorf("expected no output in machine mode, got %q", output)
	}
}

func TestTitle_StandardMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityStandard)

	output := captureStdout(func() {
		Title("Test Title")
	})

	if !strings.Contains(output, "Test Title") {
		t.Errorf("expected title text in output, got %q", output)
	}
}

// =============================================================================
// Success Tests
// =============================================================================

func TestSuccess_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Success("Operation complete")
	})

	if output != "OK: Operation complete\n" {
		t.Errorf("expected 'OK: Operation complete', got %q", output)
	}
}

func TestSuccess_StandardMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityStandard)

	output := captureStdout(func() {
		Success("Operation complete")
	})

	if !strings.Contains(output, "Operation complete") {
		t.Errorf("expected message in output, got %q", output)
	}
}

func TestSuccess_MinimalMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMinimal)

	output := captureStdout(func() {
		Success("Operation complete")
	})

	if !strings.Contains(output, "Operation complete") {
		t.Errorf("expected message in output, got %q", output)
	}
}

// =============================================================================
// Warning Tests
// =============================================================================

func TestWarning_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	// Machine mode warnings go to stderr for scripting
	output := captureStderr(func() {
		Warning("Disk nearly full")
	})

	if output != "WARN: Disk nearly full\n" {
		t.Errorf("expected 'WARN: Disk nearly full', got %q", output)
	}
}

func TestWarning_StandardMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityStandard)

	output := captureStdout(func() {
		Warning("Disk nearly full")
	})

	if !strings.Contains(output, "Disk nearly full") {
		t.Errorf("expected message in output, got %q", output)
	}
}

// =============================================================================
// Error Tests
// =============================================================================

func TestError_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStderr(func() {
		Error("Something broke")
	})

	if output != "ERROR: Something broke\n" {
		t.Errorf("expected 'ERROR: Something broke', got %q", output)
	}
}

func TestError_StandardMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityStandard)

	output := captureStdout(func() {
		Error("Something broke")
	})

	if !strings.Contains(output, "Something broke") {
		t.Errorf("expected message in output, got %q", output)
	}
}

// =============================================================================
// Info Tests
// =============================================================================

func TestInfo_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Info("Listening on :8930")
	})

	// Machine mode prints the bare text
	if output != "Listening on :8930\n" {
		t.Errorf("expected plain text, got %q", output)
	}
}

func TestInfo_StandardMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityStandard)

	output := captureStdout(func() {
		Info("Listening on :8930")
	})

	if !strings.Contains(output, "Listening on :8930") {
		t.Errorf("expected message in output, got %q", output)
	}
}

// =============================================================================
// Muted Tests
// =============================================================================

func TestMuted_MachineMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityMachine)

	output := captureStdout(func() {
		Muted("Press Ctrl+C to stop")
	})

	// Muted text is decoration; machine mode drops it
	if output != "" {
		t.Errorf("expected no output in machine mode, got %q", output)
	}
}

func TestMuted_StandardMode(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonalityLevel(PersonalityStandard)

	output := captureStdout(func() {
		Muted("Press Ctrl+C to stop")
	})

	if !strings.Contains(output, "Press Ctrl+C to stop") {
		t.Errorf("expected message in output, got %q", output)
	}
}

// =============================================================================
// Style Constants Tests
// =============================================================================

func TestColorConstants(t *testing.T) {
	// Verify color constants are defined
	colors := []interface{}{
		ColorTealBright,
		ColorTealPrimary,
		ColorSlate,
		ColorSuccess,
		ColorWarning,
		ColorError,
	}

	for i, c := range colors {
		if c == nil {
			t.Errorf("color at index %d is nil", i)
		}
	}
}

func TestIconConstants(t *testing.T) {
	icons := map[string]Icon{
		"Success": IconSuccess,
		"Warning": IconWarning,
		"Error":   IconError,
	}

	for name, icon := range icons {
		if string(icon) == "" {
			t.Errorf("icon %s is empty", name)
		}
	}
}
