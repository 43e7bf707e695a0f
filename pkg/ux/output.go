// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides rich terminal output styling for the mqtopo CLI.
package ux

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	// Semantic colors (keeping standard conventions for clarity)
	ColorSuccess = lipgloss.Color("#2CD7C7") // Bright teal for success
	ColorWarning = lipgloss.Color("#F4D03F") // Gold/amber for warnings
	ColorError   = lipgloss.Color("#E74C3C") // Red for errors
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Print helpers that respect personality level

// Title prints a styled title
func Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func Success(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(os.Stdout, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", IconSuccess.Render(), text)
	default:
		fmt.Printf("%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func Warning(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", IconWarning.Render(), text)
	default:
		fmt.Printf("%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func Error(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Printf("%s %s\n", IconError.Render(), text)
	default:
		fmt.Printf("%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func Info(text string) {
	p := GetPersonality()
	switch p.Level {
	case PersonalityMachine:
		fmt.Println(text)
	default:
		fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
	}
}

// Muted prints muted/secondary text
func Muted(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}
