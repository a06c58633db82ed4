// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the keywordschat TUI.
package styles

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// SEO METRIC COLORING
// =============================================================================

// Keyword difficulty bands. Scores are 0-100.
const (
	difficultyEasyMax   = 30
	difficultyMediumMax = 60
)

// DifficultyColor returns the color for a keyword difficulty score:
// green up to 30, amber up to 60, rose above.
func DifficultyColor(score float64) lipgloss.AdaptiveColor {
	switch {
	case score <= difficultyEasyMax:
		return Emerald
	case score <= difficultyMediumMax:
		return Amber
	default:
		return Rose
	}
}

// RenderDifficulty renders a difficulty score in its band color.
func RenderDifficulty(label string, score float64) string {
	return lipgloss.NewStyle().Foreground(DifficultyColor(score)).Render(label)
}

// PositionChangeColor returns the color for a ranking position delta.
// Positive deltas mean the page moved up.
func PositionChangeColor(change float64) lipgloss.AdaptiveColor {
	switch {
	case change > 0:
		return Emerald
	case change < 0:
		return Rose
	default:
		return TextMuted
	}
}

// RenderPositionChange renders a ranking delta with a direction arrow.
func RenderPositionChange(change int) string {
	style := lipgloss.NewStyle().Foreground(PositionChangeColor(float64(change)))
	switch {
	case change > 0:
		return style.Render("+" + strconv.Itoa(change))
	case change < 0:
		return style.Render(strconv.Itoa(change))
	default:
		return style.Render("=")
	}
}

// SeverityColor returns the color for an audit issue severity.
func SeverityColor(severity string) lipgloss.AdaptiveColor {
	switch severity {
	case "critical", "high":
		return Rose
	case "medium":
		return Amber
	case "low":
		return Emerald
	default:
		return TextSecondary
	}
}
