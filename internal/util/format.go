// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the keywordschat client.
package util

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// countPrinter renders thousands-separated integers ("12,400" not "12400").
// Search volume and similar SEO metrics are unreadable without grouping.
var countPrinter = message.NewPrinter(language.English)

// FormatCount formats an integer with thousands separators.
func FormatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}

// IntToString converts an int to string.
// Uses strconv.Itoa for optimal performance.
func IntToString(i int) string {
	return strconv.Itoa(i)
}

// FloatToString converts a float64 to string with 2 decimal places.
// Uses strconv.FormatFloat for optimal performance.
func FloatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// FormatCellValue renders a loosely-typed record field for display.
//
// Records arriving from the backend are JSON-decoded maps, so numbers are
// float64 even when they are semantically integers. Missing fields must be
// passed as nil and render as an empty string - consumers are required to
// treat absent fields as an explicit case, never as a zero value.
func FormatCellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case int:
		return FormatCount(int64(val))
	case int64:
		return FormatCount(val)
	case float64:
		// JSON numbers: render whole values as grouped integers,
		// fractional values with two decimals.
		if val == float64(int64(val)) {
			return FormatCount(int64(val))
		}
		return strconv.FormatFloat(val, 'f', 2, 64)
	case float32:
		return FormatCellValue(float64(val))
	default:
		return ""
	}
}

// FormatNumericValue is like FormatCellValue but without digit grouping.
// Used by exporters, where "12,400" would corrupt CSV columns.
func FormatNumericValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', 2, 64)
	case float32:
		return FormatNumericValue(float64(val))
	default:
		return ""
	}
}
