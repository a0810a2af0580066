// SPDX-License-Identifier: MIT
package termstyle

import "github.com/liggitt/tabwriter"

const (
	Reset = "\x1b[0m"
	Green = "\x1b[32m"
	Brown = "\x1b[33m"
	Red   = "\x1b[31m"
	Blue  = "\x1b[34m"
	Gray  = "\x1b[90m"

	// Semantic aliases used by table/status output.
	Healthy = Green
	Warn    = Brown
	Error   = Red
	Info    = Blue
	Muted   = Gray
)

// Colorize wraps a value in ANSI escapes when color output is enabled.
// The result is for tabwriter cells: the escape markers hide the ANSI
// sequences from column width calculations and are stripped on output.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// Paint wraps a value in bare ANSI escapes for output that bypasses
// tabwriter. Colorize's markers would reach the terminal as raw bytes here.
func Paint(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	return color + value + Reset
}
