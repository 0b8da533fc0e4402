// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package label builds the fixed-width, optionally colored display labels
// that prefix each command's output lines.
package label

import (
	"strings"

	"github.com/rksm/runcc/internal/color"
)

// palette is cycled through so that adjacent commands get distinct colors.
var palette = []color.Code{
	color.FgCyan,
	color.FgMagenta,
	color.FgGreen,
	color.FgYellow,
	color.FgBlue,
	color.FgRed,
}

// Palette returns the display color for the i-th command.
func Palette(i int) color.Code {
	return palette[i%len(palette)]
}

// Width returns the display width for a set of labels: the length of the
// longest one, capped by max when max is greater than zero.
func Width(texts []string, max int) int {
	w := 0
	for _, t := range texts {
		if len(t) > w {
			w = len(t)
		}
	}

	if max > 0 && w > max {
		w = max
	}

	return w
}

// Label is one command's display label, padded or truncated to a fixed width.
type Label struct {
	raw  string
	text string
	code color.Code
}

// New builds a label from text, padding or truncating it to width.
func New(text string, width int, code color.Code) Label {
	display := text
	if width > 0 {
		if len(display) > width {
			display = display[:width]
		} else {
			display += strings.Repeat(" ", width-len(display))
		}
	}

	return Label{raw: text, text: display, code: code}
}

// Raw returns the unpadded label text.
func (l Label) Raw() string { return l.raw }

// Plain returns the padded label text without color.
func (l Label) Plain() string { return l.text }

// String returns the padded label, colored when color output is enabled.
func (l Label) String() string {
	return color.Colorize(l.text, l.code)
}
