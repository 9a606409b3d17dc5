// Package testhelper holds helpers for writing expected dumps and data documents inline.
package testhelper

import (
	"regexp"
	"strings"
	"testing"
)

var leadingSpaces = regexp.MustCompile(`^[ \t]+`)

// Dedent strips the indentation of the first non-blank line from every line of a raw
// string literal and drops its leading newline. A blank last line is emptied. Tabs left after dedenting become two
// spaces so the result is valid YAML.
func Dedent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(strings.TrimPrefix(src, "\n"), "\n")

	var indent string

	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			indent = leadingSpaces.FindString(line)
			break
		}
	}

	for i, line := range lines {
		line = strings.TrimPrefix(line, indent)
		lines[i] = leadingSpaces.ReplaceAllStringFunc(line, func(match string) string {
			return strings.ReplaceAll(match, "\t", "  ")
		})
	}

	if last := len(lines) - 1; strings.TrimSpace(lines[last]) == "" {
		lines[last] = ""
	}

	return strings.Join(lines, "\n")
}

// Lines builds the multi-line form of a dump: header on the first line, one row per line.
func Lines(header string, rows ...string) string {
	return header + "\n" + strings.Join(rows, "\n")
}
