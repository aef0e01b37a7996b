package segmenter

import (
	"regexp"
	"strings"
)

// Title length bounds, in characters.
const (
	minTitleLength = 3
	maxTitleLength = 99
)

// titleScanLines is how many leading lines of a segment are checked
// for a section title.
const titleScanLines = 3

var (
	markdownTitleRe = regexp.MustCompile(`^#{1,6}[ \t]+(.+)$`)
	numberedTitleRe = regexp.MustCompile(`(?i)^(?:(?:section|chapter|part)[ \t]+\d+|\d+(?:\.\d+)*[.)])[ \t]*(.*)$`)
)

// detectSectionTitle scans the first three lines of segment content for
// a markdown header, an all-caps line, a colon-terminated short line or
// a numbered-section line. Returns the title and whether one was found.
func detectSectionTitle(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := markdownTitleRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), true
		}

		if isAllCapsTitle(line) {
			return line, true
		}

		if isColonTitle(line) {
			return strings.TrimSuffix(line, ":"), true
		}

		if len(line) <= maxTitleLength {
			if m := numberedTitleRe.FindStringSubmatch(line); m != nil {
				return line, true
			}
		}
	}

	return "", false
}

// isColonTitle reports whether line is a short line ending in a colon,
// like "Installation:".
func isColonTitle(line string) bool {
	return strings.HasSuffix(line, ":") &&
		len(line) >= minTitleLength &&
		len(line) <= maxTitleLength &&
		!strings.Contains(strings.TrimSuffix(line, ":"), ":")
}
