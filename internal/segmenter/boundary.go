package segmenter

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// collisionDistance is the span within which two landmarks collapse to
// one, keeping the higher-precedence detection.
const collisionDistance = 5

// Detector regexes. Each detector is a pure function over the raw text;
// precedence between them is resolved in the explicit merge step, never
// inside a detector.
var (
	markdownHeaderRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+)$`)
	sectionHeaderRe  = regexp.MustCompile(`(?mi)^(?:section|chapter|part)[ \t]+\d+\b.*$`)
	numberedHeaderRe = regexp.MustCompile(`(?m)^\d+(?:\.\d+)*[.)][ \t]+\S.*$`)
	paragraphBreakRe = regexp.MustCompile(`\n{2,}`)
	listItemRe       = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+•]|\d+[.)])[ \t]+`)

	// sentenceEndRe marks sentence boundaries: terminal punctuation,
	// optionally a closing quote, then whitespace. Used only at split
	// time; sentence ends are not landmarks.
	sentenceEndRe = regexp.MustCompile(`[.!?]["']?\s`)
)

// DetectLandmarks runs every structural detector over the text and
// merges the results by position, collapsing landmarks within five
// characters of each other to the highest-precedence one.
func DetectLandmarks(text string) []domain.Landmark {
	return mergeLandmarks(
		detectMarkdownHeaders(text),
		detectSectionHeaders(text),
		detectAllCapsTitles(text),
		detectParagraphBreaks(text),
		detectListItems(text),
	)
}

// detectMarkdownHeaders finds '#'-prefixed headings; the level is the
// number of '#' characters.
func detectMarkdownHeaders(text string) []domain.Landmark {
	var landmarks []domain.Landmark
	for _, m := range markdownHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		landmarks = append(landmarks, domain.Landmark{
			Position: m[0],
			Text:     text[m[0]:m[1]],
			Level:    m[3] - m[2],
			Kind:     domain.LandmarkHeader,
		})
	}
	return landmarks
}

// detectSectionHeaders finds "Section N" style headings and numbered
// section lines like "3.2. Results". Long lines are ordinary prose,
// not headings.
func detectSectionHeaders(text string) []domain.Landmark {
	var landmarks []domain.Landmark
	for _, re := range []*regexp.Regexp{sectionHeaderRe, numberedHeaderRe} {
		for _, m := range re.FindAllStringIndex(text, -1) {
			line := text[m[0]:m[1]]
			if len(line) > maxTitleLength {
				continue
			}
			landmarks = append(landmarks, domain.Landmark{
				Position: m[0],
				Text:     line,
				Kind:     domain.LandmarkHeader,
			})
		}
	}
	return landmarks
}

// detectAllCapsTitles finds short lines (3-99 characters) written
// entirely in uppercase.
func detectAllCapsTitles(text string) []domain.Landmark {
	var landmarks []domain.Landmark
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		if isAllCapsTitle(line) {
			landmarks = append(landmarks, domain.Landmark{
				Position: offset,
				Text:     line,
				Kind:     domain.LandmarkHeader,
			})
		}
		offset += len(line) + 1
	}
	return landmarks
}

// isAllCapsTitle reports whether line is a 3-99 character line with at
// least one letter and no lowercase letters.
func isAllCapsTitle(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < minTitleLength || len(trimmed) > maxTitleLength {
		return false
	}
	hasLetter := false
	for _, r := range trimmed {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// detectParagraphBreaks finds runs of two or more newlines. The
// landmark sits at the end of the run, the start of the following
// paragraph, so splits keep whole paragraphs together.
func detectParagraphBreaks(text string) []domain.Landmark {
	var landmarks []domain.Landmark
	for _, m := range paragraphBreakRe.FindAllStringIndex(text, -1) {
		landmarks = append(landmarks, domain.Landmark{
			Position: m[1],
			Text:     text[m[0]:m[1]],
			Kind:     domain.LandmarkParagraphBreak,
		})
	}
	return landmarks
}

// detectListItems finds bullet and numbered list markers.
func detectListItems(text string) []domain.Landmark {
	var landmarks []domain.Landmark
	for _, m := range listItemRe.FindAllStringIndex(text, -1) {
		landmarks = append(landmarks, domain.Landmark{
			Position: m[0],
			Text:     strings.TrimRight(text[m[0]:m[1]], " \t"),
			Kind:     domain.LandmarkListItem,
		})
	}
	return landmarks
}

// landmarkPrecedence orders kinds for collision collapsing: headers
// beat paragraph breaks, which beat list items.
func landmarkPrecedence(kind domain.LandmarkKind) int {
	switch kind {
	case domain.LandmarkHeader:
		return 0
	case domain.LandmarkParagraphBreak:
		return 1
	default:
		return 2
	}
}

// mergeLandmarks unions detector outputs, sorts by position, and
// collapses landmarks within collisionDistance of each other keeping
// the higher-precedence one.
func mergeLandmarks(detected ...[]domain.Landmark) []domain.Landmark {
	var all []domain.Landmark
	for _, lms := range detected {
		all = append(all, lms...)
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Position != all[j].Position {
			return all[i].Position < all[j].Position
		}
		return landmarkPrecedence(all[i].Kind) < landmarkPrecedence(all[j].Kind)
	})

	merged := []domain.Landmark{all[0]}
	for _, lm := range all[1:] {
		last := &merged[len(merged)-1]
		if lm.Position-last.Position <= collisionDistance {
			if landmarkPrecedence(lm.Kind) < landmarkPrecedence(last.Kind) {
				*last = lm
			}
			continue
		}
		merged = append(merged, lm)
	}
	return merged
}
