// Package segmenter provides the structure-aware segmentation
// processor. It splits raw document text into bounded, semantically
// coherent, overlap-tracked segments, biased towards structural
// landmarks and sentence boundaries.
package segmenter

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// Search windows around a candidate split point, in characters.
const (
	// landmarkLookahead extends the landmark window past the target end.
	landmarkLookahead = 50

	// boundaryWindow is the radius searched for a sentence or paragraph
	// boundary around the target end.
	boundaryWindow = 100

	// maxWordShrink rejects a word-boundary fallback that would shrink
	// the segment by more than this many characters.
	maxWordShrink = 50
)

// Segmenter splits document content into structure-aware segments.
// It implements the PostProcessor interface.
type Segmenter struct {
	cfg domain.SegmenterConfig
}

// Option configures the segmenter.
type Option func(*Segmenter)

// WithConfig replaces the full segmentation configuration.
func WithConfig(cfg domain.SegmenterConfig) Option {
	return func(s *Segmenter) {
		if cfg.Validate() == nil {
			s.cfg = cfg
		}
	}
}

// WithTargetSize sets the preferred segment length in characters.
func WithTargetSize(size int) Option {
	return func(s *Segmenter) {
		if size > 0 {
			s.cfg.TargetSize = size
		}
	}
}

// WithOverlapSize sets the overlap between consecutive segments.
func WithOverlapSize(overlap int) Option {
	return func(s *Segmenter) {
		if overlap >= 0 {
			s.cfg.OverlapSize = overlap
		}
	}
}

// New creates a segmenter with the given options.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{cfg: domain.DefaultSegmenterConfig()}
	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for forward progress.
	if s.cfg.OverlapSize >= s.cfg.TargetSize {
		s.cfg.OverlapSize = s.cfg.TargetSize / 4
	}

	return s
}

// Name returns the processor name.
func (s *Segmenter) Name() string {
	return "segmenter"
}

// Config returns the active configuration.
func (s *Segmenter) Config() domain.SegmenterConfig {
	return s.cfg
}

// span is a raw candidate segment produced by phase one.
type span struct {
	start int
	end   int
}

// Process splits the document content into segments.
// Input segments are ignored; this processor creates new segments.
//
// Phase one walks the text producing raw spans immutably; phase two
// filters empty spans, assigns final indices and recomputes overlap
// snippets from the final trimmed content.
func (s *Segmenter) Process(_ context.Context, doc *domain.Document, _ []domain.Segment) ([]domain.Segment, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(doc.Content) == "" {
		// Empty or whitespace-only content produces no segments.
		return nil, nil
	}

	spans := s.partition(doc.Content, DetectLandmarks(doc.Content))
	return s.finalise(doc, spans), nil
}

// partition is phase one: produce ordered raw spans over the text.
func (s *Segmenter) partition(text string, landmarks []domain.Landmark) []span {
	var spans []span
	cur := 0

	for cur < len(text) {
		targetEnd := cur + s.cfg.TargetSize
		if targetEnd >= len(text) {
			// The remainder becomes the final segment; it may be
			// shorter than the minimum size.
			spans = append(spans, span{start: cur, end: len(text)})
			break
		}

		end := s.chooseEnd(text, landmarks, cur, targetEnd)

		// Clamp to the maximum size, re-running the boundary search at
		// the hard limit.
		if end-cur > s.cfg.MaxSize {
			end = s.findBoundary(text, cur, cur+s.cfg.MaxSize)
			if end-cur > s.cfg.MaxSize {
				end = cur + s.cfg.MaxSize
			}
		}

		// Extend undersized non-final segments to the minimum and look
		// for a boundary past that point.
		if end-cur < s.cfg.MinSize && cur+s.cfg.MinSize < len(text) {
			end = s.findBoundaryForward(text, cur+s.cfg.MinSize)
			if end-cur > s.cfg.MaxSize {
				end = cur + s.cfg.MaxSize
			}
		}

		// Guard against zero or negative progress.
		if end <= cur {
			end = cur + s.cfg.TargetSize
		}
		if end > len(text) {
			end = len(text)
		}

		spans = append(spans, span{start: cur, end: end})

		next := end - s.cfg.OverlapSize
		if next <= cur {
			next = cur + 1
		}
		cur = next
	}

	return spans
}

// chooseEnd picks the split point for a segment starting at cur with
// the given target end.
func (s *Segmenter) chooseEnd(text string, landmarks []domain.Landmark, cur, targetEnd int) int {
	// Prefer a structural landmark: it must lie past the minimum size
	// and no further than 50 characters beyond the target. Headers stay
	// attached to the following segment because the split lands exactly
	// on the landmark position.
	if lm, ok := nearestLandmark(landmarks, cur+s.cfg.MinSize, targetEnd+landmarkLookahead, targetEnd); ok {
		return lm
	}

	return s.findBoundary(text, cur, targetEnd)
}

// findBoundary searches a ±100-character window around targetEnd for a
// sentence boundary or paragraph break, preferring boundaries at or
// past the target so segments land at or above the target size, then
// falls back to the nearest preceding word boundary. The word fallback
// is rejected (the target offset is used verbatim) when it would
// shrink the segment by more than 50 characters.
func (s *Segmenter) findBoundary(text string, cur, targetEnd int) int {
	lo := targetEnd - boundaryWindow
	if lo < cur {
		lo = cur
	}
	hi := targetEnd + boundaryWindow
	if hi > len(text) {
		hi = len(text)
	}

	if best, ok := s.bestBreak(text, lo, hi, targetEnd); ok {
		return best
	}

	// Word-boundary fallback: nearest preceding space.
	if s.cfg.PreserveSentences || s.cfg.PreserveParagraphs {
		if sp := strings.LastIndexByte(text[cur:targetEnd], ' '); sp >= 0 {
			candidate := cur + sp + 1
			if targetEnd-candidate <= maxWordShrink {
				return candidate
			}
		}
	}

	return targetEnd
}

// findBoundaryForward searches for a sentence or paragraph boundary at
// or after the given offset, bounded by the usual window. Used when a
// segment must grow to reach the minimum size.
func (s *Segmenter) findBoundaryForward(text string, from int) int {
	hi := from + boundaryWindow
	if hi > len(text) {
		hi = len(text)
	}

	if best, ok := s.bestBreak(text, from, hi, from); ok {
		return best
	}
	return from
}

// bestBreak returns a sentence-end or paragraph-break position in
// [lo, hi). Boundaries at or past target are preferred, taking the
// furthest, so the split only snaps backward when the window holds
// nothing beyond the target. Sentence positions are regex match ends;
// paragraph positions are the start of the following paragraph.
func (s *Segmenter) bestBreak(text string, lo, hi, target int) (int, bool) {
	if lo >= hi {
		return 0, false
	}

	window := text[lo:hi]
	forward := -1
	backward := -1

	consider := func(pos int) {
		if pos >= target {
			if pos > forward {
				forward = pos
			}
		} else if pos > backward {
			backward = pos
		}
	}

	if s.cfg.PreserveSentences {
		for _, m := range sentenceEndRe.FindAllStringIndex(window, -1) {
			consider(lo + m[1])
		}
	}
	if s.cfg.PreserveParagraphs {
		for _, m := range paragraphBreakRe.FindAllStringIndex(window, -1) {
			consider(lo + m[1])
		}
	}

	if forward >= 0 {
		return forward, true
	}
	if backward >= 0 {
		return backward, true
	}
	return 0, false
}

// nearestLandmark returns the landmark position in (lo, hi] closest to
// target, if any. Headers are preferred over other landmark kinds so a
// heading never ends up dangling at the tail of the preceding segment.
func nearestLandmark(landmarks []domain.Landmark, lo, hi, target int) (int, bool) {
	best := -1
	bestDist := -1
	bestRank := -1
	for _, lm := range landmarks {
		if lm.Position <= lo || lm.Position > hi {
			continue
		}
		rank := landmarkPrecedence(lm.Kind)
		dist := lm.Position - target
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || rank < bestRank || (rank == bestRank && dist < bestDist) {
			best = lm.Position
			bestDist = dist
			bestRank = rank
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// finalise is phase two: drop spans whose trimmed content is empty,
// assign contiguous indices, and derive overlap snippets, word counts
// and section titles from the final content.
func (s *Segmenter) finalise(doc *domain.Document, spans []span) []domain.Segment {
	kept := make([]domain.Segment, 0, len(spans))
	for _, sp := range spans {
		content := strings.TrimSpace(doc.Content[sp.start:sp.end])
		if content == "" {
			continue
		}

		title, hasHeader := detectSectionTitle(content)

		kept = append(kept, domain.Segment{
			ID:           uuid.New().String(),
			DocumentID:   doc.ID,
			Content:      content,
			StartOffset:  sp.start,
			EndOffset:    sp.end,
			WordCount:    len(strings.Fields(content)),
			SectionTitle: title,
			HasHeader:    hasHeader,
			Metadata:     make(map[string]any),
		})
	}

	total := len(kept)
	for i := range kept {
		kept[i].Index = i
		kept[i].TotalSegments = total

		if i > 0 {
			kept[i].OverlapWithPrevious = suffix(kept[i-1].Content, s.cfg.OverlapSize)
		}
		if i < total-1 {
			kept[i].OverlapWithNext = prefix(kept[i+1].Content, s.cfg.OverlapSize)
		}
	}

	return kept
}

// suffix returns the trailing n characters of text, or all of it.
func suffix(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[len(text)-n:]
}

// prefix returns the leading n characters of text, or all of it.
func prefix(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[:n]
}
