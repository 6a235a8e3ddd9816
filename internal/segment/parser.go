// Package segment turns raw generated script text into ordered, typed,
// duration-bounded segments, cleans segment content for speech, and splits
// long text into TTS-safe chunks.
//
// LLM output is fuzzy by nature, so parsing is heuristic: timing markers of
// the form "[Label: 3-5 minutes]" delimit segments, and anything that fails
// to parse falls back to a single whole-script segment rather than failing.
package segment

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/knodemy/lecture-server/internal/domain"
)

// timingMarker matches bracketed timing annotations like
// "[Opening Hook: 2-3 minutes]" or "[Recap: 2-3 minute]".
var timingMarker = regexp.MustCompile(`\[([^:\[\]]+):\s*(\d+)\s*-\s*(\d+)\s*minutes?\s*\]`)

// metadataPrefixes are leading lines the script renderer or the LLM adds
// above the actual script; they are stripped before segmentation.
var metadataPrefixes = []string{
	"lecture script:",
	"lesson title:",
	"generated for:",
	"generated by:",
	"generated:",
	"source:",
	"speaker:",
	"audience:",
	"language:",
	"title:",
}

// maxMetadataLines bounds how far into the script the metadata scan looks.
const maxMetadataLines = 10

// classification maps label keywords to segment types; first match wins.
var classification = []struct {
	keywords []string
	segType  domain.SegmentType
}{
	{[]string{"hook", "opening", "introduction"}, domain.SegmentTypeHook},
	{[]string{"objective", "learning", "goals"}, domain.SegmentTypeObjectives},
	{[]string{"practice", "application", "activity"}, domain.SegmentTypePractice},
	{[]string{"recap", "takeaway", "conclusion", "summary"}, domain.SegmentTypeRecap},
}

// Parser splits script text into ordered segments.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a segment parser.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse segments the script text on timing markers. Marker lines are
// discarded; every other line (blank lines included, to preserve paragraph
// breaks) accumulates into the currently open segment. Text before the first
// marker that survives the metadata strip becomes a leading unbounded
// segment, so no script text is ever dropped. When no marker parses, a
// single fallback segment covering the whole cleaned text is returned so
// that audio can still be produced for unstructured scripts.
func (p *Parser) Parse(text string) []domain.ScriptSegment {
	body := stripMetadata(text)

	var (
		segments []domain.ScriptSegment
		current  *domain.ScriptSegment
		buf      strings.Builder
		preamble strings.Builder
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(buf.String())
		segments = append(segments, *current)
		current = nil
		buf.Reset()
	}

	for line := range strings.Lines(body) {
		line = strings.TrimSuffix(line, "\n")

		m := timingMarker.FindStringSubmatch(line)
		if m == nil {
			if current != nil {
				buf.WriteString(line)
				buf.WriteByte('\n')
			} else {
				preamble.WriteString(line)
				preamble.WriteByte('\n')
			}
			continue
		}

		flush()

		title := strings.TrimSpace(m[1])
		lo, _ := strconv.Atoi(m[2])
		hi, _ := strconv.Atoi(m[3])
		current = &domain.ScriptSegment{
			Order:       len(segments),
			Title:       title,
			DurationMin: &lo,
			DurationMax: &hi,
			Type:        Classify(title),
		}

		// Keep any prose sharing the marker's line.
		rest := strings.TrimSpace(timingMarker.ReplaceAllString(line, ""))
		if rest != "" {
			buf.WriteString(rest)
			buf.WriteByte('\n')
		}
	}
	flush()

	// Prose ahead of the first marker still belongs in the lecture. The
	// fallback below already covers it when no markers parsed at all.
	if lead := strings.TrimSpace(preamble.String()); lead != "" && len(segments) > 0 {
		segments = append([]domain.ScriptSegment{{
			Title:   "Introduction",
			Content: lead,
			Type:    domain.SegmentTypeContent,
		}}, segments...)
		for i := range segments {
			segments[i].Order = i
		}
	}

	if len(segments) == 0 {
		if p.logger != nil {
			p.logger.Warn("no timing markers found, using whole script as one segment",
				slog.Int("script_chars", len(text)))
		}
		return []domain.ScriptSegment{{
			Order:   0,
			Title:   "Complete Lecture",
			Content: strings.TrimSpace(body),
			Type:    domain.SegmentTypeContent,
		}}
	}

	return segments
}

// Classify maps a marker label to a segment type by keyword.
func Classify(label string) domain.SegmentType {
	lower := strings.ToLower(label)
	for _, c := range classification {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.segType
			}
		}
	}
	return domain.SegmentTypeContent
}

// stripMetadata drops known metadata lines from the head of the script.
// The scan stops at the first non-metadata, non-blank line or after
// maxMetadataLines lines, whichever comes first.
func stripMetadata(text string) string {
	lines := strings.Split(text, "\n")

	start := 0
	for i, line := range lines {
		if i >= maxMetadataLines {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if !isMetadataLine(trimmed) {
			break
		}
		start = i + 1
	}

	return strings.Join(lines[start:], "\n")
}

func isMetadataLine(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range metadataPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
