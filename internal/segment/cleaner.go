package segment

import (
	"log/slog"
	"regexp"
	"strings"
)

// lowContentChars is the cleaned-content length below which a segment is
// unlikely to produce meaningful speech. Low content is a warning, never a
// failure: short audio beats no audio.
const lowContentChars = 50

var (
	// bracketed matches any bracketed annotation, including multi-line
	// teaching notes, non-greedily.
	bracketed = regexp.MustCompile(`(?s)\[.*?\]`)

	// headingMarks matches leading markdown heading hashes.
	headingMarks = regexp.MustCompile(`(?m)^\s*#{1,6}\s+`)

	// listMarks matches leading bullet or numbered list markers.
	listMarks = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+`)

	// emphasisMarks matches markdown bold/italic runs.
	emphasisMarks = regexp.MustCompile(`\*{1,3}|_{2,3}`)

	// spaceRuns matches repeated spaces and tabs within a line.
	spaceRuns = regexp.MustCompile(`[ \t]{2,}`)

	// blankRuns matches repeated blank lines.
	blankRuns = regexp.MustCompile(`\n{3,}`)

	// residuePrefixes matches lines that are instructional residue rather
	// than speakable prose.
	residuePrefixes = regexp.MustCompile(`(?i)^\s*(note|instruction|instructions)\s*:`)

	// residueMentions flags stage directions that reference the classroom,
	// not the listener.
	residueMentions = regexp.MustCompile(`(?i)visual aid|show slide`)
)

// Clean prepares segment content for speech synthesis: timing markers and
// bracketed annotations are removed, markdown and list syntax is stripped,
// instructional residue lines are dropped, and whitespace runs collapse.
// Clean is idempotent: cleaning already-clean text returns it unchanged.
func Clean(text string) string {
	// Stripping one marker can expose another (nested list prefixes, stacked
	// headings), so clean until the text stops changing.
	out := cleanOnce(text)
	for range 4 {
		next := cleanOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func cleanOnce(text string) string {
	out := timingMarker.ReplaceAllString(text, "")
	out = bracketed.ReplaceAllString(out, "")
	out = headingMarks.ReplaceAllString(out, "")
	out = listMarks.ReplaceAllString(out, "")
	out = emphasisMarks.ReplaceAllString(out, "")

	var kept []string
	for line := range strings.Lines(out) {
		line = strings.TrimSuffix(line, "\n")
		if residuePrefixes.MatchString(line) || residueMentions.MatchString(line) {
			continue
		}
		kept = append(kept, strings.TrimRight(spaceRuns.ReplaceAllString(line, " "), " \t"))
	}
	out = strings.Join(kept, "\n")

	out = blankRuns.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// CheckContent logs a warning when cleaned content is too short to carry a
// lecture segment. Returns the cleaned text unchanged.
func CheckContent(logger *slog.Logger, title, cleaned string) string {
	if len(cleaned) < lowContentChars && logger != nil {
		logger.Warn("segment has very little speakable content",
			slog.String("segment", title),
			slog.Int("chars", len(cleaned)))
	}
	return cleaned
}
