package source

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

// DefaultMinTextChars is the minimum extracted text length that counts as
// usable lesson content.
const DefaultMinTextChars = 100

// Extractor pulls plain text out of PDF bytes.
type Extractor struct {
	minChars int
	logger   *slog.Logger
}

// NewExtractor creates an extractor; non-positive minChars falls back to
// DefaultMinTextChars.
func NewExtractor(minChars int, logger *slog.Logger) *Extractor {
	if minChars <= 0 {
		minChars = DefaultMinTextChars
	}
	return &Extractor{minChars: minChars, logger: logger}
}

// Extract returns the concatenated text of every readable page. Pages that
// fail to decode are logged and skipped. If the total extracted text falls
// below the minimum, a content-too-short error is returned.
func (e *Extractor) Extract(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInvalidSource, "opening PDF")
	}

	var (
		sb      strings.Builder
		skipped int
	)
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		text, err := extractPage(reader, i)
		if err != nil {
			skipped++
			if e.logger != nil {
				e.logger.Warn("skipping unreadable PDF page",
					slog.Int("page", i),
					slog.String("error", err.Error()))
			}
			continue
		}
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	extracted := strings.TrimSpace(sb.String())
	if len(extracted) < e.minChars {
		return "", domainerrors.ContentTooShort(fmt.Sprintf(
			"extracted %d chars from %d pages (%d unreadable), need at least %d",
			len(extracted), pages, skipped, e.minChars))
	}
	return extracted, nil
}

// extractPage decodes a single page, converting library panics on malformed
// content streams into errors so one bad page cannot take down the run.
func extractPage(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page decode panic: %v", r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
