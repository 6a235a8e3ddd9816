package script

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/knodemy/lecture-server/internal/domain"
	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

// Renderer writes lecture scripts as printable PDF documents. The output is
// cosmetic (for teachers to read along); audio generation works from the raw
// script text, never from this PDF.
type Renderer struct{}

// NewRenderer creates a script PDF renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

const (
	pageMarginMM    = 20 // 2cm margins on A4
	headingFontSize = 16
	subtitleFont    = 10
	bodyFontSize    = 11
	bodyLineHeight  = 5.2
)

// Render lays out the script title, generation metadata, and body text.
func (r *Renderer) Render(script *domain.LectureScript) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, pageMarginMM)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := script.LessonTitle
	if title == "" {
		title = "Lecture Script"
	}
	pdf.SetFont("Helvetica", "B", headingFontSize)
	pdf.MultiCell(0, 8, tr(truncate(title, 120)), "", "L", false)

	pdf.SetFont("Helvetica", "", subtitleFont)
	for _, line := range r.subtitleLines(script) {
		pdf.CellFormat(0, 5.5, tr(truncate(line, 160)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	x, y := pdf.GetXY()
	width, _ := pdf.GetPageSize()
	pdf.Line(x, y, width-pageMarginMM, y)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", bodyFontSize)
	for _, para := range strings.Split(script.Text, "\n") {
		para = strings.TrimRight(para, " \t")
		if para == "" {
			pdf.Ln(bodyLineHeight / 2)
			continue
		}
		pdf.MultiCell(0, bodyLineHeight, tr(para), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "rendering script PDF")
	}
	return buf.Bytes(), nil
}

func (r *Renderer) subtitleLines(script *domain.LectureScript) []string {
	var lines []string
	if script.SpeakerName != "" {
		lines = append(lines, "Generated for: "+script.SpeakerName)
	}
	lines = append(lines, fmt.Sprintf("Audience: %s | Language: %s", script.Audience, script.Language))
	if script.SourceURL != "" {
		lines = append(lines, "Source: "+script.SourceURL)
	}
	if !script.GeneratedAt.IsZero() {
		lines = append(lines, "Generated: "+script.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}
	return lines
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
