package source

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

// minimalPDF builds a one-page PDF containing the given text, computing
// cross-reference offsets so the file is structurally valid.
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)

	objects := []string{
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n",
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n",
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>\nendobj\n",
		"4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
		fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content),
	}

	var sb strings.Builder
	sb.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = sb.Len()
		sb.WriteString(obj)
	}

	xrefPos := sb.Len()
	sb.WriteString(fmt.Sprintf("xref\n0 %d\n", len(objects)+1))
	sb.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		sb.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	sb.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefPos))

	return []byte(sb.String())
}

func TestExtract_ReadsPageText(t *testing.T) {
	data := minimalPDF("Photosynthesis converts light energy into chemical energy for the plant.")

	e := NewExtractor(10, nil)

	text, err := e.Extract(data)
	require.NoError(t, err)
	assert.Contains(t, text, "Photosynthesis")
	assert.Contains(t, text, "chemical energy")
}

func TestExtract_RejectsGarbage(t *testing.T) {
	e := NewExtractor(10, nil)

	_, err := e.Extract([]byte("definitely not a pdf"))
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidSource))
}

func TestExtract_RejectsShortContent(t *testing.T) {
	data := minimalPDF("tiny")

	e := NewExtractor(100, nil)

	_, err := e.Extract(data)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrContentTooShort))
}

func TestNewExtractor_DefaultMinimum(t *testing.T) {
	e := NewExtractor(0, nil)
	assert.Equal(t, DefaultMinTextChars, e.minChars)
}
