// Package source retrieves lesson PDFs and extracts their text content.
package source

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

// pdfMagic is the signature every well-formed PDF starts with.
var pdfMagic = []byte("%PDF")

// maxPDFBytes caps how much of a response body is read. Lesson PDFs are a
// few megabytes at most; anything larger is almost certainly not a lesson.
const maxPDFBytes = 64 << 20

// Fetcher downloads lesson PDFs over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewFetcher creates a fetcher with the given request timeout and User-Agent.
func NewFetcher(timeout time.Duration, userAgent string, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// ValidateURL rejects values that cannot possibly point at a lesson PDF
// before any network traffic happens. Database rows sometimes carry the
// literal string "NULL" where a URL should be. file:// URLs are accepted
// for lessons registered from the local inbox directory.
func ValidateURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return domainerrors.InvalidSource("source URL is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return domainerrors.InvalidSourcef("source URL is not parseable: %s", trimmed)
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
		return domainerrors.InvalidSourcef("source URL must be http, https or file: %s", trimmed)
	}
	if !strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return domainerrors.InvalidSourcef("source URL does not point at a PDF: %s", trimmed)
	}
	return nil
}

// Fetch downloads the PDF at rawURL and returns its bytes. The URL is
// validated first, the response must be 2xx, and the body must carry the
// PDF magic bytes.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	if strings.HasPrefix(strings.TrimSpace(rawURL), "file://") {
		return f.fetchLocal(rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSpace(rawURL), nil)
	if err != nil {
		return nil, domainerrors.InvalidSourcef("building request for %s: %v", rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeInvalidSource, "fetching %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domainerrors.InvalidSourcef("fetching %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeInvalidSource, "reading body of %s", rawURL)
	}
	if len(data) == 0 {
		return nil, domainerrors.InvalidSourcef("fetching %s: empty response body", rawURL)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, domainerrors.InvalidSourcef("fetching %s: response is not a PDF", rawURL)
	}

	if f.logger != nil {
		f.logger.Debug("fetched lesson PDF",
			slog.String("url", rawURL),
			slog.Int("bytes", len(data)))
	}
	return data, nil
}

// fetchLocal reads a PDF from the local filesystem. Used for lessons that
// arrived through the inbox drop directory.
func (f *Fetcher) fetchLocal(rawURL string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, domainerrors.InvalidSourcef("source URL is not parseable: %s", rawURL)
	}

	file, err := os.Open(u.Path)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeInvalidSource, "opening %s", u.Path)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPDFBytes))
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeInvalidSource, "reading %s", u.Path)
	}
	if len(data) == 0 {
		return nil, domainerrors.InvalidSourcef("reading %s: file is empty", u.Path)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, domainerrors.InvalidSourcef("reading %s: file is not a PDF", u.Path)
	}

	if f.logger != nil {
		f.logger.Debug("read local lesson PDF",
			slog.String("path", u.Path),
			slog.Int("bytes", len(data)))
	}
	return data, nil
}
