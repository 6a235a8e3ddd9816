package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://example.com/lesson.pdf", false},
		{"valid http", "http://example.com/files/week1.PDF", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"literal NULL", "NULL", true},
		{"lowercase null", "null", true},
		{"valid file", "file:///inbox/lesson.pdf", false},
		{"wrong scheme", "ftp://example.com/lesson.pdf", true},
		{"no scheme", "example.com/lesson.pdf", true},
		{"not a pdf", "https://example.com/lesson.docx", true},
		{"pdf in query only", "https://example.com/download?file=lesson.pdf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidSource))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFetch_ReturnsPDFBytes(t *testing.T) {
	body := []byte("%PDF-1.4 fake content")
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "TestAgent/1.0", nil)

	data, err := f.Fetch(context.Background(), srv.URL+"/lesson.pdf")
	require.NoError(t, err)
	assert.Equal(t, body, data)
	assert.Equal(t, "TestAgent/1.0", gotUA)
}

func TestFetch_RejectsNonPDFBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not a pdf</html>"))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/lesson.pdf")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidSource))
}

func TestFetch_RejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/lesson.pdf")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidSource))
}

func TestFetch_RejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetch_ValidatesBeforeRequesting(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, "", nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/notes.txt")
	require.Error(t, err)
	assert.False(t, called, "invalid URLs must not hit the network")
}

func TestFetch_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "week1.pdf")
	body := []byte("%PDF-1.4 dropped into the inbox")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	f := NewFetcher(5*time.Second, "", nil)

	data, err := f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, body, data)
}

func TestFetch_LocalFileMissing(t *testing.T) {
	f := NewFetcher(5*time.Second, "", nil)

	_, err := f.Fetch(context.Background(), "file:///does/not/exist.pdf")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidSource))
}

func TestFetch_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	f := NewFetcher(10*time.Second, "", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL+"/slow.pdf")
	require.Error(t, err)
}
