package storage

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/knodemy/lecture-server/internal/errors"
)

// Local stores objects as files under a base directory, one subdirectory
// per bucket. URLs are file paths; signed URLs carry an HMAC token so links
// handed out by the API can be expired.
type Local struct {
	base    string
	signKey []byte
	logger  *slog.Logger
}

// NewLocal creates a filesystem-backed store rooted at base.
func NewLocal(base string, logger *slog.Logger) (*Local, error) {
	if base == "" {
		return nil, domainerrors.Internal("storage base path is required")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "creating storage base directory")
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generating signing key")
	}

	return &Local{base: base, signKey: key, logger: logger}, nil
}

// Upload writes the object, creating intermediate directories as needed.
func (l *Local) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateKey(bucket, key); err != nil {
		return "", err
	}

	path := l.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeUpload, "creating object directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", domainerrors.Wrapf(err, domainerrors.CodeUpload, "writing %s/%s", bucket, key)
	}

	if l.logger != nil {
		l.logger.Info("stored artifact",
			slog.String("bucket", bucket),
			slog.String("key", key),
			slog.Int("bytes", len(data)),
			slog.String("content_type", contentType))
	}
	return l.URL(bucket, key), nil
}

// URL returns the object's file URL.
func (l *Local) URL(bucket, key string) string {
	return "file://" + l.objectPath(bucket, key)
}

// SignedURL appends an expiry timestamp and an HMAC over path plus expiry.
func (l *Local) SignedURL(bucket, key string, expiry time.Duration) (string, error) {
	if err := validateKey(bucket, key); err != nil {
		return "", err
	}

	expires := time.Now().Add(expiry).Unix()
	token := l.sign(bucket, key, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("token", token)
	return l.URL(bucket, key) + "?" + q.Encode(), nil
}

// Verify checks a signed URL's token and expiry.
func (l *Local) Verify(bucket, key, token string, expires int64) bool {
	if time.Now().Unix() > expires {
		return false
	}
	expected := l.sign(bucket, key, expires)
	return hmac.Equal([]byte(expected), []byte(token))
}

func (l *Local) sign(bucket, key string, expires int64) string {
	mac := hmac.New(sha256.New, l.signKey)
	fmt.Fprintf(mac, "%s/%s:%d", bucket, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

func (l *Local) objectPath(bucket, key string) string {
	return filepath.Join(l.base, bucket, filepath.FromSlash(key))
}

// validateKey rejects path traversal in bucket or key.
func validateKey(bucket, key string) error {
	if bucket == "" || key == "" {
		return domainerrors.Upload("bucket and key are required")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "" {
			return domainerrors.Upload("object key contains invalid path segments")
		}
	}
	if strings.ContainsAny(bucket, `/\`) || bucket == ".." {
		return domainerrors.Upload("bucket name contains invalid characters")
	}
	return nil
}
