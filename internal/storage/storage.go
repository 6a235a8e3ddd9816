// Package storage persists generated artifacts (script PDFs, lecture audio)
// into named buckets and hands back URLs for later retrieval.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Store is an object store scoped to flat bucket/key addressing.
type Store interface {
	// Upload writes an object and returns its URL.
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	// URL returns the address of an existing object without touching it.
	URL(bucket, key string) string
	// SignedURL returns a time-limited address for an existing object.
	SignedURL(bucket, key string, expiry time.Duration) (string, error)
}

// ObjectKey builds the canonical artifact path: teacher, course, and run
// date partition the bucket, the file name carries the lesson.
func ObjectKey(teacherID, courseID, runDate, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", teacherID, courseID, runDate, filename)
}
