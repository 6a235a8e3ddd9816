// Package llm abstracts chat-completion providers behind a small interface
// so script synthesis does not depend on a concrete SDK.
package llm

import "context"

// Client produces a completion for a system/user prompt pair.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
