// Package enhancer generates a title and one-line summary for a memory body
// when the caller doesn't supply one, via a pluggable backend.
package enhancer

import "context"

// Enhancer derives a title and summary from a memory's body. Implementations
// must be safe to call with an empty or very short body and should return
// the input unenhanced rather than erroring when they can't do better.
type Enhancer interface {
	Enhance(ctx context.Context, body string) (title, summary string, err error)
}

// NoopEnhancer leaves title/summary generation to the caller. It's the
// default: add_memory works with no enhancer configured at all, the same
// way linking degrades cleanly with no vector index.
type NoopEnhancer struct{}

func (NoopEnhancer) Enhance(_ context.Context, _ string) (string, string, error) {
	return "", "", nil
}
