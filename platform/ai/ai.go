// Package ai defines the LLM collaborator contract used for lead
// classification. This is part of the platform layer and contains no
// business logic.
package ai

import "context"

// Chat is a single-turn chat completion backend. Implementations must treat
// the returned text as untrusted: callers are responsible for parsing and for
// falling back when the output does not conform to their schema.
type Chat interface {
	// Name identifies the backing provider/model for logging.
	Name() string
	// Complete sends a system instruction plus user content and returns the
	// model's text output.
	Complete(ctx context.Context, system, user string) (string, error)
}
