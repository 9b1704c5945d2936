// Package feedback turns a finalized session summary into coaching
// text. A remote generator is used when configured; every failure
// falls back to the deterministic rule-based generator, so callers
// always get text and never an error.
package feedback

import (
	"context"
	"os"
	"strings"

	"orato/session"
)

type Generator interface {
	Name() string
	Generate(ctx context.Context, s session.Summary) (string, error)
}

// New selects a generator by environment. With OPENAI_API_KEY set the
// remote generator is used (the rules fallback still applies at call
// time); otherwise feedback is generated locally.
func New() Generator {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewRemote(key)
	}
	return Rules{}
}

// Generate runs g and falls back to the rule-based generator on any
// error or blank response. The second return reports whether the
// fallback was taken. Total: never fails, never returns empty text.
func Generate(ctx context.Context, g Generator, s session.Summary) (string, bool) {
	if g == nil {
		return Rules{}.render(s), true
	}
	text, err := g.Generate(ctx, s)
	if err != nil || strings.TrimSpace(text) == "" {
		if _, local := g.(Rules); local {
			// Rules itself cannot fail; don't double-render.
			return Rules{}.render(s), false
		}
		return Rules{}.render(s), true
	}
	return text, false
}
