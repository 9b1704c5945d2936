package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"

	"orato/session"
)

func midSummary() session.Summary {
	return session.Summary{
		Volume: 50, Clarity: 55, Pace: 40, PitchVariation: 48,
		Frequency: 50, Energy: 52, UsedCount: 10,
	}
}

func TestGenerateRemoteSuccess(t *testing.T) {
	g := NewFake("Solid pacing throughout.", nil)
	text, fellBack := Generate(context.Background(), g, midSummary())
	if fellBack {
		t.Error("fell back despite a working generator")
	}
	if text != "Solid pacing throughout." {
		t.Errorf("text = %q", text)
	}
}

func TestGenerateFallbackOnError(t *testing.T) {
	g := NewFake("", errors.New("connection refused"))
	text, fellBack := Generate(context.Background(), g, midSummary())
	if !fellBack {
		t.Error("expected fallback on generator error")
	}
	if strings.TrimSpace(text) == "" {
		t.Error("fallback produced empty text")
	}
}

func TestGenerateFallbackOnBlank(t *testing.T) {
	g := NewFake("   \n", nil)
	text, fellBack := Generate(context.Background(), g, midSummary())
	if !fellBack {
		t.Error("expected fallback on blank response")
	}
	if strings.TrimSpace(text) == "" {
		t.Error("fallback produced empty text")
	}
}

func TestGenerateNilGenerator(t *testing.T) {
	text, fellBack := Generate(context.Background(), nil, midSummary())
	if !fellBack || strings.TrimSpace(text) == "" {
		t.Errorf("nil generator: text=%q fellBack=%v", text, fellBack)
	}
}

func TestNewWithoutKeySelectsRules(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if g := New(); g.Name() != "rules" {
		t.Errorf("generator = %q, want rules", g.Name())
	}
}

func TestNewWithKeySelectsRemote(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if g := New(); g.Name() != "openai" {
		t.Errorf("generator = %q, want openai", g.Name())
	}
}
