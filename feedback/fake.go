package feedback

import (
	"context"
	"fmt"

	"orato/session"
)

type Fake struct {
	text string
	err  error
}

func NewFake(text string, err error) *Fake {
	return &Fake{text: text, err: err}
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Generate(_ context.Context, _ session.Summary) (string, error) {
	if f.err != nil {
		return "", fmt.Errorf("fake generator error: %w", f.err)
	}
	return f.text, nil
}
