package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"orato/session"
)

const remoteTimeout = 15 * time.Second

const systemPrompt = "You are a public-speaking coach. You receive six " +
	"voice metrics from a practice session, each scored 0-100. Reply " +
	"with short, encouraging feedback: a Strengths section and an " +
	"Areas to improve section, plain text, no markdown."

// Remote generates feedback through the OpenAI chat completions API.
type Remote struct {
	client openai.Client
	model  string
}

func NewRemote(apiKey string) *Remote {
	return &Remote{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}
}

func (r *Remote) Name() string { return "openai" }

func (r *Remote) Generate(ctx context.Context, s session.Summary) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(Record(s)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("feedback request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("feedback response had no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("feedback response was empty")
	}
	return text, nil
}

// Record serializes a summary as the flat numeric record the remote
// generator consumes.
func Record(s session.Summary) string {
	return fmt.Sprintf(
		"volume=%d clarity=%d pace=%d pitch_variation=%d frequency=%d energy=%d samples=%d discarded=%d",
		s.Volume, s.Clarity, s.Pace, s.PitchVariation, s.Frequency, s.Energy,
		s.UsedCount, s.DiscardedCount)
}
