package enhancer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"

	"github.com/corevault/corevault/internal/telemetry"
)

// errAPIKeyRequired is returned when ANTHROPIC_API_KEY isn't set and no
// explicit key was supplied.
var errAPIKeyRequired = errors.New("enhancer: ANTHROPIC_API_KEY required")

const maxElapsed = 20 * time.Second

// AnthropicEnhancer calls a small Claude model to title and summarize a
// memory body. It's opt-in: NewAnthropicEnhancer only succeeds once an API
// key is available, so callers should fall back to NoopEnhancer otherwise.
type AnthropicEnhancer struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicEnhancer builds an enhancer using apiKey, or the
// ANTHROPIC_API_KEY environment variable if apiKey is empty — the env var
// takes precedence when both are set.
func NewAnthropicEnhancer(apiKey, model string) (*AnthropicEnhancer, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if model == "" {
		model = "claude-haiku-4-5"
	}
	return &AnthropicEnhancer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}, nil
}

// Enhance asks the model for a one-line title and one-sentence summary,
// retrying transient failures with exponential backoff.
func (e *AnthropicEnhancer) Enhance(ctx context.Context, body string) (string, string, error) {
	if strings.TrimSpace(body) == "" {
		return "", "", nil
	}

	tracer := telemetry.Tracer("corevault/enhancer")
	ctx, span := tracer.Start(ctx, "anthropic.enhance")
	defer span.End()

	prompt := fmt.Sprintf(enhancePromptTemplate, body)

	var text string
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed

	op := func() error {
		resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     e.model,
			MaxTokens: 256,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(resp.Content) == 0 || resp.Content[0].Type != "text" {
			return backoff.Permanent(fmt.Errorf("enhancer: unexpected response shape"))
		}
		text = resp.Content[0].Text
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", "", fmt.Errorf("enhancer: enhance call failed: %w", err)
	}

	return splitTitleSummary(text)
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}

// splitTitleSummary parses the model's two-line "Title: ...\nSummary: ..."
// response. A response that doesn't match the expected shape degrades to
// using the whole first line as the title with no summary.
func splitTitleSummary(text string) (string, string, error) {
	lines := strings.SplitN(strings.TrimSpace(text), "\n", 2)
	title := strings.TrimPrefix(strings.TrimSpace(lines[0]), "Title:")
	title = strings.TrimSpace(title)
	if len(lines) < 2 {
		return title, "", nil
	}
	summary := strings.TrimPrefix(strings.TrimSpace(lines[1]), "Summary:")
	return title, strings.TrimSpace(summary), nil
}

const enhancePromptTemplate = `Given the following note, respond with exactly two lines:
Title: <a concise title, under 8 words>
Summary: <one sentence summarizing the note>

Note:
%s`
