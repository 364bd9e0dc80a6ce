package enhancer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopEnhancerReturnsEmpty(t *testing.T) {
	var e NoopEnhancer
	title, summary, err := e.Enhance(context.Background(), "anything")
	require.NoError(t, err)
	require.Empty(t, title)
	require.Empty(t, summary)
}

func TestNewAnthropicEnhancerRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewAnthropicEnhancer("", "")
	require.ErrorIs(t, err, errAPIKeyRequired)
}

func TestSplitTitleSummaryParsesTwoLineResponse(t *testing.T) {
	title, summary, err := splitTitleSummary("Title: Fix login bug\nSummary: Patched a race in the session store.")
	require.NoError(t, err)
	require.Equal(t, "Fix login bug", title)
	require.Equal(t, "Patched a race in the session store.", summary)
}

func TestSplitTitleSummaryDegradesOnSingleLine(t *testing.T) {
	title, summary, err := splitTitleSummary("just one line")
	require.NoError(t, err)
	require.Equal(t, "just one line", title)
	require.Empty(t, summary)
}
