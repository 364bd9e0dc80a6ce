package linker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractTermsDropsStopwordsAndShortTokens(t *testing.T) {
	terms := ExtractTerms("Fix the API timeout", "a to in bug, on retry logic!", []string{"backend", "db"})
	require.Contains(t, terms, "api")
	require.Contains(t, terms, "timeout")
	require.Contains(t, terms, "retry")
	require.Contains(t, terms, "logic")
	require.Contains(t, terms, "backend")
	require.NotContains(t, terms, "the")
	require.NotContains(t, terms, "in")
	require.NotContains(t, terms, "on")
	require.NotContains(t, terms, "db") // below minTermLength
}

func TestExtractTermsDedupes(t *testing.T) {
	terms := ExtractTerms("retry retry retry", "", nil)
	require.Equal(t, []string{"retry"}, terms)
}
