package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReturnsNonNilLogger(t *testing.T) {
	require.NotNil(t, New("info"))
}

func TestParseLevelDefaultsToInfoForUnknownName(t *testing.T) {
	require.Equal(t, parseLevel("info"), parseLevel("nonsense"))
}

func TestNewDiscardNeverPanicsOnLog(t *testing.T) {
	log := NewDiscard()
	require.NotPanics(t, func() {
		log.Info("hello", "key", "value")
	})
}
