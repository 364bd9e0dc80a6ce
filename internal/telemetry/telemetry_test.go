package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMeterAndTracerNeverReturnNil(t *testing.T) {
	require.NotNil(t, Meter("test"))
	require.NotNil(t, Tracer("test"))
}

func TestGatewayRecorderRecordCallDoesNotPanicBeforeInit(t *testing.T) {
	r := NewGatewayRecorder()
	require.NotPanics(t, func() {
		r.RecordCall("add_memory", 5*time.Millisecond, true)
		r.RecordCall("add_memory", 5*time.Millisecond, false)
	})
}
