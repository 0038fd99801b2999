package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveUpstreamCounts(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(upstreamCounter.WithLabelValues("exchange", "200"))
	ObserveUpstream("exchange", "200", 0.01)
	require.Equal(t, before+1, testutil.ToFloat64(upstreamCounter.WithLabelValues("exchange", "200")))
}

func TestCaptureErrorWithoutClientIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		CaptureError(errors.New("boom"), map[string]string{"route": "/callback"})
		CaptureError(nil, nil)
	})
}
