package reportserver

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paratest/clock"
	"paratest/errors"
	"paratest/event"
)

func fastRetryConfig() *errors.RetryConfig {
	cfg := errors.ExternalServiceRetryConfig()
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestForwarder_RetriesATransientFailureThenSucceeds(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	forwarder := newForwarder(server.URL, fastRetryConfig(), nil)
	forwarder.Observe(event.Event{Kind: event.KindRunEnded, Instant: clock.NewInstant(time.Now())})

	assert.GreaterOrEqual(t, attempts.Load(), int64(3))
	assert.Equal(t, errors.CircuitBreakerClosed, forwarder.State())
}

func TestForwarder_TripsOpenAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	breakerConfig := &errors.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Minute, MaxRequests: 1}
	forwarder := newForwarder(server.URL, fastRetryConfig(), breakerConfig)
	require.NotNil(t, forwarder)

	for i := 0; i < 3; i++ {
		forwarder.Observe(event.Event{Kind: event.KindRunEnded, Instant: clock.NewInstant(time.Now())})
	}

	assert.Equal(t, errors.CircuitBreakerOpen, forwarder.State())
}

func TestForwarder_MarshalFailurePayloadIsSkippedWithoutPanicking(t *testing.T) {
	forwarder := newForwarder("http://127.0.0.1:0", fastRetryConfig(), nil)
	forwarder.Observe(event.Event{Kind: event.KindValueAttached, Payload: make(chan int)})
	assert.Equal(t, errors.CircuitBreakerClosed, forwarder.State())
}
