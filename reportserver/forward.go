package reportserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"paratest/errors"
	"paratest/event"
	"paratest/plan"
)

// Forwarder posts every observed Event to an external HTTP sink (a
// downstream aggregator outside this process), guarded by a Retryer for
// transient failures and a CircuitBreaker so a reliably-down sink stops
// costing PlanRunner's goroutines a round trip per event. This is the
// outbound event forwarding errors.Retryer and errors.CircuitBreaker
// are built for.
type Forwarder struct {
	url     string
	client  *http.Client
	retryer *errors.Retryer
	breaker *errors.CircuitBreaker
}

// NewForwarder builds a Forwarder posting to url, retrying with
// errors.ExternalServiceRetryConfig and tripping on the default
// CircuitBreakerConfig.
func NewForwarder(url string) *Forwarder {
	return newForwarder(url, errors.ExternalServiceRetryConfig(), nil)
}

// newForwarder lets tests substitute a faster RetryConfig/
// CircuitBreakerConfig than production wants without waiting out real
// backoff delays.
func newForwarder(url string, retryConfig *errors.RetryConfig, breakerConfig *errors.CircuitBreakerConfig) *Forwarder {
	return &Forwarder{
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		retryer: errors.NewRetryer(retryConfig),
		breaker: errors.NewCircuitBreaker(breakerConfig),
	}
}

// AsObserver adapts f to plan.Observer's function signature.
func (f *Forwarder) AsObserver() plan.Observer {
	return f.Observe
}

// Observe implements plan.Observer. A forwarding failure is logged, not
// returned, so a failing sink never fails the run. The call is
// synchronous: the dispatching goroutine waits through the retries until
// the breaker opens, after which events are rejected without a request.
func (f *Forwarder) Observe(ev event.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("reportserver: forward: marshal event: %v", err)
		return
	}

	err = f.breaker.Execute(context.Background(), func() error {
		return f.retryer.Execute(context.Background(), func() error {
			return f.post(body)
		})
	})
	if err != nil {
		log.Printf("reportserver: forward to %s: %v", f.url, err)
	}
}

func (f *Forwarder) post(body []byte) error {
	req, err := http.NewRequest(http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeProcessingError, "build forward request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.NewExternalServiceError("EVENT_FORWARD_UNREACHABLE", err.Error(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.NewExternalServiceError("EVENT_FORWARD_5XX",
			fmt.Sprintf("downstream returned %d", resp.StatusCode), nil)
	}
	return nil
}

// State reports the breaker's current state, exposed mainly for tests
// and for an operator wiring Forwarder's health into /health.
func (f *Forwarder) State() errors.CircuitBreakerState {
	return f.breaker.GetState()
}
