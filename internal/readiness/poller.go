// Package readiness polls service endpoints until they answer or a
// deadline passes.
package readiness

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/AvengeMedia/automate/internal/errdefs"
	"github.com/AvengeMedia/automate/internal/log"
	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultInterval     = time.Second
	DefaultProbeTimeout = time.Second
)

// ProbeFunc performs one readiness attempt against endpoint.
type ProbeFunc func(ctx context.Context, endpoint string) error

// Waiter is what the orchestrator depends on.
type Waiter interface {
	WaitForReady(ctx context.Context, endpoint string, timeout time.Duration) error
}

type Poller struct {
	interval     time.Duration
	probeTimeout time.Duration
	probe        ProbeFunc
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

func WithProbeTimeout(d time.Duration) Option {
	return func(p *Poller) { p.probeTimeout = d }
}

// WithProbe replaces the scheme-based default probe.
func WithProbe(probe ProbeFunc) Option {
	return func(p *Poller) { p.probe = probe }
}

func NewPoller(opts ...Option) *Poller {
	p := &Poller{
		interval:     DefaultInterval,
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.probe == nil {
		p.probe = p.defaultProbe
	}
	return p
}

// WaitForReady returns nil as soon as a probe succeeds. An HTTP endpoint is
// ready once any response arrives, whatever its status; a tcp:// endpoint
// once a connection is accepted. If timeout elapses first it returns a
// ReadinessTimeoutError; if ctx ends first it returns ctx's error.
func (p *Poller) WaitForReady(ctx context.Context, endpoint string, timeout time.Duration) error {
	if _, err := parseEndpoint(endpoint); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	attempts := 0
	operation := func() error {
		attempts++
		lastErr = p.probe(waitCtx, endpoint)
		return lastErr
	}
	notify := func(err error, next time.Duration) {
		log.Debug("endpoint not ready", "endpoint", endpoint, "attempt", attempts, "retry_in", next, "err", err)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.NewConstantBackOff(p.interval), waitCtx), notify)
	if err == nil {
		log.Debug("endpoint ready", "endpoint", endpoint, "attempts", attempts)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &errdefs.ReadinessTimeoutError{Endpoint: endpoint, Timeout: timeout, LastErr: lastErr}
}

func (p *Poller) defaultProbe(ctx context.Context, endpoint string) error {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return err
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	if u.Scheme == "tcp" {
		var d net.Dialer
		conn, err := d.DialContext(probeCtx, "tcp", u.Host)
		if err != nil {
			return err
		}
		return conn.Close()
	}

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: p.probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func parseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "http", "https", "tcp":
	default:
		return nil, fmt.Errorf("invalid endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return u, nil
}

var _ Waiter = (*Poller)(nil)
