package clients

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
)

// HTTPConfig tunes the transport used by API connectors
type HTTPConfig struct {
	// RequestsPerMinute caps the request rate; zero disables limiting
	RequestsPerMinute int
	// Burst is the number of requests allowed back to back
	Burst int
	// MaxRetries is how often a 429 or 5xx response or a network error is
	// retried
	MaxRetries int
	// BaseBackoff is the first retry delay; it doubles on every attempt
	BaseBackoff time.Duration
	// MaxBackoff caps a single retry delay, including Retry-After hints
	MaxBackoff time.Duration
	Timeout    time.Duration
}

// DefaultHTTPConfig returns settings matching the default Google Sheets
// quota of 60 requests per minute per user.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		RequestsPerMinute: 60,
		Burst:             10,
		MaxRetries:        3,
		BaseBackoff:       500 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		Timeout:           2 * time.Minute,
	}
}

// Transport is an http.RoundTripper that rate limits requests and retries
// throttled or failed ones with exponential backoff.
type Transport struct {
	Base    http.RoundTripper
	config  HTTPConfig
	limiter *TokenBucket
	logger  *zap.Logger
	sleep   func(time.Duration)
}

// NewTransport wraps base, or http.DefaultTransport when base is nil.
func NewTransport(base http.RoundTripper, cfg HTTPConfig, log *zap.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		Base:   base,
		config: cfg,
		logger: logger.OrGlobal(log).With(zap.String("component", "http_client")),
		sleep:  time.Sleep,
	}
	if cfg.RequestsPerMinute > 0 {
		t.limiter = PerMinute(cfg.RequestsPerMinute, cfg.Burst)
	}
	return t
}

// NewHTTPClient returns an http.Client using a Transport over base.
func NewHTTPClient(base http.RoundTripper, cfg HTTPConfig, log *zap.Logger) *http.Client {
	return &http.Client{Transport: NewTransport(base, cfg, log), Timeout: cfg.Timeout}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	for attempt := 0; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(req.Context()); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		attemptReq := req
		if attempt > 0 {
			r, err := rewind(req)
			if err != nil {
				return nil, err
			}
			attemptReq = r
		}

		resp, err := t.Base.RoundTrip(attemptReq)
		retry, wait := t.shouldRetry(resp, err, attempt)
		if !retry {
			metrics.HTTPRequests.WithLabelValues(host, outcome(resp, err)).Inc()
			return resp, err
		}
		metrics.HTTPRequests.WithLabelValues(host, "retried").Inc()

		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("host", host),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		} else {
			fields = append(fields, zap.Int("status", resp.StatusCode))
			drain(resp)
		}
		t.logger.Warn("retrying request", fields...)

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		default:
		}
		t.sleep(wait)
	}
}

func (t *Transport) shouldRetry(resp *http.Response, err error, attempt int) (bool, time.Duration) {
	if attempt >= t.config.MaxRetries {
		return false, 0
	}
	if err != nil {
		return true, t.backoff(attempt)
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
		return false, 0
	}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, perr := strconv.Atoi(s); perr == nil && secs >= 0 {
			return true, t.capped(time.Duration(secs) * time.Second)
		}
	}
	return true, t.backoff(attempt)
}

func (t *Transport) backoff(attempt int) time.Duration {
	return t.capped(t.config.BaseBackoff << uint(attempt))
}

func (t *Transport) capped(d time.Duration) time.Duration {
	if t.config.MaxBackoff > 0 && d > t.config.MaxBackoff {
		return t.config.MaxBackoff
	}
	return d
}

// rewind clones req with a fresh body for another attempt.
func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return r, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot retry %s %s: request body is not replayable", req.Method, req.URL.Redacted())
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r.Body = body
	return r, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func outcome(resp *http.Response, err error) string {
	if err != nil {
		return "error"
	}
	return strconv.Itoa(resp.StatusCode/100) + "xx"
}
