package httpservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Service owns one resty session for its lifetime and counts the requests
// sent through it.
type Service struct {
	cfg      Config
	logger   *zap.Logger
	observer Observer

	mu      sync.RWMutex
	client  *resty.Client
	limiter *rate.Limiter

	requestCount atomic.Uint64
}

// Option configures a Service at construction.
type Option func(*Service)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver attaches an Observer, typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// New creates a Service. Proxies, TLS verification and warning suppression
// are applied here once and never revisited.
func New(cfg Config, opts ...Option) (*Service, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("httpservice: host is required")
	}

	s := &Service{
		cfg:      cfg.clone(),
		logger:   zap.NewNop(),
		observer: nopObserver{},
		limiter:  rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	transport, err := newTransport(s.cfg)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetTransport(transport).
		SetLogger(s.logger.Sugar()).
		SetDisableWarn(s.cfg.Suppresses(WarningInsecureAuth))
	if s.cfg.Timeout > 0 {
		client.SetTimeout(s.cfg.Timeout)
	}
	if s.cfg.UserAgent != "" {
		client.SetHeader("User-Agent", s.cfg.UserAgent)
	}
	s.client = client

	if len(s.cfg.Proxies) > 0 {
		s.logger.Debug("configured proxies on session", zap.Any("proxies", s.cfg.Proxies))
	}
	s.logger.Debug("configured TLS verification", zap.Bool("verify", s.cfg.VerifyTLS))

	if s.cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), max(1, int(s.cfg.RateLimit)))
	}

	return s, nil
}

// Config returns a copy of the configuration the Service was built with.
func (s *Service) Config() Config {
	return s.cfg.clone()
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// RequestCount returns the number of requests that completed a round trip.
func (s *Service) RequestCount() uint64 {
	return s.requestCount.Load()
}

// SetHeader adds a default header sent with every request. It waits for
// requests in flight to finish.
func (s *Service) SetHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client.SetHeader(key, value)
}

// Close releases idle connections held by the session.
func (s *Service) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.client.GetClient().CloseIdleConnections()
}

// Get sends a GET request.
func (s *Service) Get(ctx context.Context, uri string, opts ...RequestOption) (*resty.Response, error) {
	return s.send(ctx, http.MethodGet, uri, opts...)
}

// Post sends a POST request.
func (s *Service) Post(ctx context.Context, uri string, opts ...RequestOption) (*resty.Response, error) {
	return s.send(ctx, http.MethodPost, uri, opts...)
}

// Put sends a PUT request.
func (s *Service) Put(ctx context.Context, uri string, opts ...RequestOption) (*resty.Response, error) {
	return s.send(ctx, http.MethodPut, uri, opts...)
}

// Delete sends a DELETE request.
func (s *Service) Delete(ctx context.Context, uri string, opts ...RequestOption) (*resty.Response, error) {
	return s.send(ctx, http.MethodDelete, uri, opts...)
}

func (s *Service) send(ctx context.Context, method, uri string, opts ...RequestOption) (*resty.Response, error) {
	s.logger.Debug("prepping request", zap.String("method", method))
	target := s.BuildURL(uri)
	s.logger.Debug("request url", zap.String("url", target))

	d, err := s.Assemble(method, target, opts...)
	if err != nil {
		return nil, err
	}
	return s.Do(ctx, d)
}

// Do dispatches an assembled request through the session and validates the
// result. The request counter is incremented once the transport returns a
// response, before hooks and validation run. On a validation failure both
// the response and the error are returned.
func (s *Service) Do(ctx context.Context, d *Descriptor) (*resty.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	s.warnInsecure(d.URL)

	// Execute reads the session's default headers.
	s.mu.RLock()
	req := s.client.R().SetContext(ctx)
	d.apply(req)
	start := time.Now()
	resp, err := req.Execute(d.Method, d.URL)
	s.mu.RUnlock()
	if err != nil {
		s.observer.ObserveFailure(d.Method, ReasonTransport)
		return nil, fmt.Errorf("%s %s: %w", d.Method, d.URL, err)
	}
	s.requestCount.Add(1)
	s.observer.ObserveRequest(d.Method, resp.StatusCode(), time.Since(start))

	for _, hook := range d.Hooks {
		if err := hook(resp); err != nil {
			s.observer.ObserveFailure(d.Method, ReasonHook)
			return resp, fmt.Errorf("response hook: %w", err)
		}
	}

	resp, err = s.Validate(resp)
	if err != nil {
		s.observer.ObserveFailure(d.Method, failureReason(err))
	}
	return resp, err
}

func (s *Service) warnInsecure(target string) {
	if s.cfg.VerifyTLS || !strings.HasPrefix(target, "https://") || s.cfg.Suppresses(WarningInsecureRequest) {
		return
	}
	s.logger.Warn("unverified HTTPS request: certificate verification is disabled",
		zap.String("url", target),
		zap.String("category", string(WarningInsecureRequest)))
}
