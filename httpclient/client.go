package httpclient

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/restkit/httpservice"
	"go.uber.org/zap"
)

// ErrNotImplemented is returned by lifecycle hooks a client does not
// support. Release discards it.
var ErrNotImplemented = errors.New("not implemented")

// Lifecycle is the login/logout capability of an API client.
type Lifecycle interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
}

// Enterer is implemented by clients that want work done when a scope opens,
// usually a login.
type Enterer interface {
	Enter(ctx context.Context) error
}

// Credentials are the login details a client was built with.
type Credentials struct {
	User     string
	Password string
	Token    string
}

// Options configures a Base.
type Options struct {
	Credentials
	Logger *zap.Logger
}

// Base holds what every concrete API client shares: credentials, a logger
// and the HTTP service. Embed it and add endpoint methods; Login and Logout
// default to no-ops.
type Base struct {
	Credentials

	logger  *zap.Logger
	service *httpservice.Service
}

// New creates a Base whose service is built from cfg.
func New(cfg httpservice.Config, opts Options) (*Base, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := httpservice.New(cfg, httpservice.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *httpservice.Service, opts Options) *Base {
	logger := opts.Logger
	if logger == nil {
		logger = svc.Logger()
	}
	return &Base{
		Credentials: opts.Credentials,
		logger:      logger,
		service:     svc,
	}
}

// Service returns the HTTP service owned by the client.
func (b *Base) Service() *httpservice.Service {
	return b.service
}

// Logger returns the client logger.
func (b *Base) Logger() *zap.Logger {
	return b.logger
}

// SetLogger replaces the client logger. The service keeps its own.
func (b *Base) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	b.logger = l
}

// SetBearerToken records token and sends it as a bearer Authorization
// header on every later request. Clients call it once Login has obtained a
// token.
func (b *Base) SetBearerToken(token string) {
	b.Token = token
	b.service.SetHeader("Authorization", "Bearer "+token)
}

func (b *Base) Login(context.Context) error  { return nil }
func (b *Base) Logout(context.Context) error { return nil }

// Strict is a Base whose Login and Logout report ErrNotImplemented, for
// clients that must opt in to each hook explicitly.
type Strict struct {
	*Base
}

// NewStrict wraps b.
func NewStrict(b *Base) *Strict {
	return &Strict{Base: b}
}

func (s *Strict) Login(context.Context) error  { return ErrNotImplemented }
func (s *Strict) Logout(context.Context) error { return ErrNotImplemented }
