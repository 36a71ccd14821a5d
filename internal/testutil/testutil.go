// Package testutil provides testing utilities and helpers for restkit tests.
package testutil

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/GriffinCanCode/restkit/httpservice"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockLifecycle is a mock implementation of httpclient.Lifecycle.
type MockLifecycle struct {
	mock.Mock
}

// Login mocks the Login method.
func (m *MockLifecycle) Login(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Logout mocks the Logout method.
func (m *MockLifecycle) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// NewMockLifecycle creates a mock whose Login and Logout succeed.
func NewMockLifecycle(t *testing.T) *MockLifecycle {
	t.Helper()
	m := new(MockLifecycle)
	m.On("Login", mock.Anything).Return(nil).Maybe()
	m.On("Logout", mock.Anything).Return(nil).Maybe()
	return m
}

// ServiceConfig returns a config pointing at srv. TLS servers get HTTPS with
// certificate verification disabled.
func ServiceConfig(t *testing.T, srv *httptest.Server) httpservice.Config {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	useHTTPS := u.Scheme == "https"
	return httpservice.Config{
		Host:      u.Hostname(),
		Port:      port,
		UseHTTPS:  useHTTPS,
		VerifyTLS: !useHTTPS,
	}
}

// NewService creates a service bound to srv.
func NewService(t *testing.T, srv *httptest.Server, opts ...httpservice.Option) *httpservice.Service {
	t.Helper()
	svc, err := httpservice.New(ServiceConfig(t, srv), opts...)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

// ObservedLogger returns a logger that records entries at or above level.
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}
