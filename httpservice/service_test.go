package httpservice_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/restkit/httpservice"
	"github.com/GriffinCanCode/restkit/internal/testutil"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// echo is the body returned by the test server.
type echo struct {
	Method  string              `json:"method"`
	Path    string              `json:"path"`
	Query   map[string][]string `json:"query"`
	Headers map[string]string   `json:"headers"`
	Cookies map[string]string   `json:"cookies"`
	Body    string              `json:"body"`
	User    string              `json:"user"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
			return
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		body, _ := io.ReadAll(r.Body)
		e := echo{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: map[string]string{},
			Cookies: map[string]string{},
			Body:    string(body),
		}
		for _, h := range []string{"Content-Type", "X-Trace", "User-Agent", "Authorization"} {
			if v := r.Header.Get(h); v != "" {
				e.Headers[h] = v
			}
		}
		for _, c := range r.Cookies() {
			e.Cookies[c.Name] = c.Value
		}
		if u, _, ok := r.BasicAuth(); ok {
			e.User = u
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(e)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *resty.Response) echo {
	t.Helper()
	var e echo
	require.NoError(t, json.Unmarshal(resp.Body(), &e))
	return e
}

func TestServiceVerbs(t *testing.T) {
	srv := newEchoServer(t)
	svc := testutil.NewService(t, srv)
	ctx := context.Background()

	calls := []struct {
		method string
		do     func() (*resty.Response, error)
	}{
		{http.MethodGet, func() (*resty.Response, error) { return svc.Get(ctx, "posts") }},
		{http.MethodPost, func() (*resty.Response, error) { return svc.Post(ctx, "/posts") }},
		{http.MethodPut, func() (*resty.Response, error) { return svc.Put(ctx, "posts/1") }},
		{http.MethodDelete, func() (*resty.Response, error) { return svc.Delete(ctx, "/posts/1") }},
	}

	for i, c := range calls {
		resp, err := c.do()
		require.NoError(t, err)
		assert.Equal(t, c.method, decode(t, resp).Method)
		assert.Equal(t, uint64(i+1), svc.RequestCount())
	}
}

func TestServiceSendsSuppliedFields(t *testing.T) {
	srv := newEchoServer(t)
	svc := testutil.NewService(t, srv)

	resp, err := svc.Get(context.Background(), "/posts",
		httpservice.WithParams(map[string]string{"userId": "1"}),
		httpservice.WithHeaders(map[string]string{"X-Trace": "abc"}),
		httpservice.WithCookies(map[string]string{"session": "s1"}),
		httpservice.WithAuth(httpservice.BasicAuth{Username: "alice", Password: "pw"}),
	)
	require.NoError(t, err)

	e := decode(t, resp)
	assert.Equal(t, "/posts", e.Path)
	assert.Equal(t, []string{"1"}, e.Query["userId"])
	assert.Equal(t, "abc", e.Headers["X-Trace"])
	assert.Equal(t, "s1", e.Cookies["session"])
	assert.Equal(t, "alice", e.User)
}

func TestServiceJSONBody(t *testing.T) {
	srv := newEchoServer(t)
	svc := testutil.NewService(t, srv)

	resp, err := svc.Post(context.Background(), "posts",
		httpservice.WithJSON(map[string]string{"post": "my_post"}))
	require.NoError(t, err)

	e := decode(t, resp)
	assert.Contains(t, e.Headers["Content-Type"], "application/json")
	assert.JSONEq(t, `{"post":"my_post"}`, e.Body)
}

func TestServiceDataWinsOverJSON(t *testing.T) {
	srv := newEchoServer(t)
	svc := testutil.NewService(t, srv)

	resp, err := svc.Put(context.Background(), "posts/1",
		httpservice.WithJSON(map[string]string{"post": "ignored"}),
		httpservice.WithData(map[string]string{"title": "kept"}),
	)
	require.NoError(t, err)

	e := decode(t, resp)
	assert.Contains(t, e.Headers["Content-Type"], "application/x-www-form-urlencoded")
	assert.Equal(t, "title=kept", e.Body)
}

func TestServiceRawData(t *testing.T) {
	srv := newEchoServer(t)
	svc := testutil.NewService(t, srv)

	resp, err := svc.Post(context.Background(), "raw",
		httpservice.WithHeaders(map[string]string{"Content-Type": "text/plain"}),
		httpservice.WithData("hello"),
	)
	require.NoError(t, err)
	assert.Equal(t, "hello", decode(t, resp).Body)
}

func TestServiceFiles(t *testing.T) {
	var (
		field string
		body  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		field = r.FormValue("description")
		f, _, err := r.FormFile("upload")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		body = string(b)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	svc := testutil.NewService(t, srv)

	resp, err := svc.Post(context.Background(), "upload",
		httpservice.WithFiles(httpservice.File{Param: "upload", FileName: "notes.txt", Reader: strings.NewReader("file contents")}),
		httpservice.WithData(map[string]string{"description": "notes"}),
	)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, "notes", field)
	assert.Equal(t, "file contents", body)
}

func TestServiceCounter(t *testing.T) {
	t.Run("counts validated failures", func(t *testing.T) {
		srv := newEchoServer(t)
		svc := testutil.NewService(t, srv)
		ctx := context.Background()

		_, err := svc.Get(ctx, "/unauthorized")
		assert.True(t, httpservice.IsUnauthorized(err))
		assert.Equal(t, uint64(1), svc.RequestCount())

		resp, err := svc.Get(ctx, "/broken")
		assert.True(t, httpservice.IsRequestFailed(err))
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
		assert.Equal(t, uint64(2), svc.RequestCount())

		se, ok := httpservice.AsStatusError(err)
		require.True(t, ok)
		assert.Equal(t, http.MethodGet, se.Method)
		assert.True(t, strings.HasSuffix(se.URL, "/broken"))
		assert.Equal(t, "boom", se.Body)
	})

	t.Run("assembly failure is not counted", func(t *testing.T) {
		srv := newEchoServer(t)
		svc := testutil.NewService(t, srv)

		_, err := svc.Get(context.Background(), "posts", httpservice.WithParams(42))
		assert.ErrorIs(t, err, httpservice.ErrInvalidRequest)
		assert.Equal(t, uint64(0), svc.RequestCount())
	})

	t.Run("transport failure is not counted", func(t *testing.T) {
		srv := newEchoServer(t)
		svc := testutil.NewService(t, srv)
		srv.Close()

		_, err := svc.Get(context.Background(), "posts")
		require.Error(t, err)
		assert.NotErrorIs(t, err, httpservice.ErrHTTPClient)
		assert.Equal(t, uint64(0), svc.RequestCount())
	})

	t.Run("cancelled context is not counted", func(t *testing.T) {
		srv := newEchoServer(t)
		svc := testutil.NewService(t, srv)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Get(ctx, "posts")
		require.Error(t, err)
		assert.Equal(t, uint64(0), svc.RequestCount())
	})

	t.Run("concurrent use", func(t *testing.T) {
		srv := newEchoServer(t)
		svc := testutil.NewService(t, srv)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.Get(context.Background(), "posts")
			}()
		}
		wg.Wait()
		assert.Equal(t, uint64(20), svc.RequestCount())
	})
}

func TestServiceSetHeaderDuringRequests(t *testing.T) {
	srv := newEchoServer(t)
	svc := testutil.NewService(t, srv)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Get(ctx, "posts")
		}()
		go func() {
			defer wg.Done()
			svc.SetHeader("X-Trace", strconv.Itoa(i))
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(20), svc.RequestCount())

	svc.SetHeader("X-Trace", "final")
	resp, err := svc.Get(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, "final", decode(t, resp).Headers["X-Trace"])
}

func TestServiceHooks(t *testing.T) {
	srv := newEchoServer(t)
	svc := testutil.NewService(t, srv)
	ctx := context.Background()

	var seen []int
	record := func(resp *resty.Response) error {
		seen = append(seen, resp.StatusCode())
		return nil
	}

	_, err := svc.Get(ctx, "posts", httpservice.WithHooks(record))
	require.NoError(t, err)
	_, err = svc.Get(ctx, "/broken", httpservice.WithHooks(record))
	require.Error(t, err)
	assert.Equal(t, []int{200, 500}, seen)

	hookErr := errors.New("reject")
	_, err = svc.Get(ctx, "posts", httpservice.WithHooks(func(*resty.Response) error { return hookErr }))
	assert.ErrorIs(t, err, hookErr)
	assert.Equal(t, uint64(3), svc.RequestCount())
}

func TestServiceTLSVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	t.Run("verification disabled warns per request", func(t *testing.T) {
		logger, logs := testutil.ObservedLogger(zapcore.WarnLevel)
		svc := testutil.NewService(t, srv, httpservice.WithLogger(logger))

		for i := 0; i < 2; i++ {
			resp, err := svc.Get(context.Background(), "health")
			require.NoError(t, err)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode())
		}
		assert.Equal(t, 2, logs.FilterMessageSnippet("unverified HTTPS request").Len())
	})

	t.Run("suppressed warning is silent", func(t *testing.T) {
		logger, logs := testutil.ObservedLogger(zapcore.WarnLevel)
		cfg := testutil.ServiceConfig(t, srv)
		cfg.SuppressWarnings = []httpservice.WarningCategory{httpservice.WarningInsecureRequest}

		svc, err := httpservice.New(cfg, httpservice.WithLogger(logger))
		require.NoError(t, err)

		_, err = svc.Get(context.Background(), "health")
		require.NoError(t, err)
		assert.Equal(t, 0, logs.FilterMessageSnippet("unverified HTTPS request").Len())
	})

	t.Run("verification enabled rejects unknown certificate", func(t *testing.T) {
		cfg := testutil.ServiceConfig(t, srv)
		cfg.VerifyTLS = true

		svc, err := httpservice.New(cfg)
		require.NoError(t, err)

		_, err = svc.Get(context.Background(), "health")
		require.Error(t, err)
		assert.Equal(t, uint64(0), svc.RequestCount())
	})
}

func TestServiceInsecureAuthWarning(t *testing.T) {
	srv := newEchoServer(t)
	auth := httpservice.WithAuth(httpservice.BasicAuth{Username: "alice", Password: "pw"})

	t.Run("basic auth over HTTP warns", func(t *testing.T) {
		logger, logs := testutil.ObservedLogger(zapcore.WarnLevel)
		svc := testutil.NewService(t, srv, httpservice.WithLogger(logger))

		resp, err := svc.Get(context.Background(), "posts", auth)
		require.NoError(t, err)
		assert.Equal(t, "alice", decode(t, resp).User)
		assert.Equal(t, 1, logs.FilterMessageSnippet("HTTP mode").Len())
	})

	t.Run("suppressed warning is silent", func(t *testing.T) {
		logger, logs := testutil.ObservedLogger(zapcore.WarnLevel)
		cfg := testutil.ServiceConfig(t, srv)
		cfg.SuppressWarnings = []httpservice.WarningCategory{httpservice.WarningInsecureAuth}

		svc, err := httpservice.New(cfg, httpservice.WithLogger(logger))
		require.NoError(t, err)
		t.Cleanup(svc.Close)

		resp, err := svc.Get(context.Background(), "posts", auth)
		require.NoError(t, err)
		assert.Equal(t, "alice", decode(t, resp).User)
		assert.Equal(t, 0, logs.Len())
	})
}

func TestServiceLogsRequestConstruction(t *testing.T) {
	srv := newEchoServer(t)
	logger, logs := testutil.ObservedLogger(zapcore.DebugLevel)
	svc := testutil.NewService(t, srv, httpservice.WithLogger(logger))

	_, err := svc.Get(context.Background(), "posts",
		httpservice.WithParams(map[string]string{"a": "1"}),
		httpservice.WithAuth(httpservice.BearerAuth{Token: "secret-token"}),
	)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("prepping request").Len())
	assert.Equal(t, 1, logs.FilterMessage("request url").Len())
	assert.Equal(t, 1, logs.FilterMessage("adding params").Len())
	assert.Equal(t, 0, logs.FilterMessage("adding headers").Len())
	for _, entry := range logs.All() {
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, "secret-token")
		}
	}

	_, err = svc.Get(context.Background(), "/broken")
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
	failures []string
}

func (o *recordingObserver) ObserveRequest(_ string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) ObserveFailure(_ string, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, reason)
}

func TestServiceObserver(t *testing.T) {
	srv := newEchoServer(t)
	obs := &recordingObserver{}
	svc := testutil.NewService(t, srv, httpservice.WithObserver(obs))
	ctx := context.Background()

	_, _ = svc.Get(ctx, "posts")
	_, _ = svc.Get(ctx, "/unauthorized")
	_, _ = svc.Get(ctx, "/broken")

	assert.Equal(t, []int{200, 401, 500}, obs.statuses)
	assert.Equal(t, []string{httpservice.ReasonUnauthorized, httpservice.ReasonRequestFailed}, obs.failures)
}

func TestServiceRateLimit(t *testing.T) {
	srv := newEchoServer(t)
	cfg := testutil.ServiceConfig(t, srv)
	cfg.RateLimit = 1

	svc, err := httpservice.New(cfg)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "posts")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = svc.Get(ctx, "posts")
	require.Error(t, err)
	assert.Equal(t, uint64(1), svc.RequestCount())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RESTKIT_HOST", "api.example.com")
	t.Setenv("RESTKIT_PORT", "8443")
	t.Setenv("RESTKIT_SSL_VERIFY", "false")
	t.Setenv("RESTKIT_PROXIES", "https=http://proxy.internal:3128, all=http://fallback:8080")
	t.Setenv("RESTKIT_SUPPRESS_WARNINGS", "insecure-request,insecure-auth")
	t.Setenv("RESTKIT_TIMEOUT", "5s")

	cfg, err := httpservice.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "api.example.com", cfg.Host)
	assert.Equal(t, 8443, cfg.Port)
	assert.True(t, cfg.UseHTTPS)
	assert.False(t, cfg.VerifyTLS)
	assert.Equal(t, "http://proxy.internal:3128", cfg.Proxies["https"])
	assert.Equal(t, "http://fallback:8080", cfg.Proxies["all"])
	assert.True(t, cfg.Suppresses(httpservice.WarningInsecureRequest))
	assert.True(t, cfg.Suppresses(httpservice.WarningInsecureAuth))
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "restkit/1.0", cfg.UserAgent)
}
