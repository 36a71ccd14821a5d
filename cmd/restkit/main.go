package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GriffinCanCode/restkit/httpclient"
	"github.com/GriffinCanCode/restkit/httpservice"
	"github.com/GriffinCanCode/restkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/restkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/restkit/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// pairs collects repeated key=value flags.
type pairs map[string]string

func (p pairs) String() string { return fmt.Sprint(map[string]string(p)) }

func (p pairs) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || key == "" {
		return fmt.Errorf("want key=value, got %q", v)
	}
	p[key] = value
	return nil
}

func main() {
	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one request and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.LoadOrDefault()

	// Parse flags
	fs := flag.NewFlagSet("restkit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	host := fs.String("host", cfg.Service.Host, "Target host")
	port := fs.Int("port", cfg.Service.Port, "Target port (0 for the scheme default)")
	plain := fs.Bool("http", !cfg.Service.UseHTTPS, "Use plain HTTP instead of HTTPS")
	insecure := fs.Bool("insecure", !cfg.Service.VerifyTLS, "Skip TLS certificate verification")
	timeout := fs.Duration("timeout", cfg.Service.Timeout, "Request timeout")
	method := fs.String("X", http.MethodGet, "Request method: GET, POST, PUT or DELETE")
	jsonBody := fs.String("json", "", "JSON request body")
	data := fs.String("data", "", "Raw request body, takes precedence over -json")
	token := fs.String("token", "", "Bearer token sent with the request")
	dev := fs.Bool("dev", cfg.Logging.Development, "Development logging (console, debug level)")
	metrics := fs.Bool("metrics", cfg.Metrics.Enabled, "Dump request metrics to stderr when done")
	params, headers := pairs{}, pairs{}
	fs.Var(params, "param", "Query parameter key=value (repeatable)")
	fs.Var(headers, "header", "Header key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: restkit [flags] <uri>")
		fs.PrintDefaults()
		return 2
	}
	if *jsonBody != "" && !json.Valid([]byte(*jsonBody)) {
		fmt.Fprintln(stderr, "error: -json body is not valid JSON")
		return 2
	}

	cfg.Service.Host = *host
	cfg.Service.Port = *port
	cfg.Service.UseHTTPS = !*plain
	cfg.Service.VerifyTLS = !*insecure
	cfg.Service.Timeout = *timeout

	var logger *logging.Logger
	if *dev {
		logger = logging.NewDevelopment()
	} else {
		l, err := logging.New(cfg.Logging)
		if err != nil {
			fmt.Fprintf(stderr, "error: failed to create logger: %v\n", err)
			return 1
		}
		logger = l
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	collector := monitoring.NewMetrics(reg)
	svc, err := httpservice.New(cfg.Service,
		httpservice.WithLogger(logger.Logger),
		httpservice.WithObserver(collector),
	)
	if err != nil {
		logger.Error("Failed to create service", zap.Error(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer svc.Close()
	client := httpclient.NewWithService(svc, httpclient.Options{Logger: logger.Logger})
	if *token != "" {
		client.SetBearerToken(*token)
	}

	opts := []httpservice.RequestOption{}
	if len(params) > 0 {
		opts = append(opts, httpservice.WithParams(map[string]string(params)))
	}
	if len(headers) > 0 {
		opts = append(opts, httpservice.WithHeaders(headers))
	}
	if *jsonBody != "" {
		opts = append(opts, httpservice.WithJSON(json.RawMessage(*jsonBody)))
	}
	if *data != "" {
		opts = append(opts, httpservice.WithData(*data))
	}

	start := time.Now()
	runErr := httpclient.Use(ctx, client, func(c *httpclient.Base) error {
		d, err := c.Service().Assemble(strings.ToUpper(*method), c.Service().BuildURL(fs.Arg(0)), opts...)
		if err != nil {
			return err
		}
		resp, err := c.Service().Do(ctx, d)
		if resp != nil {
			fmt.Fprintf(stdout, "%s %s\n", resp.Proto(), resp.Status())
			fmt.Fprintln(stdout, string(resp.Body()))
		}
		return err
	})

	snap := collector.Snapshot()
	fmt.Fprintf(stderr, "requests sent: %d (%d failed) in %s\n",
		svc.RequestCount(), snap.TotalFailures, time.Since(start).Round(time.Millisecond))
	if *metrics {
		if err := monitoring.WriteText(stderr, reg); err != nil {
			logger.Error("Failed to write metrics", zap.Error(err))
		}
	}

	if runErr != nil {
		if se, ok := httpservice.AsStatusError(runErr); ok && errors.Is(runErr, httpservice.ErrUnauthorized) {
			logger.Error("Authentication failed", zap.Int("status", se.StatusCode))
		} else {
			logger.Error("Request failed", zap.Error(runErr))
		}
		fmt.Fprintf(stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}
