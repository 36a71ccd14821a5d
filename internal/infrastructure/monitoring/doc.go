/*
Package monitoring provides Prometheus metrics for outgoing requests.

# Overview

Metrics implements httpservice.Observer, so attaching it to a service
records every round trip and every failure.

# Metrics

- restkit_requests_total{method,status}
- restkit_request_duration_seconds{method}
- restkit_request_failures_total{method,reason}

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	svc, err := httpservice.New(cfg, httpservice.WithObserver(metrics))

	// later
	monitoring.WriteText(os.Stderr, reg)

Collectors are registered with the Registerer passed to NewMetrics rather
than the global default registry.
*/
package monitoring
