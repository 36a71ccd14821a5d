// Package config provides 12-factor configuration management for restkit.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables.
//
// Configuration Sections:
//   - Service: target host, scheme, TLS verification, proxies, timeouts
//   - Logging: Log level, output format and destinations
//   - Metrics: whether to dump collected metrics after a run
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	svc, err := httpservice.New(cfg.Service)
//
// Environment Variables:
//   - RESTKIT_HOST, RESTKIT_PORT, RESTKIT_USE_HTTPS, RESTKIT_SSL_VERIFY
//   - RESTKIT_PROXIES, RESTKIT_SUPPRESS_WARNINGS, RESTKIT_TIMEOUT
//   - RESTKIT_RATE_LIMIT_RPS, RESTKIT_USER_AGENT
//   - RESTKIT_LOG_LEVEL, RESTKIT_LOG_DEVELOPMENT, RESTKIT_LOG_OUTPUT_PATHS
//   - RESTKIT_METRICS_ENABLED
package config
