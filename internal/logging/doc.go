// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Output goes to stderr by default so command output on stdout stays clean.
// Loggers are named "restkit"; services add their own name below it.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	defer logger.Sync()
//	svc, err := httpservice.New(cfg, httpservice.WithLogger(logger.Logger))
package logging
