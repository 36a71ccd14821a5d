// Package main is a command line front end for httpservice.
//
// It sends one request to the configured host and prints the status line
// and body to stdout. The number of requests sent goes to stderr, followed
// by the collected Prometheus metrics when -metrics is set.
//
// Configuration:
//   - Environment variables (RESTKIT_*)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# GET with a query parameter
//	./restkit -host jsonplaceholder.typicode.com -param userId=1 posts
//
//	# POST a JSON body against a local server
//	./restkit -host localhost -port 8080 -http -X POST -json '{"title":"x"}' /posts
//
//	# Authenticated request
//	./restkit -host api.example.com -token "$TOKEN" me
//
//	# Development mode (colored logs, debug level)
//	./restkit -dev -metrics posts/1
//
// Exit status is 1 when the request fails or the server answers with a
// status of 400 or above; the error is printed to stderr. Bad flags exit 2.
package main
