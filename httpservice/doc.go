// Package httpservice is a thin session layer over go-resty/resty.
//
// A Service is bound to one host and owns one resty client:
//   - URL building: relative URIs ("posts", "/posts") resolve to
//     scheme://host[:port]/posts; full URLs for the same host pass through
//   - Request assembly: only the options a caller supplies end up on the
//     request, each one reported at debug level
//   - Validation: 401 fails with ErrUnauthorized, any other status >= 400
//     with ErrRequestFailed, both rooted at ErrHTTPClient
//   - Counting: RequestCount reports completed round trips
//
// Session settings (proxies, TLS verification, warning suppression) are
// applied once in New and are private to that Service.
//
// Example Usage:
//
//	svc, err := httpservice.New(httpservice.DefaultConfig("api.example.com"),
//		httpservice.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	resp, err := svc.Get(ctx, "posts", httpservice.WithParams(map[string]string{"userId": "1"}))
//	if httpservice.IsUnauthorized(err) {
//		// re-authenticate
//	}
package httpservice
