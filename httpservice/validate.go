package httpservice

import (
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const maxErrorBody = 512

// Validate checks the status of resp. Responses below 400 are returned
// unchanged; 401 fails with ErrUnauthorized and every other error status
// with ErrRequestFailed.
func (s *Service) Validate(resp *resty.Response) (*resty.Response, error) {
	if err := validate(resp); err != nil {
		s.logger.Error("request validation failed", zap.Error(err))
		return resp, err
	}
	return resp, nil
}

func validate(resp *resty.Response) error {
	code := resp.StatusCode()
	if code < http.StatusBadRequest {
		return nil
	}

	kind := ErrRequestFailed
	if code == http.StatusUnauthorized {
		kind = ErrUnauthorized
	}

	se := &StatusError{
		Kind:       kind,
		StatusCode: code,
		Status:     resp.Status(),
		Body:       truncate(resp.String(), maxErrorBody),
	}
	if resp.Request != nil {
		se.Method = resp.Request.Method
		se.URL = resp.Request.URL
	}
	return se
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
