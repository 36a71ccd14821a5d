package httpservice

import (
	"strconv"
	"strings"
)

// BuildURL resolves uri against the configured host.
//
// A uri that already carries an http(s) scheme and mentions the configured
// host is returned unchanged. Anything else is treated as a path: leading
// slashes collapse to exactly one and the result is prefixed with
// scheme://host[:port].
func (s *Service) BuildURL(uri string) string {
	return buildURL(s.cfg.Host, s.cfg.Port, s.cfg.UseHTTPS, uri)
}

func buildURL(host string, port int, useHTTPS bool, uri string) string {
	if isAbsolute(uri) && strings.Contains(uri, host) {
		return uri
	}

	scheme := "http"
	if useHTTPS {
		scheme = "https"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	if port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(port))
	}
	b.WriteByte('/')
	b.WriteString(strings.TrimLeft(uri, "/"))
	return b.String()
}

func isAbsolute(uri string) bool {
	return strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}
