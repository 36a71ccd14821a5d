package httpservice

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

// newTransport returns a pooled transport with the session's TLS and proxy
// settings applied. Retries are left to the caller.
func newTransport(cfg Config) (*http.Transport, error) {
	proxies, err := parseProxies(cfg.Proxies)
	if err != nil {
		return nil, err
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	transport, ok := retryClient.HTTPClient.Transport.(*http.Transport)
	if !ok {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !cfg.VerifyTLS, // #nosec G402 -- opt-in via Config.VerifyTLS
	}
	transport.Proxy = proxyFunc(proxies)
	return transport, nil
}

func parseProxies(raw map[string]string) (map[string]*url.URL, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]*url.URL, len(raw))
	for key, value := range raw {
		u, err := url.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy for %q: %w", key, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy for %q: %s is not an absolute URL", key, value)
		}
		out[key] = u
	}
	return out, nil
}

// proxyFunc picks the most specific configured proxy for a request, trying
// "scheme://host", "scheme", "all://host" and "all" in that order. Requests
// with no match fall back to the environment (HTTP_PROXY, NO_PROXY, ...).
func proxyFunc(proxies map[string]*url.URL) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		scheme, host := req.URL.Scheme, req.URL.Hostname()
		for _, key := range []string{scheme + "://" + host, scheme, "all://" + host, "all"} {
			if p, ok := proxies[key]; ok {
				return p, nil
			}
		}
		return http.ProxyFromEnvironment(req)
	}
}
