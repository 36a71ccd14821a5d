package httpservice

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the environment prefix used by LoadConfig.
const EnvPrefix = "RESTKIT"

// WarningCategory names a class of advisory warning that a Service may emit.
type WarningCategory string

const (
	// WarningInsecureRequest is emitted for every HTTPS request sent while
	// TLS certificate verification is disabled.
	WarningInsecureRequest WarningCategory = "insecure-request"
	// WarningInsecureAuth covers the transport's own advisories, such as
	// sending basic auth over plain HTTP.
	WarningInsecureAuth WarningCategory = "insecure-auth"
)

// Proxies maps a scheme ("http", "https"), a "scheme://host" pair or "all"
// to a proxy URL.
type Proxies map[string]string

// Decode parses "key=url" pairs separated by commas, as found in
// RESTKIT_PROXIES.
func (p *Proxies) Decode(value string) error {
	out := Proxies{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, proxy, ok := strings.Cut(pair, "=")
		if !ok || key == "" || proxy == "" {
			return fmt.Errorf("invalid proxy entry %q, want key=url", pair)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(proxy)
	}
	*p = out
	return nil
}

// Config holds the static session configuration of a Service.
type Config struct {
	Host             string            `envconfig:"HOST"`
	Port             int               `envconfig:"PORT"`
	UseHTTPS         bool              `envconfig:"USE_HTTPS" default:"true"`
	VerifyTLS        bool              `envconfig:"SSL_VERIFY" default:"true"`
	Proxies          Proxies           `envconfig:"PROXIES"`
	SuppressWarnings []WarningCategory `envconfig:"SUPPRESS_WARNINGS"`

	// Timeout is passed to the transport; zero leaves requests unbounded.
	Timeout time.Duration `envconfig:"TIMEOUT"`
	// RateLimit caps requests per second; zero means unlimited.
	RateLimit float64 `envconfig:"RATE_LIMIT_RPS"`
	UserAgent string  `envconfig:"USER_AGENT" default:"restkit/1.0"`
}

// DefaultConfig returns a configuration for host using HTTPS with
// certificate verification enabled.
func DefaultConfig(host string) Config {
	return Config{
		Host:      host,
		UseHTTPS:  true,
		VerifyTLS: true,
		UserAgent: "restkit/1.0",
	}
}

// LoadConfig reads a Config from RESTKIT_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load service config: %w", err)
	}
	return cfg, nil
}

// Suppresses reports whether warnings of category w are disabled.
func (c Config) Suppresses(w WarningCategory) bool {
	return slices.Contains(c.SuppressWarnings, w)
}

func (c Config) clone() Config {
	out := c
	out.Proxies = maps.Clone(c.Proxies)
	out.SuppressWarnings = slices.Clone(c.SuppressWarnings)
	return out
}
