package httpservice

import "github.com/go-resty/resty/v2"

// Authenticator attaches credentials to an outgoing request.
type Authenticator interface {
	Apply(r *resty.Request)
	// Kind names the scheme for logging; it must not reveal secrets.
	Kind() string
}

// BasicAuth sends HTTP basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

func (a BasicAuth) Apply(r *resty.Request) { r.SetBasicAuth(a.Username, a.Password) }
func (a BasicAuth) Kind() string           { return "basic" }

// BearerAuth sends an Authorization: Bearer token.
type BearerAuth struct {
	Token string
}

func (a BearerAuth) Apply(r *resty.Request) { r.SetAuthToken(a.Token) }
func (a BearerAuth) Kind() string           { return "bearer" }

// HeaderAuth sets a raw Authorization header value.
type HeaderAuth struct {
	Value string
}

func (a HeaderAuth) Apply(r *resty.Request) { r.SetHeader("Authorization", a.Value) }
func (a HeaderAuth) Kind() string           { return "custom" }
