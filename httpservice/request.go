package httpservice

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/go-querystring/query"
	"go.uber.org/zap"
)

// ErrInvalidRequest is returned by Assemble for request options that cannot
// be combined into a request. Nothing is sent when it occurs.
var ErrInvalidRequest = errors.New("invalid request")

// File is a multipart attachment. Reader takes priority over Path.
type File struct {
	Param    string
	FileName string
	Reader   io.Reader
	Path     string
}

// ResponseHook runs on every dispatched response before validation.
type ResponseHook func(resp *resty.Response) error

// Descriptor is an assembled request prior to dispatch. Fields the caller
// did not supply are left nil.
type Descriptor struct {
	Method  string
	URL     string
	Params  url.Values
	Headers map[string]string
	// JSON is nil whenever Data or Files is set; see Assemble.
	JSON    any
	Data    any
	Files   []File
	Cookies []*http.Cookie
	Auth    Authenticator
	Hooks   []ResponseHook
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	params  any
	headers map[string]string
	json    any
	data    any
	files   []File
	cookies map[string]string
	auth    Authenticator
	hooks   []ResponseHook
}

// WithParams sets query parameters. p may be a map[string]string,
// url.Values, or a struct tagged for github.com/google/go-querystring.
func WithParams(p any) RequestOption {
	return func(o *requestOptions) { o.params = p }
}

// WithHeaders sets request headers.
func WithHeaders(h map[string]string) RequestOption {
	return func(o *requestOptions) { o.headers = h }
}

// WithJSON sets a body that is encoded as JSON.
func WithJSON(v any) RequestOption {
	return func(o *requestOptions) { o.json = v }
}

// WithData sets a raw or form body. Maps and url.Values are form encoded;
// string, []byte and io.Reader are sent as is.
func WithData(v any) RequestOption {
	return func(o *requestOptions) { o.data = v }
}

// WithFiles attaches multipart files.
func WithFiles(files ...File) RequestOption {
	return func(o *requestOptions) { o.files = append(o.files, files...) }
}

// WithCookies adds cookies to the request.
func WithCookies(c map[string]string) RequestOption {
	return func(o *requestOptions) { o.cookies = c }
}

// WithAuth attaches credentials.
func WithAuth(a Authenticator) RequestOption {
	return func(o *requestOptions) { o.auth = a }
}

// WithHooks registers response hooks for this request.
func WithHooks(hooks ...ResponseHook) RequestOption {
	return func(o *requestOptions) { o.hooks = append(o.hooks, hooks...) }
}

// Assemble builds a Descriptor for method and an already resolved URL.
//
// A Data body takes precedence over a JSON body: when both are given, or when
// files are attached, the JSON body is dropped. Data sent alongside files must
// be form shaped.
func (s *Service) Assemble(method, rawURL string, opts ...RequestOption) (*Descriptor, error) {
	var o requestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	d := &Descriptor{Method: method, URL: rawURL}

	if !isEmpty(o.params) {
		params, err := encodeParams(o.params)
		if err != nil {
			return nil, fmt.Errorf("%w: encode params: %v", ErrInvalidRequest, err)
		}
		if len(params) > 0 {
			s.logger.Debug("adding params", zap.Any("params", params))
			d.Params = params
		}
	}

	if len(o.headers) > 0 {
		s.logger.Debug("adding headers", zap.Any("headers", o.headers))
		d.Headers = o.headers
	}

	if len(o.files) > 0 {
		s.logger.Debug("adding files payload", zap.Strings("files", fileNames(o.files)))
		d.Files = o.files
	}

	if !isEmpty(o.data) {
		data, err := normalizeData(o.data)
		if err != nil {
			return nil, err
		}
		if d.Files != nil && !isForm(data) {
			return nil, fmt.Errorf("%w: data sent with files must be form fields, got %T", ErrInvalidRequest, data)
		}
		s.logger.Debug("adding data payload", zap.Any("data", describeData(data)))
		d.Data = data
	}

	if !isEmpty(o.json) {
		if d.Data != nil || d.Files != nil {
			s.logger.Debug("dropping JSON payload, data body takes precedence")
		} else {
			s.logger.Debug("adding JSON payload", zap.Any("json", o.json))
			d.JSON = o.json
		}
	}

	if o.auth != nil {
		s.logger.Debug("adding auth", zap.String("kind", o.auth.Kind()))
		d.Auth = o.auth
	}

	if len(o.cookies) > 0 {
		s.logger.Debug("adding cookies", zap.Strings("names", sortedKeys(o.cookies)))
		d.Cookies = toCookies(o.cookies)
	}

	if len(o.hooks) > 0 {
		s.logger.Debug("adding hooks", zap.Int("count", len(o.hooks)))
		d.Hooks = o.hooks
	}

	return d, nil
}

// apply copies the populated fields of d onto r.
func (d *Descriptor) apply(r *resty.Request) {
	if d.Params != nil {
		r.SetQueryParamsFromValues(d.Params)
	}
	if d.Headers != nil {
		r.SetHeaders(d.Headers)
	}
	for _, f := range d.Files {
		if f.Reader != nil {
			r.SetFileReader(f.Param, f.FileName, f.Reader)
		} else {
			r.SetFile(f.Param, f.Path)
		}
	}
	switch data := d.Data.(type) {
	case nil:
	case map[string]string:
		r.SetFormData(data)
	case url.Values:
		r.SetFormDataFromValues(data)
	default:
		r.SetBody(data)
	}
	if d.JSON != nil {
		if r.Header.Get("Content-Type") == "" {
			r.SetHeader("Content-Type", "application/json")
		}
		r.SetBody(d.JSON)
	}
	if d.Auth != nil {
		d.Auth.Apply(r)
	}
	if d.Cookies != nil {
		r.SetCookies(d.Cookies)
	}
}

func encodeParams(p any) (url.Values, error) {
	switch v := p.(type) {
	case url.Values:
		return v, nil
	case map[string][]string:
		return url.Values(v), nil
	case map[string]string:
		out := make(url.Values, len(v))
		for k, val := range v {
			out.Set(k, val)
		}
		return out, nil
	default:
		return query.Values(p)
	}
}

func normalizeData(data any) (any, error) {
	switch v := data.(type) {
	case map[string]string, url.Values, string, []byte, io.Reader:
		return v, nil
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = fmt.Sprint(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported data type %T", ErrInvalidRequest, data)
	}
}

func isForm(data any) bool {
	switch data.(type) {
	case map[string]string, url.Values:
		return true
	}
	return false
}

// describeData keeps raw bodies out of the log.
func describeData(data any) any {
	switch v := data.(type) {
	case string:
		return fmt.Sprintf("<%d bytes>", len(v))
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(v))
	case io.Reader:
		return "<stream>"
	}
	return data
}

// isEmpty mirrors truthiness of optional arguments: nil, nil pointers and
// empty maps, slices or strings all count as not supplied.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toCookies(m map[string]string) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(m))
	for _, name := range sortedKeys(m) {
		out = append(out, &http.Cookie{Name: name, Value: m[name]})
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func fileNames(files []File) []string {
	names := make([]string, 0, len(files))
	for _, f := range files {
		name := f.FileName
		if name == "" {
			name = f.Path
		}
		names = append(names, strings.TrimSpace(f.Param+"="+name))
	}
	return names
}
