package cookie

import "net/http"

// Options are the attributes written with every cookie.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option overrides one attribute, either as a manager default or per call.
type Option func(*Options)

func WithPath(path string) Option { return func(o *Options) { o.Path = path } }

func WithDomain(domain string) Option { return func(o *Options) { o.Domain = domain } }

// WithMaxAge sets the lifetime in seconds. Zero makes a browser-session cookie.
func WithMaxAge(seconds int) Option { return func(o *Options) { o.MaxAge = seconds } }

func WithSecure(secure bool) Option { return func(o *Options) { o.Secure = secure } }

func WithSameSite(mode http.SameSite) Option { return func(o *Options) { o.SameSite = mode } }

func applyOptions(base Options, opts []Option) Options {
	o := base
	for _, apply := range opts {
		if apply != nil {
			apply(&o)
		}
	}
	return o
}
