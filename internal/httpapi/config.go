package httpapi

import "sync"

const defaultMaxBodyBytes = 64 << 10

// Options tunes the status API. Zero values select defaults.
type Options struct {
	// MaxBodyBytes caps JSON request bodies. Selection requests are tiny.
	MaxBodyBytes int64
	// AccessLog overrides the default access log level (off|error|info|debug).
	AccessLog string
	CORS      CORS
}

// CORS is opt-in: without Enabled no CORS middleware is mounted.
type CORS struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

var (
	optMu sync.RWMutex
	opts  = Options{MaxBodyBytes: defaultMaxBodyBytes}
)

// Configure replaces the package options. Muxes built afterwards use them.
func Configure(o Options) {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	o.CORS.AllowedOrigins = append([]string(nil), o.CORS.AllowedOrigins...)
	o.CORS.AllowedMethods = append([]string(nil), o.CORS.AllowedMethods...)
	o.CORS.AllowedHeaders = append([]string(nil), o.CORS.AllowedHeaders...)
	if o.AccessLog != "" {
		SetDefaultLogLevel(o.AccessLog)
	}
	optMu.Lock()
	opts = o
	optMu.Unlock()
}

func currentOptions() Options {
	optMu.RLock()
	defer optMu.RUnlock()
	return opts
}
