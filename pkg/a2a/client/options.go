package client

import "time"

// Options configures a Client.
type Options struct {
	// Path is the RPC endpoint path on the remote agent, mirroring
	// server.Options.Path. Defaults to "/".
	Path string

	// Timeout bounds each unary Call and ResolveAgentCard round trip.
	// Defaults to 30s; zero means resty's own default. Stream does not
	// apply it: a stream runs until the server closes it or its ctx is
	// canceled.
	Timeout time.Duration
}

// Option mutates Options during New.
type Option func(*Options)

// WithPath overrides the RPC endpoint path. Defaults to "/".
func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithTimeout bounds every unary request this Client issues; Stream is not
// affected.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}
