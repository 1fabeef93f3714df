package server

import (
	"time"

	"go-micro.dev/v5/logger"
)

// Options configures a Server, built up via the functional-options pattern
// the teacher's AgentOptions/AgentOption uses for its own Agent type.
type Options struct {
	Addr           string
	Path           string
	RequestTimeout time.Duration
	Logger         logger.Logger
}

// Option mutates Options during New.
type Option func(*Options)

// WithAddr sets the address gin listens on. Defaults to ":8080".
func WithAddr(addr string) Option {
	return func(o *Options) { o.Addr = addr }
}

// WithPath sets the RPC endpoint path the JSON-RPC dispatcher is mounted
// at. Defaults to "/".
func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithRequestTimeout bounds how long a unary RPC call may run before the
// context passed to the Task Manager is canceled. Defaults to 30s per
// section 5 of the spec.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) { o.RequestTimeout = d }
}

// WithLogger overrides the go-micro logger stored in Options.Logger. The
// Server's handlers do not write any log messages through it, neither for
// requests, responses, internal errors nor SSE connection lifecycle.
func WithLogger(l logger.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
