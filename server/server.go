package server

import "context"

type Server interface {
	Options() Options
	// Start listens in the background. It returns once the listener is bound.
	Start() error
	// Stop drains in-flight requests until ctx is done.
	Stop(ctx context.Context) error
	// Done is closed when the server stops serving, with the serve error if any.
	Done() <-chan error
	Addr() string
}
