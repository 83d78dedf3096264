package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/w-h-a/ragchat/server"
)

type httpServer struct {
	options  server.Options
	srv      *http.Server
	listener net.Listener
	done     chan error
	mtx      sync.RWMutex
}

func (s *httpServer) Options() server.Options {
	return s.options
}

func (s *httpServer) Start() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.listener != nil {
		return errors.New("http server already started")
	}

	l, err := net.Listen("tcp", s.options.Address)
	if err != nil {
		return err
	}

	s.listener = l

	slog.Info("http server listening", "name", s.options.Name, "address", l.Addr().String())

	go func() {
		err := s.srv.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
		close(s.done)
	}()

	return nil
}

func (s *httpServer) Stop(ctx context.Context) error {
	s.mtx.RLock()
	started := s.listener != nil
	s.mtx.RUnlock()

	if !started {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.options.ShutdownTimeout)
	defer cancel()

	slog.InfoContext(ctx, "http server shutting down", "name", s.options.Name)

	return s.srv.Shutdown(ctx)
}

func (s *httpServer) Done() <-chan error {
	return s.done
}

func (s *httpServer) Addr() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.listener == nil {
		return s.options.Address
	}

	return s.listener.Addr().String()
}

func NewServer(opts ...server.Option) server.Server {
	options := server.NewOptions(opts...)

	handler, ok := HandlerFrom(options.Context)
	if !ok || handler == nil {
		handler = http.NotFoundHandler()
	}

	if ms, ok := MiddlewareFrom(options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	s := &httpServer{
		options: options,
		srv: &http.Server{
			Addr:              options.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		done: make(chan error, 1),
		mtx:  sync.RWMutex{},
	}

	return s
}
