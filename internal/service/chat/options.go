package chat

import (
	"time"

	"github.com/w-h-a/ragchat/retriever"
)

const (
	DefaultDebugCount      = 2
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultBackend         = "Vector search"
	previewLength          = 100
	statsLength            = 10
)

type Option func(*Options)

type Options struct {
	Threshold  float64
	Count      int
	DebugCount int
	Timeout    time.Duration
	Backend    string
}

func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

func WithCount(count int) Option {
	return func(o *Options) {
		o.Count = count
	}
}

func WithDebugCount(count int) Option {
	return func(o *Options) {
		o.DebugCount = count
	}
}

// WithTimeout bounds each upstream call. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithBackend names the retrieval backend in diagnostic errors.
func WithBackend(name string) Option {
	return func(o *Options) {
		o.Backend = name
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Threshold:  retriever.DefaultThreshold,
		Count:      retriever.DefaultCount,
		DebugCount: DefaultDebugCount,
		Timeout:    DefaultUpstreamTimeout,
		Backend:    DefaultBackend,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
