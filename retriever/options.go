package retriever

import (
	"context"
	"net/http"
)

const (
	DefaultThreshold = 0.5
	DefaultCount     = 3
)

type Option func(*Options)

type Options struct {
	Location string
	ApiKey   string
	Client   *http.Client
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type MatchOption func(*MatchOptions)

type MatchOptions struct {
	Threshold float64
	Count     int
	Context   context.Context
}

func WithThreshold(threshold float64) MatchOption {
	return func(o *MatchOptions) {
		o.Threshold = threshold
	}
}

func WithCount(count int) MatchOption {
	return func(o *MatchOptions) {
		o.Count = count
	}
}

func NewMatchOptions(opts ...MatchOption) MatchOptions {
	options := MatchOptions{
		Threshold: DefaultThreshold,
		Count:     DefaultCount,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
