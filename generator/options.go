package generator

import (
	"context"
	"net/http"
)

const (
	DefaultMaxTokens    = 1000
	DefaultTemperature  = 0.7
	DefaultSystemPrompt = "You are a helpful assistant that answers questions based on the provided context. If the answer cannot be found in the context, say so clearly. Always cite your sources."
)

type Option func(*Options)

type Options struct {
	ApiKey       string
	Model        string
	Location     string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Client       *http.Client
	Context      context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithLocation overrides the provider's base URL.
func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = t
	}
}

func WithClient(client *http.Client) Option {
	return func(o *Options) {
		o.Client = client
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		SystemPrompt: DefaultSystemPrompt,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  DefaultTemperature,
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
