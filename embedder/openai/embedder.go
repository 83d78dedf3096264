package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/internal/errs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	op           = "embedder.openai.Embed"
	defaultModel = "text-embedding-3-small"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) (embedder.Embedding, error) {
	start := time.Now()

	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.options.Model),
	})
	if err != nil {
		return embedder.Embedding{}, upstream(err)
	}

	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return embedder.Embedding{}, errs.Malformed(op, "no embedding in response from OpenAI", nil)
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000

	return embedder.Embedding{
		Values:           rsp.Data[0].Embedding,
		ProcessingTimeMs: &elapsed,
	}, nil
}

func upstream(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return errs.Upstream(op, apiErr.HTTPStatusCode, fmt.Sprintf("%d - %s", apiErr.HTTPStatusCode, apiErr.Message), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return errs.Upstream(op, reqErr.HTTPStatusCode, fmt.Sprintf("%d - %v", reqErr.HTTPStatusCode, reqErr.Err), err)
	}

	return errs.Upstream(op, 0, fmt.Sprintf("embedding request failed: %v", err), err)
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &openAIEmbedder{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)

	if len(options.Location) > 0 {
		config.BaseURL = options.Location
	}

	if options.Client != nil {
		config.HTTPClient = options.Client
	} else {
		config.HTTPClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	e.client = openai.NewClientWithConfig(config)

	return e
}
