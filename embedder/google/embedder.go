package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/internal/errs"
	"google.golang.org/api/googleapi"
	genaiopt "google.golang.org/api/option"
)

const (
	op           = "embedder.google.Embed"
	defaultModel = "text-embedding-004"
)

type googleEmbedder struct {
	options embedder.Options
	client  *genai.Client
}

func (e *googleEmbedder) Embed(ctx context.Context, text string) (embedder.Embedding, error) {
	start := time.Now()

	model := e.client.EmbeddingModel(e.options.Model)
	rsp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return embedder.Embedding{}, upstream(err)
	}

	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return embedder.Embedding{}, errs.Malformed(op, "no embedding in response from Google", nil)
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000

	return embedder.Embedding{
		Values:           rsp.Embedding.Values,
		ProcessingTimeMs: &elapsed,
	}, nil
}

func upstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.From(op, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return errs.Upstream(op, apiErr.Code, fmt.Sprintf("embedding request failed: %v", err), err)
	}

	return errs.Upstream(op, 0, fmt.Sprintf("embedding request failed: %v", err), err)
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &googleEmbedder{
		options: options,
	}

	clientOpts := []genaiopt.ClientOption{
		genaiopt.WithAPIKey(options.ApiKey),
	}

	if len(options.Location) > 0 {
		clientOpts = append(clientOpts, genaiopt.WithEndpoint(options.Location))
	}

	if options.Client != nil {
		clientOpts = append(clientOpts, genaiopt.WithHTTPClient(options.Client))
	}

	client, err := genai.NewClient(context.Background(), clientOpts...)
	if err != nil {
		detail := "failed to initialize google embedder"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	e.client = client

	return e
}
