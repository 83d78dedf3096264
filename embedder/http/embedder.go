package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/internal/errs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const op = "embedder.http.Embed"

type httpEmbedder struct {
	options embedder.Options
	client  *http.Client
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding        json.RawMessage `json:"embedding"`
	ProcessingTimeMs *float64        `json:"processing_time_ms"`
}

func (e *httpEmbedder) Embed(ctx context.Context, text string) (embedder.Embedding, error) {
	if len(e.options.Location) == 0 {
		return embedder.Embedding{}, errs.Upstream(op, 0, "embedding api url is not configured", nil)
	}

	bs, err := json.Marshal(embedRequest{Text: text})
	if err != nil {
		return embedder.Embedding{}, errs.Internal(op, "failed to encode embedding request", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		e.options.Location,
		bytes.NewReader(bs),
	)
	if err != nil {
		return embedder.Embedding{}, errs.Upstream(op, 0, fmt.Sprintf("invalid embedding api url: %v", err), err)
	}

	req.Header.Set("Content-Type", "application/json")

	if len(e.options.ApiKey) > 0 {
		req.Header.Set("Authorization", "Bearer "+e.options.ApiKey)
	}

	rsp, err := e.client.Do(req)
	if err != nil {
		return embedder.Embedding{}, errs.Upstream(op, 0, fmt.Sprintf("embedding request failed: %v", err), err)
	}
	defer rsp.Body.Close()

	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return embedder.Embedding{}, errs.Upstream(op, rsp.StatusCode, fmt.Sprintf("failed to read embedding response: %v", err), err)
	}

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return embedder.Embedding{}, errs.Upstream(
			op,
			rsp.StatusCode,
			fmt.Sprintf("%d - %s", rsp.StatusCode, strings.TrimSpace(string(payload))),
			nil,
		)
	}

	return decode(payload)
}

func decode(payload []byte) (embedder.Embedding, error) {
	var res embedResponse

	if err := json.Unmarshal(payload, &res); err != nil {
		return embedder.Embedding{}, errs.Malformed(op, fmt.Sprintf("invalid embedding response: %v", err), err)
	}

	raw := bytes.TrimSpace(res.Embedding)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return embedder.Embedding{}, errs.Malformed(op, "embedding response has no embedding field", nil)
	}

	var values []float32
	if err := json.Unmarshal(raw, &values); err != nil {
		return embedder.Embedding{}, errs.Malformed(op, "embedding field is not a list of numbers", err)
	}

	return embedder.Embedding{
		Values:           values,
		ProcessingTimeMs: res.ProcessingTimeMs,
	}, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	e := &httpEmbedder{
		options: options,
	}

	client := options.Client
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	e.client = client

	return e
}
