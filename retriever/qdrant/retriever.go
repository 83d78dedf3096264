package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/w-h-a/ragchat/internal/errs"
	"github.com/w-h-a/ragchat/retriever"
	getsafe "github.com/w-h-a/ragchat/util/get_safe"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	op                = "retriever.qdrant.Match"
	defaultCollection = "documents"
)

type qdrantRetriever struct {
	options    retriever.Options
	collection string
	client     *http.Client
}

func (r *qdrantRetriever) Match(ctx context.Context, vector []float32, opts ...retriever.MatchOption) ([]retriever.Document, error) {
	options := retriever.NewMatchOptions(opts...)

	if options.Count < 1 {
		return []retriever.Document{}, nil
	}

	req := searchRequest{
		Vector:         vector,
		Limit:          options.Count,
		ScoreThreshold: options.Threshold,
		WithPayload:    true,
	}

	var rsp qdrantEnvelope[[]scoredPoint]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(r.collection))

	if err := r.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	if len(rsp.Status.Error) > 0 {
		return nil, errs.Upstream(op, 0, rsp.Status.Error, nil)
	}

	docs := make([]retriever.Document, 0, len(rsp.Result))

	for i, point := range rsp.Result {
		doc, err := toRow(point).Document()
		if err != nil {
			return nil, errs.Malformed(op, fmt.Sprintf("qdrant point %d: %v", i, err), err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func toRow(point scoredPoint) retriever.Row {
	row := retriever.Row{Similarity: point.Score}

	if source, ok := getsafe.String(point.Payload, "source"); ok {
		row.Source = &source
	}

	if content, ok := getsafe.String(point.Payload, "content"); ok {
		row.Content = &content
	}

	return row
}

func (r *qdrantRetriever) do(ctx context.Context, method string, path string, req any, rsp any) error {
	if len(r.options.Location) == 0 {
		return errs.Upstream(op, 0, "qdrant location is not configured", nil)
	}

	u := strings.TrimRight(r.options.Location, "/") + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return errs.Internal(op, "failed to encode qdrant request", err)
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return errs.Upstream(op, 0, fmt.Sprintf("invalid qdrant location: %v", err), err)
	}

	request.Header.Set("Content-Type", "application/json")

	if len(r.options.ApiKey) > 0 {
		request.Header.Set("api-key", r.options.ApiKey)
		request.Header.Set("Authorization", "Bearer "+r.options.ApiKey)
	}

	response, err := r.client.Do(request)
	if err != nil {
		return errs.Upstream(op, 0, fmt.Sprintf("qdrant request failed: %v", err), err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return errs.Upstream(op, response.StatusCode, fmt.Sprintf("failed to read qdrant response: %v", err), err)
	}

	if response.StatusCode >= 400 {
		var env qdrantEnvelope[json.RawMessage]
		if err := json.Unmarshal(payload, &env); err == nil && len(env.Status.Error) > 0 {
			return errs.Upstream(op, response.StatusCode, env.Status.Error, nil)
		}
		return errs.Upstream(op, response.StatusCode, fmt.Sprintf("qdrant http %d: %s", response.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	if rsp != nil {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return errs.Malformed(op, fmt.Sprintf("qdrant returned invalid json: %v", err), err)
		}
	}

	return nil
}

func NewRetriever(opts ...retriever.Option) retriever.Retriever {
	options := retriever.NewOptions(opts...)

	r := &qdrantRetriever{
		options:    options,
		collection: defaultCollection,
	}

	if name, ok := CollectionFrom(options.Context); ok && len(name) > 0 {
		r.collection = name
	}

	client := options.Client
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	r.client = client

	return r
}
