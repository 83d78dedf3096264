package supabase

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	op              = "retriever.supabase.Match"
	defaultFunction = "match_documents"
)

type supabaseRetriever struct {
	options  retriever.Options
	function string
	client   *http.Client
}

type matchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

// postgrestError is the body PostgREST sends for failed RPC calls.
type postgrestError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (r *supabaseRetriever) Match(ctx context.Context, vector []float32, opts ...retriever.MatchOption) ([]retriever.Document, error) {
	options := retriever.NewMatchOptions(opts...)

	if len(r.options.Location) == 0 {
		return nil, errs.Upstream(op, 0, "supabase url is not configured", nil)
	}

	bs, err := json.Marshal(matchRequest{
		QueryEmbedding: vector,
		MatchThreshold: options.Threshold,
		MatchCount:     options.Count,
	})
	if err != nil {
		return nil, errs.Internal(op, "failed to encode match request", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/rest/v1/rpc/%s", strings.TrimRight(r.options.Location, "/"), url.PathEscape(r.function)),
		bytes.NewReader(bs),
	)
	if err != nil {
		return nil, errs.Upstream(op, 0, fmt.Sprintf("invalid supabase url: %v", err), err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if len(r.options.ApiKey) > 0 {
		req.Header.Set("apikey", r.options.ApiKey)
		req.Header.Set("Authorization", "Bearer "+r.options.ApiKey)
	}

	rsp, err := r.client.Do(req)
	if err != nil {
		return nil, errs.Upstream(op, 0, fmt.Sprintf("supabase request failed: %v", err), err)
	}
	defer rsp.Body.Close()

	payload, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, errs.Upstream(op, rsp.StatusCode, fmt.Sprintf("failed to read supabase response: %v", err), err)
	}

	if rsp.StatusCode >= 300 {
		return nil, errs.Upstream(op, rsp.StatusCode, backendMessage(rsp.StatusCode, payload), nil)
	}

	var rows []retriever.Row
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, errs.Malformed(op, fmt.Sprintf("match_documents did not return a list of rows: %v", err), err)
	}

	docs := make([]retriever.Document, 0, len(rows))

	for i, row := range rows {
		doc, err := row.Document()
		if err != nil {
			return nil, errs.Malformed(op, fmt.Sprintf("match_documents row %d: %v", i, err), err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func backendMessage(status int, payload []byte) string {
	var pgErr postgrestError
	if err := json.Unmarshal(payload, &pgErr); err == nil && len(pgErr.Message) > 0 {
		return pgErr.Message
	}

	body := strings.TrimSpace(string(payload))
	if len(body) == 0 {
		return fmt.Sprintf("supabase returned status %d", status)
	}

	return fmt.Sprintf("%d - %s", status, body)
}

func NewRetriever(opts ...retriever.Option) retriever.Retriever {
	options := retriever.NewOptions(opts...)

	r := &supabaseRetriever{
		options:  options,
		function: defaultFunction,
	}

	if fn, ok := FunctionFrom(options.Context); ok && len(fn) > 0 {
		r.function = fn
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
