package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/internal/errs"
)

func newServer(t *testing.T, status int, body string, inspect func(r *http.Request)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestEmbed(t *testing.T) {
	t.Run("Posts the text and parses the vector", func(t *testing.T) {
		var received map[string]string
		var contentType string

		srv := newServer(t, http.StatusOK, `{"embedding":[0.1,0.2,0.3],"processing_time_ms":12.5}`, func(r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		})

		e := NewEmbedder(embedder.WithLocation(srv.URL))

		emb, err := e.Embed(context.Background(), "What is ADPAC?")

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"text": "What is ADPAC?"}, received)
		assert.Equal(t, "application/json", contentType)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, emb.Values)
		require.NotNil(t, emb.ProcessingTimeMs)
		assert.Equal(t, 12.5, *emb.ProcessingTimeMs)
	})

	t.Run("Processing time is optional", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"embedding":[1,2]}`, nil)

		emb, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(context.Background(), "q")

		require.NoError(t, err)
		assert.Equal(t, 2, emb.Len())
		assert.Nil(t, emb.ProcessingTimeMs)
	})

	t.Run("Sends the api key as a bearer token", func(t *testing.T) {
		var auth string
		srv := newServer(t, http.StatusOK, `{"embedding":[1]}`, func(r *http.Request) {
			auth = r.Header.Get("Authorization")
		})

		_, err := NewEmbedder(
			embedder.WithLocation(srv.URL),
			embedder.WithApiKey("secret"),
		).Embed(context.Background(), "q")

		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", auth)
	})
}

func TestEmbedFailures(t *testing.T) {
	t.Run("Non-2xx is an upstream error with status and body", func(t *testing.T) {
		srv := newServer(t, http.StatusServiceUnavailable, `model is loading`, nil)

		_, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(context.Background(), "q")

		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindUpstream))
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "model is loading")

		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, http.StatusServiceUnavailable, e.Status)
	})

	t.Run("Missing embedding is malformed", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"processing_time_ms":3}`, nil)

		_, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(context.Background(), "q")

		assert.True(t, errs.Is(err, errs.KindMalformedResponse))
	})

	t.Run("Null embedding is malformed", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"embedding":null}`, nil)

		_, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(context.Background(), "q")

		assert.True(t, errs.Is(err, errs.KindMalformedResponse))
	})

	t.Run("Non-numeric embedding is malformed", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"embedding":[0.1,"x"]}`, nil)

		_, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(context.Background(), "q")

		assert.True(t, errs.Is(err, errs.KindMalformedResponse))
	})

	t.Run("Non-JSON body is malformed", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `<html>`, nil)

		_, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(context.Background(), "q")

		assert.True(t, errs.Is(err, errs.KindMalformedResponse))
	})

	t.Run("Missing url fails at call time", func(t *testing.T) {
		_, err := NewEmbedder().Embed(context.Background(), "q")

		assert.True(t, errs.Is(err, errs.KindUpstream))
	})

	t.Run("Deadline cancels the call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewEmbedder(embedder.WithLocation(srv.URL)).Embed(ctx, "q")

		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindUpstream))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
