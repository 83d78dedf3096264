package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/server"
)

func TestNewLogger(t *testing.T) {
	t.Run("Json records carry the request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, "info", "json")

		ctx := server.ContextWithRequestId(context.Background(), "req-1")
		logger.InfoContext(ctx, "Processing query", "query", "What is ADPAC?")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "req-1", record["request_id"])
		assert.Equal(t, "What is ADPAC?", record["query"])
	})

	t.Run("Level is honored", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, "warn", "json")

		logger.Info("hidden")

		assert.Empty(t, buf.String())
		assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
	})

	t.Run("Pretty format is the default", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(&buf, "info", "pretty")

		logger.InfoContext(server.ContextWithRequestId(context.Background(), "req-2"), "Found documents", "count", 2)

		assert.Contains(t, buf.String(), "Found documents")
		assert.Contains(t, buf.String(), `"request_id":"req-2"`)
	})
}

func TestProviders(t *testing.T) {
	t.Run("Defaults build the http embedder, supabase retriever and anthropic generator", func(t *testing.T) {
		cfg.Embedder = "http"
		cfg.Retriever = "supabase"
		cfg.Generator = "anthropic"
		cfg.MaxTokens = 1000
		cfg.Temperature = 0.7

		assert.NotNil(t, newEmbedder())
		assert.NotNil(t, newRetriever())
		assert.NotNil(t, newGenerator())
	})

	t.Run("Memory retriever without a seed is empty", func(t *testing.T) {
		cfg.Retriever = "memory"
		cfg.MemorySeed = ""

		assert.NotNil(t, newRetriever())
	})
}

func TestBackendName(t *testing.T) {
	tests := []struct {
		retriever string
		want      string
	}{
		{"supabase", "Supabase"},
		{"postgres", "Postgres"},
		{"qdrant", "Qdrant"},
		{"memory", "Vector search"},
	}

	for _, tt := range tests {
		t.Run(tt.retriever, func(t *testing.T) {
			cfg.Retriever = tt.retriever

			assert.Equal(t, tt.want, backendName())
		})
	}
}
