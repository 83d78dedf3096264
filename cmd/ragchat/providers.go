package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/w-h-a/ragchat/embedder"
	googleembedder "github.com/w-h-a/ragchat/embedder/google"
	httpembedder "github.com/w-h-a/ragchat/embedder/http"
	openaiembedder "github.com/w-h-a/ragchat/embedder/openai"
	"github.com/w-h-a/ragchat/generator"
	anthropicgenerator "github.com/w-h-a/ragchat/generator/anthropic"
	googlegenerator "github.com/w-h-a/ragchat/generator/google"
	openaigenerator "github.com/w-h-a/ragchat/generator/openai"
	"github.com/w-h-a/ragchat/internal/service/chat"
	"github.com/w-h-a/ragchat/retriever"
	memoryretriever "github.com/w-h-a/ragchat/retriever/memory"
	postgresretriever "github.com/w-h-a/ragchat/retriever/postgres"
	qdrantretriever "github.com/w-h-a/ragchat/retriever/qdrant"
	supabaseretriever "github.com/w-h-a/ragchat/retriever/supabase"
	"github.com/w-h-a/ragchat/server"
	prettylog "github.com/w-h-a/ragchat/util/pretty_log"
)

func newEmbedder() embedder.Embedder {
	opts := []embedder.Option{
		embedder.WithLocation(cfg.EmbeddingApiUrl),
		embedder.WithApiKey(cfg.EmbeddingApiKey),
		embedder.WithModel(cfg.EmbeddingModel),
	}

	switch cfg.Embedder {
	case "openai":
		return openaiembedder.NewEmbedder(opts...)
	case "google":
		return googleembedder.NewEmbedder(opts...)
	default:
		return httpembedder.NewEmbedder(opts...)
	}
}

func newRetriever() retriever.Retriever {
	switch cfg.Retriever {
	case "postgres":
		return postgresretriever.NewRetriever(
			retriever.WithLocation(cfg.PostgresLocation),
		)
	case "qdrant":
		return qdrantretriever.NewRetriever(
			retriever.WithLocation(cfg.QdrantLocation),
			retriever.WithApiKey(cfg.QdrantApiKey),
			qdrantretriever.WithCollection(cfg.QdrantCollection),
		)
	case "memory":
		r := memoryretriever.NewRetriever()
		if len(cfg.MemorySeed) > 0 {
			f, err := os.Open(cfg.MemorySeed)
			if err != nil {
				detail := "failed to open memory seed"
				slog.ErrorContext(context.Background(), detail, "error", err)
				panic(detail)
			}
			defer f.Close()

			n, err := r.Load(f)
			if err != nil {
				detail := "failed to load memory seed"
				slog.ErrorContext(context.Background(), detail, "error", err)
				panic(detail)
			}

			slog.Info("memory retriever seeded", "documents", n)
		}
		return r
	default:
		return supabaseretriever.NewRetriever(
			retriever.WithLocation(cfg.SupabaseUrl),
			retriever.WithApiKey(cfg.SupabaseKey),
			supabaseretriever.WithFunction(cfg.SupabaseFunction),
		)
	}
}

// backendName labels retrieval failures on the diagnostic route.
func backendName() string {
	switch cfg.Retriever {
	case "supabase":
		return "Supabase"
	case "postgres":
		return "Postgres"
	case "qdrant":
		return "Qdrant"
	default:
		return chat.DefaultBackend
	}
}

func newGenerator() generator.Generator {
	opts := []generator.Option{
		generator.WithApiKey(cfg.GeneratorApiKey),
		generator.WithLocation(cfg.GeneratorApiUrl),
		generator.WithModel(cfg.Model),
		generator.WithMaxTokens(cfg.MaxTokens),
		generator.WithTemperature(cfg.Temperature),
	}

	if len(cfg.SystemPrompt) > 0 {
		opts = append(opts, generator.WithSystemPrompt(cfg.SystemPrompt))
	}

	switch cfg.Generator {
	case "openai":
		return openaigenerator.NewGenerator(opts...)
	case "google":
		return googlegenerator.NewGenerator(opts...)
	default:
		return anthropicgenerator.NewGenerator(opts...)
	}
}

func newLogger(out io.Writer, level string, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := slog.HandlerOptions{Level: lvl}

	if format == "json" {
		return slog.New(&requestIdHandler{Handler: slog.NewJSONHandler(out, &opts)})
	}

	return slog.New(prettylog.NewPrettyHandler(out, prettylog.PrettyHandlerOptions{
		SlogOpts:     opts,
		ContextAttrs: requestIdAttrs,
	}))
}

func requestIdAttrs(ctx context.Context) []slog.Attr {
	if id, ok := server.RequestIdFrom(ctx); ok {
		return []slog.Attr{slog.String("request_id", id)}
	}
	return nil
}

// requestIdHandler adds the request id to records of the json handler.
type requestIdHandler struct {
	slog.Handler
}

func (h *requestIdHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(requestIdAttrs(ctx)...)
	return h.Handler.Handle(ctx, r)
}

func (h *requestIdHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestIdHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *requestIdHandler) WithGroup(name string) slog.Handler {
	return &requestIdHandler{Handler: h.Handler.WithGroup(name)}
}
