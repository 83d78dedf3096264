package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/ragchat/internal/handler"
	chathandler "github.com/w-h-a/ragchat/internal/handler/chat"
	"github.com/w-h-a/ragchat/internal/handler/ui"
	"github.com/w-h-a/ragchat/internal/service/chat"
	"github.com/w-h-a/ragchat/server"
	httpserver "github.com/w-h-a/ragchat/server/http"
)

var (
	cfg struct {
		// Server config
		Address string `help:"Address to listen on" env:"ADDRESS" default:":3000"`

		// Embedder config
		Embedder        string `help:"Embedding provider" enum:"http,openai,google" env:"EMBEDDER" default:"http"`
		EmbeddingApiUrl string `help:"URL of the embedding endpoint (or base URL for openai/google)" env:"EMBEDDING_API_URL" default:""`
		EmbeddingApiKey string `help:"API key for the embedding provider" env:"EMBEDDING_API_KEY" default:""`
		EmbeddingModel  string `help:"Model identifier for openai/google embeddings" env:"EMBEDDING_MODEL" default:""`

		// Retriever config
		Retriever        string `help:"Vector search backend" enum:"supabase,postgres,qdrant,memory" env:"RETRIEVER" default:"supabase"`
		SupabaseUrl      string `help:"Supabase project URL" env:"SUPABASE_URL" default:""`
		SupabaseKey      string `help:"Supabase anon key" env:"SUPABASE_ANON_KEY" default:""`
		SupabaseFunction string `help:"Name of the similarity search RPC" env:"SUPABASE_FUNCTION" default:"match_documents"`
		PostgresLocation string `help:"Postgres DSN exposing match_documents" env:"DATABASE_URL" default:""`
		QdrantLocation   string `help:"Qdrant REST address" env:"QDRANT_LOCATION" default:""`
		QdrantCollection string `help:"Qdrant collection to search" env:"QDRANT_COLLECTION" default:"documents"`
		QdrantApiKey     string `help:"Qdrant API key" env:"QDRANT_API_KEY" default:""`
		MemorySeed       string `help:"JSON file of {source, content, embedding} documents for the memory retriever" env:"MEMORY_SEED" default:""`

		// Generator config
		Generator       string  `help:"Language model provider" enum:"anthropic,openai,google" env:"GENERATOR" default:"anthropic"`
		GeneratorApiKey string  `help:"API key for the language model" env:"ANTHROPIC_API_KEY" default:""`
		GeneratorApiUrl string  `help:"Optional base URL override for the language model API" env:"GENERATOR_API_URL" default:""`
		Model           string  `help:"Model identifier (provider default when empty)" env:"MODEL" default:""`
		MaxTokens       int     `help:"Maximum tokens in the answer" env:"MAX_TOKENS" default:"1000"`
		Temperature     float64 `help:"Sampling temperature" env:"TEMPERATURE" default:"0.7"`
		SystemPrompt    string  `help:"System instruction sent with every request" env:"SYSTEM_PROMPT" default:""`

		// Pipeline config
		MatchThreshold  float64       `help:"Minimum similarity for retrieved documents" env:"MATCH_THRESHOLD" default:"0.5"`
		MatchCount      int           `help:"Documents retrieved for /api/chat" env:"MATCH_COUNT" default:"3"`
		DebugMatchCount int           `help:"Documents retrieved for /api/chat-debug" env:"DEBUG_MATCH_COUNT" default:"2"`
		UpstreamTimeout time.Duration `help:"Timeout for each upstream call" env:"UPSTREAM_TIMEOUT" default:"30s"`

		// Logging config
		LogLevel  string `help:"Log level" enum:"debug,info,warn,error" env:"LOG_LEVEL" default:"info"`
		LogFormat string `help:"Log format" enum:"pretty,json" env:"LOG_FORMAT" default:"pretty"`
	}
)

func main() {
	// Load .env before parsing so env bindings see it
	_ = godotenv.Load()

	// Parse inputs
	_ = kong.Parse(&cfg, kong.Name("ragchat"), kong.Description("Retrieval-augmented chat server."))

	slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create clients
	e := newEmbedder()
	r := newRetriever()
	g := newGenerator()

	// Create chat service
	svc := chat.New(
		e,
		r,
		g,
		chat.WithThreshold(cfg.MatchThreshold),
		chat.WithCount(cfg.MatchCount),
		chat.WithDebugCount(cfg.DebugMatchCount),
		chat.WithTimeout(cfg.UpstreamTimeout),
		chat.WithBackend(backendName()),
	)

	// Create server
	router := handler.NewRouter(
		chathandler.NewHandler(svc),
		ui.NewHandler(),
	)

	srv := httpserver.NewServer(
		server.WithName("ragchat"),
		server.WithAddress(cfg.Address),
		httpserver.WithHandler(router),
		httpserver.WithMiddleware(
			httpserver.Recover,
			httpserver.RequestId,
			httpserver.Tracing("ragchat"),
			httpserver.Logging,
		),
	)

	if err := srv.Start(); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	slog.Info("ragchat ready",
		"address", srv.Addr(),
		"embedder", cfg.Embedder,
		"retriever", cfg.Retriever,
		"generator", cfg.Generator,
	)

	select {
	case <-ctx.Done():
	case err := <-srv.Done():
		if err != nil {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := srv.Stop(context.Background()); err != nil {
		slog.Error("failed to stop server", "error", err)
		os.Exit(1)
	}

	slog.Info("ragchat stopped")
}
