package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/generator"
	"github.com/w-h-a/ragchat/internal/errs"
	"github.com/w-h-a/ragchat/retriever"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/w-h-a/ragchat/internal/service/chat"

type Service struct {
	embedder  embedder.Embedder
	retriever retriever.Retriever
	generator generator.Generator
	options   Options
	tracer    trace.Tracer
}

// Respond answers the last user message of msgs using the documents that
// match it. Earlier messages are forwarded to the generator as history.
func (s *Service) Respond(ctx context.Context, msgs []Message) (Answer, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Respond")
	defer span.End()

	if err := ValidateMessages(msgs); err != nil {
		return Answer{}, s.fail(ctx, span, StageReceivingRequest, err)
	}

	query := msgs[len(msgs)-1].Content

	slog.InfoContext(ctx, "Processing query", "stage", StageReceivingRequest, "query", query)

	emb, err := s.embed(ctx, query)
	if err != nil {
		return Answer{}, s.fail(ctx, span, StageFetchingEmbedding, errs.Annotate(err, "Failed to get embedding"))
	}

	slog.InfoContext(ctx, "Embedding generated", "stage", StageFetchingEmbedding, "length", emb.Len())

	docs, err := s.match(ctx, emb.Values, s.options.Count)
	if err != nil {
		return Answer{}, s.fail(ctx, span, StageRetrievingDocuments, errs.Annotate(err, "Failed to retrieve relevant documents"))
	}

	if len(docs) > 0 {
		slog.InfoContext(ctx, "Found documents", "stage", StageRetrievingDocuments, "count", len(docs), "top_similarity", docs[0].Similarity)
	} else {
		slog.InfoContext(ctx, "No relevant documents found", "stage", StageRetrievingDocuments)
	}

	prompt := BuildPrompt(query, AssembleContext(docs))

	slog.DebugContext(ctx, "Context assembled", "stage", StageAssemblingContext, "documents", len(docs))

	slog.InfoContext(ctx, "Calling language model", "stage", StageGeneratingAnswer)

	answer, err := s.generate(ctx, toHistory(msgs[:len(msgs)-1]), prompt)
	if err != nil {
		return Answer{}, s.fail(ctx, span, StageGeneratingAnswer, errs.Annotate(err, "Failed to generate answer"))
	}

	slog.InfoContext(ctx, "Language model response received", "stage", StageRespondingSuccess)

	return Answer{Role: generator.RoleAssistant, Content: answer}, nil
}

// Diagnose runs the embedding and retrieval steps for query and reports what
// came back, without calling the generator.
func (s *Service) Diagnose(ctx context.Context, query string) (Diagnosis, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Diagnose")
	defer span.End()

	if len(strings.TrimSpace(query)) == 0 {
		return Diagnosis{}, s.fail(ctx, span, StageReceivingRequest, errs.Validation("chat.Diagnose", "query is required"))
	}

	slog.InfoContext(ctx, "Testing embedding API", "stage", StageReceivingRequest, "query", query)

	emb, err := s.embed(ctx, query)
	if err != nil {
		return Diagnosis{}, s.fail(ctx, span, StageFetchingEmbedding, errs.Annotate(err, "Embedding API error"))
	}

	attrs := []any{"stage", StageFetchingEmbedding, "length", emb.Len()}
	if emb.ProcessingTimeMs != nil {
		attrs = append(attrs, "processing_time_ms", *emb.ProcessingTimeMs)
	}
	slog.InfoContext(ctx, "Embedding API response", attrs...)

	docs, err := s.match(ctx, emb.Values, s.options.DebugCount)
	if err != nil {
		return Diagnosis{}, s.fail(ctx, span, StageRetrievingDocuments, errs.Annotate(err, s.options.Backend+" error"))
	}

	previews := make([]DocumentPreview, 0, len(docs))
	for _, doc := range docs {
		previews = append(previews, DocumentPreview{
			Similarity:     doc.Similarity,
			Source:         doc.Source,
			ContentPreview: Preview(doc.Content, previewLength),
		})
	}

	return Diagnosis{
		Success: true,
		Embedding: EmbeddingStats{
			Length:           emb.Len(),
			First10Values:    emb.Head(statsLength),
			ProcessingTimeMs: emb.ProcessingTimeMs,
		},
		Documents: previews,
	}, nil
}

func (s *Service) embed(ctx context.Context, query string) (embedder.Embedding, error) {
	ctx, span := s.tracer.Start(ctx, StageFetchingEmbedding.String())
	defer span.End()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return embedder.Embedding{}, errs.From("chat.embed", err)
	}

	span.SetAttributes(attribute.Int("embedding.length", emb.Len()))

	return emb, nil
}

func (s *Service) match(ctx context.Context, vector []float32, count int) ([]retriever.Document, error) {
	ctx, span := s.tracer.Start(ctx, StageRetrievingDocuments.String())
	defer span.End()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	docs, err := s.retriever.Match(
		ctx,
		vector,
		retriever.WithThreshold(s.options.Threshold),
		retriever.WithCount(count),
	)
	if err != nil {
		return nil, errs.From("chat.match", err)
	}

	span.SetAttributes(attribute.Int("documents.count", len(docs)))

	return docs, nil
}

func (s *Service) generate(ctx context.Context, history []generator.Message, prompt string) (string, error) {
	ctx, span := s.tracer.Start(ctx, StageGeneratingAnswer.String())
	defer span.End()

	ctx, cancel := s.bound(ctx)
	defer cancel()

	answer, err := s.generator.Generate(ctx, history, prompt)
	if err != nil {
		return "", errs.From("chat.generate", err)
	}

	return answer, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.options.Timeout)
}

func (s *Service) fail(ctx context.Context, span trace.Span, stage Stage, err *errs.Error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Message)
	span.SetAttributes(
		attribute.String("chat.stage", StageRespondingError.String()),
		attribute.String("chat.failed_stage", stage.String()),
	)

	if err.Kind == errs.KindValidation {
		slog.WarnContext(ctx, "Rejected request", "stage", StageRespondingError, "failed_stage", stage, "error", err.Message)
	} else {
		slog.ErrorContext(ctx, "Request failed", "stage", StageRespondingError, "failed_stage", stage, "kind", err.Kind.String(), "error", err.Message)
	}

	return err
}

// ValidateMessages checks a transcript before any external call is made.
func ValidateMessages(msgs []Message) *errs.Error {
	const op = "chat.ValidateMessages"

	if len(msgs) == 0 {
		return errs.Validation(op, "messages must contain at least one message")
	}

	for i, m := range msgs {
		if m.Role != generator.RoleUser && m.Role != generator.RoleAssistant {
			return errs.Validation(op, fmt.Sprintf("messages[%d].role must be %q or %q", i, generator.RoleUser, generator.RoleAssistant))
		}
		if len(strings.TrimSpace(m.Content)) == 0 {
			return errs.Validation(op, fmt.Sprintf("messages[%d].content is required", i))
		}
	}

	if msgs[len(msgs)-1].Role != generator.RoleUser {
		return errs.Validation(op, "the last message must come from the user")
	}

	return nil
}

func New(e embedder.Embedder, r retriever.Retriever, g generator.Generator, opts ...Option) *Service {
	return &Service{
		embedder:  e,
		retriever: r,
		generator: g,
		options:   NewOptions(opts...),
		tracer:    otel.Tracer(tracerName),
	}
}
