package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/ragchat/generator"
	"github.com/w-h-a/ragchat/internal/errs"
	"google.golang.org/api/googleapi"
	genaiopt "google.golang.org/api/option"
)

const (
	op           = "generator.google.Generate"
	defaultModel = "gemini-1.5-flash"
)

// httpCoder is implemented by apierror.APIError.
type httpCoder interface {
	HTTPCode() int
}

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, history []generator.Message, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.options.Model)
	model.SetMaxOutputTokens(int32(g.options.MaxTokens))
	model.SetTemperature(float32(g.options.Temperature))

	if len(g.options.SystemPrompt) > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(g.options.SystemPrompt)}}
	}

	session := model.StartChat()

	for _, m := range history {
		role := "user"
		if m.Role == generator.RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	rsp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", upstream(err)
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", errs.Malformed(op, "no candidates in response from Google", nil)
	}

	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			return string(text), nil
		}
	}

	return "", errs.Malformed(op, "no text content in response from Google", nil)
}

func upstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.From(op, err)
	}

	status := 0

	var apiErr *googleapi.Error
	var coder httpCoder
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &coder):
		status = coder.HTTPCode()
	}

	return errs.Upstream(op, status, fmt.Sprintf("google request failed: %v", err), err)
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &googleGenerator{
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
		detail := "failed to initialize google generator"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	g.client = client

	return g
}
