package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/ragchat/generator"
	"github.com/w-h-a/ragchat/internal/errs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	op           = "generator.anthropic.Generate"
	defaultModel = "claude-3-opus-20240229"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, history []generator.Message, prompt string) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(history)+1)

	for _, m := range history {
		switch m.Role {
		case generator.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.options.Model),
		MaxTokens:   int64(g.options.MaxTokens),
		Temperature: anthropic.Float(g.options.Temperature),
		Messages:    msgs,
	}

	if len(g.options.SystemPrompt) > 0 {
		req.System = []anthropic.TextBlockParam{{Text: g.options.SystemPrompt}}
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", upstream(err)
	}

	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			return text.Text, nil
		}
	}

	return "", errs.Malformed(op, "no text content in response from Anthropic", nil)
}

func upstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.From(op, err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return errs.Upstream(op, apiErr.StatusCode, apiErr.Error(), err)
	}

	return errs.Upstream(op, 0, fmt.Sprintf("anthropic request failed: %v", err), err)
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &anthropicGenerator{
		options: options,
	}

	httpClient := options.Client
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
		anthropicopt.WithHTTPClient(httpClient),
		anthropicopt.WithMaxRetries(0),
	}

	if len(options.Location) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.Location))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
