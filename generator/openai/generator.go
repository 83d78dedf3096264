package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/ragchat/generator"
	"github.com/w-h-a/ragchat/internal/errs"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	op           = "generator.openai.Generate"
	defaultModel = openai.GPT4oMini
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, history []generator.Message, prompt string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)

	if len(g.options.SystemPrompt) > 0 {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: g.options.SystemPrompt,
		})
	}

	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == generator.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       g.options.Model,
		Messages:    msgs,
		MaxTokens:   g.options.MaxTokens,
		Temperature: float32(g.options.Temperature),
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", upstream(err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errs.Malformed(op, "no text content in response from OpenAI", nil)
	}

	return rsp.Choices[0].Message.Content, nil
}

func upstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.From(op, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return errs.Upstream(op, apiErr.HTTPStatusCode, fmt.Sprintf("%d - %s", apiErr.HTTPStatusCode, apiErr.Message), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return errs.Upstream(op, reqErr.HTTPStatusCode, fmt.Sprintf("%d - %v", reqErr.HTTPStatusCode, reqErr.Err), err)
	}

	return errs.Upstream(op, 0, fmt.Sprintf("openai request failed: %v", err), err)
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &openAIGenerator{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)

	if len(options.Location) > 0 {
		config.BaseURL = options.Location
	}

	if options.Client != nil {
		config.HTTPClient = options.Client
	} else {
		config.HTTPClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	g.client = openai.NewClientWithConfig(config)

	return g
}
