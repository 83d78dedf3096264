package generator

import "context"

type Generator interface {
	Generate(ctx context.Context, history []Message, prompt string) (string, error)
}
