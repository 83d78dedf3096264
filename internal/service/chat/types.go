package chat

import (
	"github.com/w-h-a/ragchat/generator"
)

type Message struct {
	Id      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Answer struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type EmbeddingStats struct {
	Length           int       `json:"length"`
	First10Values    []float32 `json:"first10Values"`
	ProcessingTimeMs *float64  `json:"processingTimeMs,omitempty"`
}

type DocumentPreview struct {
	Similarity     float64 `json:"similarity"`
	Source         string  `json:"source"`
	ContentPreview string  `json:"contentPreview"`
}

type Diagnosis struct {
	Success   bool              `json:"success"`
	Embedding EmbeddingStats    `json:"embedding"`
	Documents []DocumentPreview `json:"documents"`
}

func toHistory(msgs []Message) []generator.Message {
	history := make([]generator.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, generator.Message{Role: m.Role, Content: m.Content})
	}
	return history
}
