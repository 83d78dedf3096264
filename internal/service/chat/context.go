package chat

import (
	"fmt"
	"strings"

	"github.com/w-h-a/ragchat/retriever"
)

const promptTemplate = `I need information about: %s

Context information:
%s

Please answer based on this context information. If you can't find the answer in the context, just say you don't have enough information.`

// AssembleContext renders each document as a "Source: " line followed by its
// content, separated by blank lines, in the order given.
func AssembleContext(docs []retriever.Document) string {
	blocks := make([]string, 0, len(docs))

	for _, doc := range docs {
		blocks = append(blocks, "Source: "+doc.Source+"\n"+doc.Content)
	}

	return strings.Join(blocks, "\n\n")
}

func BuildPrompt(query string, context string) string {
	return fmt.Sprintf(promptTemplate, query, context)
}

// Preview is the first n runes of content followed by "...".
func Preview(content string, n int) string {
	runes := []rune(content)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + "..."
}
