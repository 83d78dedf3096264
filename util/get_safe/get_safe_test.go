package getsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	payload := map[string]any{"source": "glossary.pdf", "page": 3, "empty": ""}

	s, ok := String(payload, "source")
	assert.True(t, ok)
	assert.Equal(t, "glossary.pdf", s)

	s, ok = String(payload, "empty")
	assert.True(t, ok)
	assert.Equal(t, "", s)

	_, ok = String(payload, "page")
	assert.False(t, ok)

	_, ok = String(payload, "missing")
	assert.False(t, ok)
}
