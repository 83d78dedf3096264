package retriever

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowDocument(t *testing.T) {
	t.Run("Complete row converts", func(t *testing.T) {
		var row Row
		require.NoError(t, json.Unmarshal([]byte(`{"similarity":0.91,"source":"glossary.pdf","content":"ADPAC is..."}`), &row))

		doc, err := row.Document()

		require.NoError(t, err)
		assert.Equal(t, Document{Similarity: 0.91, Source: "glossary.pdf", Content: "ADPAC is..."}, doc)
	})

	t.Run("Empty strings are present values", func(t *testing.T) {
		var row Row
		require.NoError(t, json.Unmarshal([]byte(`{"similarity":0,"source":"","content":""}`), &row))

		_, err := row.Document()

		assert.NoError(t, err)
	})

	for name, raw := range map[string]string{
		"similarity": `{"source":"a","content":"b"}`,
		"source":     `{"similarity":0.5,"source":null,"content":"b"}`,
		"content":    `{"similarity":0.5,"source":"a"}`,
	} {
		t.Run("Missing "+name+" is rejected", func(t *testing.T) {
			var row Row
			require.NoError(t, json.Unmarshal([]byte(raw), &row))

			_, err := row.Document()

			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestNewMatchOptions(t *testing.T) {
	defaults := NewMatchOptions()
	assert.Equal(t, 0.5, defaults.Threshold)
	assert.Equal(t, 3, defaults.Count)

	custom := NewMatchOptions(WithThreshold(0.7), WithCount(2))
	assert.Equal(t, 0.7, custom.Threshold)
	assert.Equal(t, 2, custom.Count)
}
