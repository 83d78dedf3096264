package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages(t *testing.T) {
	h := NewHandler()

	t.Run("Index serves the chat page", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Dental AI Assistant")
		assert.Contains(t, rec.Body.String(), "/static/app.js")
	})

	t.Run("Debug serves the diagnostics page", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.Debug(rec, httptest.NewRequest(http.MethodGet, "/debug", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "RAG Chatbot Debug")
		assert.Contains(t, rec.Body.String(), "/static/debug.js")
	})
}

func TestStatic(t *testing.T) {
	h := NewHandler().Static()

	t.Run("Script posts the transcript and has the apology text", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/chat")
		assert.Contains(t, rec.Body.String(), "Sorry, there was an error processing your request. Please try again.")
	})

	t.Run("Stylesheet is served", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	})

	t.Run("Unknown asset is a 404", func(t *testing.T) {
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
