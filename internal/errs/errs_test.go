package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	t.Run("Upstream keeps status and cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Upstream("embed", http.StatusBadGateway, "502 - bad gateway", cause)

		assert.Equal(t, KindUpstream, err.Kind)
		assert.Equal(t, "embed", err.Op)
		assert.Equal(t, http.StatusBadGateway, err.Status)
		assert.Equal(t, "502 - bad gateway", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Malformed has no status", func(t *testing.T) {
		err := Malformed("embed", "missing embedding", nil)

		assert.Equal(t, KindMalformedResponse, err.Kind)
		assert.Zero(t, err.Status)
		assert.Nil(t, errors.Unwrap(err))
	})

	t.Run("Every error carries a stack", func(t *testing.T) {
		err := Validation("decode", "query must not be empty")

		assert.Contains(t, err.Stack(), "errs.newError")
		assert.NotEmpty(t, Stack(fmt.Errorf("wrapped: %w", err)))
	})
}

func TestFrom(t *testing.T) {
	t.Run("Nil stays nil", func(t *testing.T) {
		assert.Nil(t, From("op", nil))
	})

	t.Run("Taxonomy errors pass through", func(t *testing.T) {
		original := Upstream("retrieve", 500, "boom", nil)
		wrapped := fmt.Errorf("context: %w", original)

		assert.Same(t, original, From("other", wrapped))
	})

	t.Run("Deadline becomes upstream", func(t *testing.T) {
		err := From("generate", context.DeadlineExceeded)

		assert.Equal(t, KindUpstream, err.Kind)
		assert.Contains(t, err.Error(), "timed out")
	})

	t.Run("Canceled becomes upstream", func(t *testing.T) {
		err := From("generate", context.Canceled)

		assert.Equal(t, KindUpstream, err.Kind)
	})

	t.Run("Unknown faults become internal", func(t *testing.T) {
		err := From("generate", errors.New("nil map write"))

		assert.Equal(t, KindInternal, err.Kind)
		assert.Equal(t, "nil map write", err.Error())
	})
}

func TestAnnotate(t *testing.T) {
	original := Upstream("retrieve", 503, "relation does not exist", nil)

	annotated := Annotate(original, "failed to retrieve relevant documents")

	require.NotNil(t, annotated)
	assert.Equal(t, "failed to retrieve relevant documents: relation does not exist", annotated.Error())
	assert.Equal(t, KindUpstream, annotated.Kind)
	assert.Equal(t, 503, annotated.Status)
	assert.Equal(t, "relation does not exist", original.Error(), "original must not be mutated")
	assert.Nil(t, Annotate(nil, "prefix"))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusCode(Validation("op", "bad")))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(Upstream("op", 404, "missing", nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(Malformed("op", "shape", nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("plain")))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "UpstreamError", KindUpstream.String())
	assert.Equal(t, "MalformedResponseError", KindMalformedResponse.String())
	assert.Equal(t, "ValidationError", KindValidation.String())
	assert.Equal(t, "InternalError", KindInternal.String())
	assert.True(t, Is(Malformed("op", "x", nil), KindMalformedResponse))
	assert.False(t, Is(errors.New("x"), KindValidation))
}
