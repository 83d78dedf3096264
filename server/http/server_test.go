package http

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/ragchat/server"
)

func TestServer(t *testing.T) {
	t.Run("Serves through middleware in order and stops", func(t *testing.T) {
		var order []string

		tag := func(name string) func(http.Handler) http.Handler {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		s := NewServer(
			server.WithName("test"),
			server.WithAddress("127.0.0.1:0"),
			WithHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "ok")
			})),
			WithMiddleware(tag("outer"), tag("inner")),
		)

		require.NoError(t, s.Start())
		assert.Error(t, s.Start(), "second start")

		rsp, err := http.Get("http://" + s.Addr() + "/")
		require.NoError(t, err)
		body, _ := io.ReadAll(rsp.Body)
		rsp.Body.Close()

		assert.Equal(t, "ok", string(body))
		assert.Equal(t, []string{"outer", "inner"}, order)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		require.NoError(t, s.Stop(ctx))

		select {
		case err := <-s.Done():
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("server did not stop")
		}
	})

	t.Run("Stop before start is a no-op", func(t *testing.T) {
		s := NewServer()

		assert.NoError(t, s.Stop(context.Background()))
		assert.Equal(t, ":3000", s.Addr())
	})

	t.Run("Missing handler answers 404", func(t *testing.T) {
		s := NewServer(server.WithAddress("127.0.0.1:0"))
		require.NoError(t, s.Start())
		defer s.Stop(context.Background())

		rsp, err := http.Get("http://" + s.Addr() + "/")
		require.NoError(t, err)
		rsp.Body.Close()

		assert.Equal(t, http.StatusNotFound, rsp.StatusCode)
	})
}
