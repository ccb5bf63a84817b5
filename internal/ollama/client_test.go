package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{Host: srv.URL, Model: "test-model"}, zap.NewNop())
}

func TestGenerate(t *testing.T) {
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(generateChunk{Response: "oscar 2024 winner", Done: true})
	})

	out, err := c.Generate(context.Background(), "some prompt")
	require.NoError(t, err)
	assert.Equal(t, "oscar 2024 winner", out)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, "some prompt", gotReq.Prompt)
	assert.False(t, gotReq.Stream)
}

func TestGenerateServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})

	_, err := c.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGenerateStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		for _, frag := range []string{"Oppen", "heimer", " won."} {
			fmt.Fprintf(w, "{\"response\":%q,\"done\":false}\n", frag)
		}
		fmt.Fprintln(w, `{"response":"","done":true}`)
	})

	var got []string
	err := c.GenerateStream(context.Background(), "prompt", func(frag string) {
		got = append(got, frag)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Oppen", "heimer", " won."}, got)
}

func TestGenerateStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"first","done":false}`)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		cancel()
		<-r.Context().Done()
	})

	err := c.GenerateStream(ctx, "prompt", func(string) {})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, c.Ping(context.Background()))
}

func TestPingUnreachable(t *testing.T) {
	c := NewClient(Config{Host: "http://127.0.0.1:1", Model: "m"}, zap.NewNop())
	assert.Error(t, c.Ping(context.Background()))
}

func TestHostNormalization(t *testing.T) {
	c := NewClient(Config{Host: "localhost:11434/", Model: "m"}, zap.NewNop())
	assert.Equal(t, "http://localhost:11434", c.host)
}
