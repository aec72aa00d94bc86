package outreach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeOllama(t *testing.T, models []string, response string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		type m struct {
			Name string `json:"name"`
		}
		ms := make([]m, 0, len(models))
		for _, name := range models {
			ms = append(ms, m{Name: name})
		}
		json.NewEncoder(w).Encode(map[string]any{"models": ms})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var p generatePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.False(t, p.Stream)
		assert.NotEmpty(t, p.Model)
		assert.InDelta(t, 0.7, p.Options.Temperature, 0.001)
		json.NewEncoder(w).Encode(map[string]string{"response": response})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAvailable(t *testing.T) {
	srv := newFakeOllama(t, nil, "")
	c := NewClient(srv.URL, "")
	assert.True(t, c.Available(context.Background()))

	srv.Close()
	assert.False(t, c.Available(context.Background()))
}

func TestClientModels(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3:8b", "mistral:7b"}, "")
	c := NewClient(srv.URL, "")

	models, err := c.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3:8b", "mistral:7b"}, models)
}

func TestClientGenerate(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3:8b"}, "Subject: hi\n\nbody")
	c := NewClient(srv.URL, "")

	out, err := c.Generate(context.Background(), "llama3:8b", "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Subject: hi\n\nbody", out)
}

func TestClientGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Generate(context.Background(), "m", "", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestPickModel(t *testing.T) {
	tests := []struct {
		name       string
		models     []string
		configured string
		want       string
	}{
		{"configured present", []string{"mistral:7b", "llama3:8b"}, "llama3:8b", "llama3:8b"},
		{"preference order", []string{"qwen:4b", "llama3:8b"}, "", "llama3:8b"},
		{"mistral over first", []string{"tinyllama", "mistral:7b"}, "", "mistral:7b"},
		{"first as last resort", []string{"customnet"}, "", "customnet"},
		{"empty list", nil, "llama3", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickModel(tt.models, tt.configured))
		})
	}
}
