package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
)

func TestOllamaEmbedBatches(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := ollamaEmbedResponse{}
		for range req.Input {
			out.Embeddings = append(out.Embeddings, []float32{1, 0})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, srv.URL+"/")
	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "ollama/nomic-embed-text", e.Name())
}

func TestOllamaEmbedStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder("x", 0, srv.URL).Embed(context.Background(), []string{"a"})
	assert.True(t, apperr.IsProvider(err))
}

func TestOpenAIEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2]},{"object":"embedding","index":1,"embedding":[0.3,0.4]}],"model":"text-embedding-3-small","usage":{"prompt_tokens":4,"total_tokens":4}}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("key", "", srv.URL)
	vecs, err := e.Embed(context.Background(), []string{"contrato", "ata"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0.3, 0.4}, vecs[1])
	assert.Equal(t, 1536, e.Dimensions())
}

func TestNew(t *testing.T) {
	e, err := New("", "")
	require.NoError(t, err)
	assert.Nil(t, e)

	t.Setenv("OPENAI_API_KEY", "")
	_, err = New("openai", "text-embedding-3-small")
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))

	_, err = New("google", "x")
	assert.Error(t, err)

	e, err = New("ollama", "nomic-embed-text")
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestToChromemFunc(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{0.6, 0.8}}})
	}))
	defer srv.Close()

	fn := ToChromemFunc(NewOllamaEmbedder("x", 2, srv.URL))
	vec, err := fn(context.Background(), "texto")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, vec)
}

type emptyEmbedder struct{}

func (emptyEmbedder) Embed(context.Context, []string) ([][]float32, error) { return nil, nil }
func (emptyEmbedder) Dimensions() int { return 2 }
func (emptyEmbedder) Name() string { return "empty" }

func TestToChromemFuncRejectsEmptyResult(t *testing.T) {
	fn := ToChromemFunc(emptyEmbedder{})
	_, err := fn(context.Background(), "consulta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no vector")
}
