package rank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	errEdgeTimeout    = errors.New("edge_timeout")
	errEmptyEmbedding = errors.New("edge_empty_embedding")
)

type embedFunc func(ctx context.Context, text string) ([]float64, error)

func (r *Ranker) embedder() embedFunc {
	if strings.TrimSpace(r.OpenAIBaseURL) != "" {
		e := newOpenAIEmbedder(r.OpenAIBaseURL, r.OpenAIAPIKey, r.httpClient())
		return func(ctx context.Context, text string) ([]float64, error) {
			ctx, cancel := context.WithTimeout(ctx, r.timeout())
			defer cancel()
			return e.Embed(ctx, r.Model, text)
		}
	}
	return r.embedOllama
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// embedOllama requests one embedding vector from an Ollama-style
// POST /api/embeddings endpoint, bounded by the per-call timeout.
func (r *Ranker) embedOllama(ctx context.Context, text string) ([]float64, error) {
	endpoint := strings.TrimRight(r.Endpoint, "/") + "/api/embeddings"
	payload, err := json.Marshal(ollamaEmbeddingRequest{Model: r.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("new embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient().Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, errEdgeTimeout
		}
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("edge_http_%d", resp.StatusCode)
	}
	var er ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(er.Embedding) == 0 {
		return nil, errEmptyEmbedding
	}
	return er.Embedding, nil
}
