package rank

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// openaiEmbedder adapts an OpenAI-compatible embeddings API to the embedFunc
// shape used by the semantic strategy.
type openaiEmbedder struct {
	inner *openai.Client
}

func newOpenAIEmbedder(baseURL, apiKey string, hc *http.Client) *openaiEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = hc
	return &openaiEmbedder{inner: openai.NewClientWithConfig(cfg)}
}

func (e *openaiEmbedder) Embed(ctx context.Context, model, text string) ([]float64, error) {
	resp, err := e.inner.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errEmptyEmbedding
	}
	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}
	return vec, nil
}
