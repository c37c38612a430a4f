package rank

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Ranking methods reported in results.
const (
	MethodEmpty   = "empty"
	MethodLexical = "lexical-fallback"
	MethodOllama  = "edge-ollama-embedding"
	MethodOpenAI  = "openai-embedding"
)

// Item is one scored candidate. Index is the position in the input list.
type Item struct {
	Index int     `json:"index"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Result carries the ranked items plus how the scores were produced. Warning
// is set when the semantic strategy was skipped or failed.
type Result struct {
	Method  string `json:"method"`
	Model   string `json:"model,omitempty"`
	Warning string `json:"warning,omitempty"`
	Ranked  []Item `json:"ranked"`
}

// Ranker scores candidate texts against a query. The semantic strategy calls
// an embedding endpoint per text and ranks by cosine similarity; any failure
// there discards partial results and degrades to the deterministic lexical
// scorer.
type Ranker struct {
	// Model is the embedding model name.
	Model string
	// Endpoint is the base URL of an Ollama-style embedding server.
	Endpoint string
	// Timeout bounds each individual embedding call.
	Timeout time.Duration
	// HTTPClient is optional; a default client is used when nil.
	HTTPClient *http.Client

	// OpenAIBaseURL switches the semantic strategy to an OpenAI-compatible
	// embeddings API when non-empty.
	OpenAIBaseURL string
	OpenAIAPIKey  string

	// Serverless skips the semantic strategy entirely unless ForceEdge is
	// set: constrained runtimes have no reachable local embedding server.
	Serverless bool
	ForceEdge  bool
}

const defaultTimeout = 5 * time.Second

// Rank scores candidates against query and returns at most max(1, topK)
// items, sorted by descending score. Ties keep input order.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []string, topK int) Result {
	q := strings.TrimSpace(query)
	items := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if t := strings.TrimSpace(c); t != "" {
			items = append(items, t)
		}
	}
	if q == "" || len(items) == 0 {
		return Result{Method: MethodEmpty, Ranked: []Item{}}
	}
	if topK < 1 {
		topK = 1
	}

	if r.Serverless && !r.ForceEdge {
		return lexicalResult(q, items, topK, "edge_disabled_serverless")
	}

	res, err := r.rankSemantic(ctx, q, items, topK)
	if err != nil {
		log.Warn().Err(err).Msg("semantic ranking failed, using lexical fallback")
		return lexicalResult(q, items, topK, err.Error())
	}
	return res
}

func (r *Ranker) rankSemantic(ctx context.Context, q string, items []string, topK int) (Result, error) {
	embed := r.embedder()
	qVec, err := embed(ctx, q)
	if err != nil {
		return Result{}, err
	}
	ranked := make([]Item, 0, len(items))
	// One call at a time, in candidate order, so peak load on the embedding
	// server stays at one in-flight request.
	for i, text := range items {
		vec, err := embed(ctx, text)
		if err != nil {
			return Result{}, err
		}
		ranked = append(ranked, Item{Index: i, Text: text, Score: cosine(qVec, vec)})
	}
	sortAndTruncate(&ranked, topK)

	method := MethodOllama
	if strings.TrimSpace(r.OpenAIBaseURL) != "" {
		method = MethodOpenAI
	}
	return Result{Method: method, Model: r.Model, Ranked: ranked}, nil
}

func lexicalResult(q string, items []string, topK int, warning string) Result {
	ranked := make([]Item, 0, len(items))
	for i, text := range items {
		ranked = append(ranked, Item{Index: i, Text: text, Score: TermFrequencyScore(q, text)})
	}
	sortAndTruncate(&ranked, topK)
	return Result{Method: MethodLexical, Warning: warning, Ranked: ranked}
}

func sortAndTruncate(ranked *[]Item, topK int) {
	sort.SliceStable(*ranked, func(i, j int) bool { return (*ranked)[i].Score > (*ranked)[j].Score })
	if len(*ranked) > topK {
		*ranked = (*ranked)[:topK]
	}
}

// cosine computes cosine similarity over the shared prefix of a and b. A
// zero-norm vector scores 0.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na <= 0 || nb <= 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (r *Ranker) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return http.DefaultClient
}

func (r *Ranker) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return defaultTimeout
}
