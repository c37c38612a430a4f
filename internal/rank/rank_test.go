package rank

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestRank_EmptyQueryOrCandidates(t *testing.T) {
	r := &Ranker{Serverless: true}
	res := r.Rank(context.Background(), "", []string{"some text"}, 3)
	if res.Method != MethodEmpty || len(res.Ranked) != 0 {
		t.Fatalf("expected empty method, got %+v", res)
	}
	res = r.Rank(context.Background(), "query", nil, 3)
	if res.Method != MethodEmpty || len(res.Ranked) != 0 {
		t.Fatalf("expected empty method, got %+v", res)
	}
	res = r.Rank(context.Background(), "query", []string{"  ", ""}, 3)
	if res.Method != MethodEmpty {
		t.Fatalf("blank candidates should rank as empty, got %q", res.Method)
	}
}

func TestRank_ServerlessSkipsSemantic(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	r := &Ranker{Model: "test-embed", Endpoint: srv.URL, Serverless: true}
	res := r.Rank(context.Background(), "fraud detection", []string{"fraud happens", "weather report"}, 2)
	if calls != 0 {
		t.Fatalf("semantic strategy must not be attempted in serverless mode")
	}
	if res.Method != MethodLexical {
		t.Fatalf("expected lexical fallback, got %q", res.Method)
	}
	if res.Warning == "" {
		t.Fatalf("expected a warning explaining why semantic scoring was skipped")
	}
	if res.Ranked[0].Text != "fraud happens" {
		t.Fatalf("unexpected top item: %+v", res.Ranked[0])
	}
}

func TestRank_LexicalDeterministic(t *testing.T) {
	r := &Ranker{Serverless: true}
	cands := []string{"alpha beta gamma", "beta beta beta", "unrelated words here"}
	first := r.Rank(context.Background(), "beta", cands, 3)
	second := r.Rank(context.Background(), "beta", cands, 3)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("lexical ranking is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestRank_LexicalStableOnTies(t *testing.T) {
	r := &Ranker{Serverless: true}
	// Neither candidate mentions the query: both score 0 and must keep
	// their input order.
	res := r.Rank(context.Background(), "zzz", []string{"first text here", "second text here"}, 2)
	if res.Ranked[0].Index != 0 || res.Ranked[1].Index != 1 {
		t.Fatalf("tie order not stable: %+v", res.Ranked)
	}
}

func TestRank_TruncatesToTopK(t *testing.T) {
	r := &Ranker{Serverless: true}
	cands := []string{"one fraud", "two fraud", "three fraud", "four fraud"}
	res := r.Rank(context.Background(), "fraud", cands, 2)
	if len(res.Ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Ranked))
	}
	// topK below 1 still yields one result
	res = r.Rank(context.Background(), "fraud", cands, 0)
	if len(res.Ranked) != 1 {
		t.Fatalf("expected 1 result for topK=0, got %d", len(res.Ranked))
	}
}

func newEmbedStub(t *testing.T, vectors map[string][]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		vec, ok := vectors[req.Prompt]
		if !ok {
			vec = []float64{0, 0}
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: vec})
	}))
}

func TestRank_SemanticOrdersByCosine(t *testing.T) {
	srv := newEmbedStub(t, map[string][]float64{
		"the query": {1, 0},
		"far text":  {0, 1},
		"near text": {1, 0.1},
	})
	defer srv.Close()

	r := &Ranker{Model: "test-embed", Endpoint: srv.URL, Timeout: 2 * time.Second}
	res := r.Rank(context.Background(), "the query", []string{"far text", "near text"}, 2)
	if res.Method != MethodOllama {
		t.Fatalf("expected %s, got %q (warning %q)", MethodOllama, res.Method, res.Warning)
	}
	if res.Model != "test-embed" {
		t.Fatalf("expected model on result, got %q", res.Model)
	}
	if res.Ranked[0].Text != "near text" {
		t.Fatalf("unexpected order: %+v", res.Ranked)
	}
	if res.Ranked[0].Index != 1 {
		t.Fatalf("original index not preserved: %+v", res.Ranked[0])
	}
}

func TestRank_SemanticFailureFallsBackWhole(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{1, 0}})
			return
		}
		// Third call fails: partial semantic scores must be discarded.
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := &Ranker{Model: "test-embed", Endpoint: srv.URL, Timeout: 2 * time.Second}
	cands := []string{"fraud text one", "fraud text two"}
	res := r.Rank(context.Background(), "fraud", cands, 2)
	if res.Method != MethodLexical {
		t.Fatalf("expected lexical fallback, got %q", res.Method)
	}
	if res.Warning == "" {
		t.Fatalf("expected warning describing the semantic failure")
	}
	if len(res.Ranked) != len(cands) {
		t.Fatalf("fallback should rank all candidates, got %d", len(res.Ranked))
	}
}

func TestRank_EmptyEmbeddingFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: nil})
	}))
	defer srv.Close()

	r := &Ranker{Model: "test-embed", Endpoint: srv.URL, Timeout: 2 * time.Second}
	res := r.Rank(context.Background(), "query words", []string{"candidate text"}, 1)
	if res.Method != MethodLexical || res.Warning != errEmptyEmbedding.Error() {
		t.Fatalf("expected empty-embedding fallback, got %+v", res)
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float64{1, 0}, []float64{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors: got %v", got)
	}
	if got := cosine([]float64{1, 0}, []float64{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors: got %v", got)
	}
	// Length mismatch truncates to the shared prefix.
	if got := cosine([]float64{1, 1}, []float64{1, 1, 5, 5}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("prefix truncation: got %v", got)
	}
	if got := cosine([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Fatalf("zero-norm vector must score 0, got %v", got)
	}
	if got := cosine(nil, []float64{1}); got != 0 {
		t.Fatalf("empty vector must score 0, got %v", got)
	}
}

func TestTermFrequencyScore(t *testing.T) {
	// "frauds" and "fraud" both start with query token "fraud":
	// 2 matching tokens over 4 total.
	got := TermFrequencyScore("fraud", "fraud frauds weather report")
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("got %v, want 0.5", got)
	}
	if got := TermFrequencyScore("", "anything"); got != 0 {
		t.Fatalf("empty query must score 0, got %v", got)
	}
	if got := TermFrequencyScore("fraud", ""); got != 0 {
		t.Fatalf("empty text must score 0, got %v", got)
	}
	// Tokens under two characters are discarded.
	if got := TermFrequencyScore("a b", "a b a b"); got != 0 {
		t.Fatalf("single-char tokens should be ignored, got %v", got)
	}
}
