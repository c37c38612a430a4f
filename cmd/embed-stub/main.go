// Command embed-stub serves a deterministic /api/embeddings endpoint for
// local development without a real embedding model: each prompt hashes to a
// fixed small vector, so rankings are stable across runs.
package main

import (
	"encoding/json"
	"hash/fnv"
	"log"
	"net/http"
	"os"
	"strings"
)

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

func main() {
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":11434"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"embedding": vectorFor(req.Prompt),
		})
	})

	log.Printf("embed-stub listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

// vectorFor buckets word hashes into a fixed-width vector. Texts sharing
// vocabulary land near each other, which is enough to exercise the cosine
// ranking path end to end.
func vectorFor(text string) []float64 {
	const dims = 64
	vec := make([]float64, dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vec[h.Sum32()%dims]++
	}
	return vec
}
