// Package embedder provides the embedding collaborator the text retrieval
// agent uses to vectorise questions. Each implementation talks to its
// backend (Ollama or OpenAI) via plain HTTP: the QA core only ever embeds
// single-question batches, so no SDK is warranted.
//
// Embeddings are an external collaborator only: answers themselves are
// deterministic templates over retrieved evidence, never model output.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Embedder converts text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// postJSON marshals in, POSTs it to url with the given headers, and decodes
// the response body into out. It returns the HTTP status code; callers map
// non-2xx statuses to errors using their backend's error payload shape.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any) (int, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// is2xx reports whether an HTTP status code is in the success range.
func is2xx(status int) bool {
	return status >= 200 && status < 300
}
