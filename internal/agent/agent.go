// Package agent holds the specialised retrieval agents the supervisor routes
// questions to: text retrieval over the vector index, table analysis, and
// image lookup. Agents never return Go errors to the router — collaborator
// failures are folded into the result status so one failing agent cannot
// sink a multi-agent answer.
package agent

import (
	"context"

	"github.com/srinivastls/AADIS/internal/query"
)

// Status is the outcome class of one agent run.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusNoResults Status = "no_results"
	StatusError     Status = "error"
)

// Source is one piece of evidence backing an answer. Fields are populated
// per evidence type; unused fields stay zero and are omitted on the wire.
type Source struct {
	// Type is the evidence type: text block type (paragraph, heading, ...),
	// "table", or "image".
	Type string `json:"type"`
	// Document is the originating document's filename.
	Document string `json:"document"`
	// Page is the page number the evidence was extracted from.
	Page int `json:"page"`

	// Similarity is the cosine similarity rounded to three decimals (text only).
	Similarity float64 `json:"similarity,omitempty"`
	// Snippet is a preview of the matched content (text only).
	Snippet string `json:"snippet,omitempty"`

	// Caption is the table or image caption.
	Caption string `json:"caption,omitempty"`
	// Headers are the table's column headers (table only).
	Headers []string `json:"headers,omitempty"`
	// Relevance is the keyword-overlap score (table and image only).
	Relevance int `json:"relevance,omitempty"`

	// Path is the extracted image file path (image only).
	Path string `json:"path,omitempty"`
	// Dimensions is "WxH" in pixels, or "Unknown" (image only).
	Dimensions string `json:"dimensions,omitempty"`
}

// Result is the outcome of one agent run.
type Result struct {
	// Agent is the reporting agent's name.
	Agent string
	// Status classifies the outcome.
	Status Status
	// Answer is the composed answer text. Set only on success.
	Answer string
	// Message is the human-readable detail for no_results and error statuses.
	Message string
	// Sources is the evidence backing the answer.
	Sources []Source
	// Count is the number of evidence items examined (chunks, tables, images).
	Count int
}

// Agent is one specialised retrieval agent.
type Agent interface {
	// Name identifies the agent in results and logs.
	Name() string
	// Capabilities lists what the agent can do, for introspection endpoints.
	Capabilities() []string
	// CanHandle reports whether the agent serves the given query category.
	CanHandle(cat query.Category) bool
	// Answer runs the agent against the analysed question.
	// It never returns a Go error: failures surface as StatusError results.
	Answer(ctx context.Context, analysis query.Analysis) Result
}

// noResults builds a no_results Result.
func noResults(name, message string) Result {
	return Result{Agent: name, Status: StatusNoResults, Message: message}
}

// failure builds an error Result from a collaborator failure.
func failure(name, message string) Result {
	return Result{Agent: name, Status: StatusError, Message: message}
}

// truncate shortens s to at most n runes. It does not append an ellipsis;
// callers decide how to mark the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
