// Package orchestrator is the user-facing entry point of the QA core: it runs
// questions through the supervisor, shapes responses for end users, and
// records the exchange in conversation history.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/srinivastls/AADIS/internal/agent"
	"github.com/srinivastls/AADIS/internal/history"
	"github.com/srinivastls/AADIS/internal/logging"
	"github.com/srinivastls/AADIS/internal/supervisor"
)

// DefaultSession is the session used when the caller does not supply one.
const DefaultSession = "default"

// Apology texts shown to users instead of internal statuses.
const (
	noResultsAnswer     = "I couldn't find specific information to answer your question in the available documents."
	noResultsSuggestion = "Try rephrasing your question or asking about different aspects of the documents."
	errorAnswer         = "I encountered an error while processing your question."
)

// UserSource is one evidence reference shaped for end users.
type UserSource struct {
	// Document is the originating document's filename.
	Document string `json:"document"`
	// Page is the page number within the document.
	Page int `json:"page"`
	// Type is the evidence type (paragraph, table, image, ...).
	Type string `json:"type"`
	// Description summarises table and image evidence.
	Description string `json:"description,omitempty"`
	// Columns lists a table's headers.
	Columns []string `json:"columns,omitempty"`
	// Size is an image's dimensions.
	Size string `json:"size,omitempty"`
	// Preview is a snippet of matched text.
	Preview string `json:"preview,omitempty"`
}

// UserResponse is the final answer shown to end users.
type UserResponse struct {
	// Answer is the answer text, or an apology when nothing was found.
	Answer string `json:"answer"`
	// Sources is the evidence behind the answer. Empty on failure.
	Sources []UserSource `json:"sources"`
	// Confidence is high for multi-agent answers, medium otherwise.
	Confidence string `json:"confidence,omitempty"`
	// QueryType is the primary detected category.
	QueryType string `json:"query_type,omitempty"`
	// Complexity is the graded question complexity.
	Complexity string `json:"complexity,omitempty"`
	// Suggestion tells the user what to try when nothing was found.
	Suggestion string `json:"suggestion,omitempty"`
	// Error carries the failure detail when processing broke.
	Error string `json:"error,omitempty"`
}

// Orchestrator ties the supervisor to conversation history.
type Orchestrator struct {
	sup  *supervisor.Supervisor
	hist history.Store
}

// New builds an Orchestrator over the given supervisor and history store.
func New(sup *supervisor.Supervisor, hist history.Store) *Orchestrator {
	return &Orchestrator{sup: sup, hist: hist}
}

// Ask answers a question and records the exchange under the given session.
// It always returns a presentable response: failures become apologies, and a
// panic anywhere below is recovered here so nothing escapes to the caller.
// A history write failure is logged but does not fail the answer.
func (o *Orchestrator) Ask(ctx context.Context, question, sessionID string) (resp UserResponse) {
	log := logging.FromContext(ctx)
	if sessionID == "" {
		sessionID = DefaultSession
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("question processing panicked", "session_id", sessionID, "panic", r)
			resp = UserResponse{
				Answer:  errorAnswer,
				Error:   fmt.Sprintf("%v", r),
				Sources: []UserSource{},
			}
		}
	}()
	log.Info("processing question", "session_id", sessionID)

	result := o.sup.Process(ctx, question)
	formatted := formatResponse(result)

	err := o.hist.Append(ctx, history.Entry{
		SessionID: sessionID,
		Question:  question,
		Answer:    formatted.Answer,
		Status:    string(result.Status),
	})
	if err != nil {
		log.Warn("failed to record history", "session_id", sessionID, "error", err)
	}

	return formatted
}

// History returns a session's recorded exchanges in insertion order.
func (o *Orchestrator) History(ctx context.Context, sessionID string) ([]history.Entry, error) {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	return o.hist.BySession(ctx, sessionID)
}

// Clear removes a session's recorded exchanges.
func (o *Orchestrator) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	return o.hist.Clear(ctx, sessionID)
}

// formatResponse shapes a supervisor response for end users.
func formatResponse(resp supervisor.Response) UserResponse {
	switch resp.Status {
	case agent.StatusSuccess:
		confidence := "medium"
		if resp.MultiAgent {
			confidence = "high"
		}
		return UserResponse{
			Answer:     resp.Answer,
			Sources:    formatSources(resp.Sources),
			Confidence: confidence,
			QueryType:  string(resp.Analysis.Primary),
			Complexity: string(resp.Analysis.Complexity),
		}

	case agent.StatusNoResults:
		return UserResponse{
			Answer:     noResultsAnswer,
			Suggestion: noResultsSuggestion,
			Sources:    []UserSource{},
		}

	default:
		message := resp.Message
		if message == "" {
			message = "Unknown error"
		}
		return UserResponse{
			Answer:  errorAnswer,
			Error:   message,
			Sources: []UserSource{},
		}
	}
}

// formatSources maps agent sources to their user-facing shape, keeping only
// the fields that make sense for each evidence type.
func formatSources(sources []agent.Source) []UserSource {
	out := make([]UserSource, 0, len(sources))
	for _, s := range sources {
		us := UserSource{
			Document: s.Document,
			Page:     s.Page,
			Type:     s.Type,
		}
		switch s.Type {
		case "table":
			if s.Caption != "" {
				us.Description = "Table: " + s.Caption
			}
			us.Columns = s.Headers
		case "image":
			if s.Caption != "" {
				us.Description = "Image: " + s.Caption
			}
			us.Size = s.Dimensions
		default:
			us.Preview = s.Snippet
		}
		out = append(out, us)
	}
	return out
}
