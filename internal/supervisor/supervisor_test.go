package supervisor

import (
	"context"
	"strings"
	"testing"

	"github.com/srinivastls/AADIS/internal/agent"
	"github.com/srinivastls/AADIS/internal/query"
)

// stubAgent returns a canned result for the categories it accepts.
type stubAgent struct {
	name   string
	cats   map[query.Category]bool
	result agent.Result
}

func (s *stubAgent) Name() string                    { return s.name }
func (s *stubAgent) Capabilities() []string          { return nil }
func (s *stubAgent) CanHandle(c query.Category) bool { return s.cats[c] }
func (s *stubAgent) Answer(ctx context.Context, a query.Analysis) agent.Result {
	return s.result
}

func success(name, answer string, sources ...agent.Source) agent.Result {
	return agent.Result{Agent: name, Status: agent.StatusSuccess, Answer: answer, Sources: sources}
}

func Test_Process_SingleAgent(t *testing.T) {
	t.Parallel()

	sup := New(query.NewAnalyzer(), map[query.Category]agent.Agent{
		query.CategoryText: &stubAgent{
			name:   "text",
			cats:   map[query.Category]bool{query.CategoryText: true},
			result: success("text", "the text answer", agent.Source{Type: "paragraph", Document: "a.pdf", Page: 1}),
		},
	})

	got := sup.Process(context.Background(), "what is the definition of entropy")

	if got.Status != agent.StatusSuccess {
		t.Fatalf("status: want success, got %s (%s)", got.Status, got.Message)
	}
	if got.Answer != "the text answer" {
		t.Errorf("single-agent answers pass through unchanged, got %q", got.Answer)
	}
	if got.PrimaryAgent != query.CategoryText {
		t.Errorf("primary agent: want text, got %s", got.PrimaryAgent)
	}
	if got.MultiAgent {
		t.Error("single-agent response should not be flagged multi-agent")
	}
}

func Test_Process_MultiAgentSynthesis(t *testing.T) {
	t.Parallel()

	sup := New(query.NewAnalyzer(), map[query.Category]agent.Agent{
		query.CategoryText: &stubAgent{
			name:   "text",
			cats:   map[query.Category]bool{query.CategoryText: true},
			result: success("text", "text findings", agent.Source{Type: "paragraph", Document: "a.pdf", Page: 1}),
		},
		query.CategoryTable: &stubAgent{
			name:   "table",
			cats:   map[query.Category]bool{query.CategoryTable: true},
			result: success("table", "table findings", agent.Source{Type: "table", Document: "a.pdf", Page: 2}),
		},
	})

	// Matches both text patterns (question word) and table patterns
	// (data/table plus compare).
	got := sup.Process(context.Background(), "what does the data table compare")

	if got.Status != agent.StatusSuccess {
		t.Fatalf("status: want success, got %s (%s)", got.Status, got.Message)
	}
	if !got.MultiAgent {
		t.Fatal("want a multi-agent response")
	}

	textAt := strings.Index(got.Answer, "## Text Information:\ntext findings")
	tableAt := strings.Index(got.Answer, "## Table Information:\ntable findings")
	if textAt < 0 || tableAt < 0 {
		t.Fatalf("missing sections in answer: %q", got.Answer)
	}
	if textAt > tableAt {
		t.Error("text section must precede the table section")
	}
	if !strings.HasSuffix(got.Answer, "This comprehensive answer draws from multiple information sources in the documents.") {
		t.Errorf("missing closing line: %q", got.Answer)
	}

	// Sources concatenate in the same order as the sections.
	if len(got.Sources) != 2 || got.Sources[0].Type != "paragraph" || got.Sources[1].Type != "table" {
		t.Errorf("unexpected source order: %+v", got.Sources)
	}
}

func Test_Process_PartialFailureStillSucceeds(t *testing.T) {
	t.Parallel()

	sup := New(query.NewAnalyzer(), map[query.Category]agent.Agent{
		query.CategoryText: &stubAgent{
			name:   "text",
			cats:   map[query.Category]bool{query.CategoryText: true},
			result: success("text", "text findings"),
		},
		query.CategoryTable: &stubAgent{
			name:   "table",
			cats:   map[query.Category]bool{query.CategoryTable: true},
			result: agent.Result{Agent: "table", Status: agent.StatusError, Message: "store unavailable"},
		},
	})

	got := sup.Process(context.Background(), "what does the data table compare")

	if got.Status != agent.StatusSuccess {
		t.Fatalf("one failing agent must not sink the answer, got %s", got.Status)
	}
	if got.PrimaryAgent != query.CategoryText {
		t.Errorf("primary agent: want text, got %s", got.PrimaryAgent)
	}
	if got.MultiAgent {
		t.Error("a single surviving agent is not a multi-agent response")
	}
}

func Test_Process_AllAgentsFail(t *testing.T) {
	t.Parallel()

	sup := New(query.NewAnalyzer(), map[query.Category]agent.Agent{
		query.CategoryText: &stubAgent{
			name:   "text",
			cats:   map[query.Category]bool{query.CategoryText: true},
			result: agent.Result{Agent: "text", Status: agent.StatusError, Message: "index down"},
		},
	})

	got := sup.Process(context.Background(), "what is entropy")

	if got.Status != agent.StatusNoResults {
		t.Fatalf("status: want no_results, got %s", got.Status)
	}
	if !strings.Contains(got.Message, "Errors encountered: index down") {
		t.Errorf("message should aggregate agent errors: %q", got.Message)
	}
	if _, ok := got.AgentResults[query.CategoryText]; !ok {
		t.Error("raw agent results should be preserved for diagnostics")
	}
}

func Test_Process_NoAgentRegistered(t *testing.T) {
	t.Parallel()

	sup := New(query.NewAnalyzer(), map[query.Category]agent.Agent{})

	got := sup.Process(context.Background(), "what is entropy")

	if got.Status != agent.StatusNoResults {
		t.Fatalf("status: want no_results, got %s", got.Status)
	}
	if strings.Contains(got.Message, "Errors encountered") {
		t.Errorf("no agents ran, so no errors should be reported: %q", got.Message)
	}
}
