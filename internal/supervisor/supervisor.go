// Package supervisor routes analysed questions to the registered retrieval
// agents and synthesises their results into one response.
package supervisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/srinivastls/AADIS/internal/agent"
	"github.com/srinivastls/AADIS/internal/logging"
	"github.com/srinivastls/AADIS/internal/query"
)

// synthesisOrder fixes the section order of multi-agent answers and the
// concatenation order of their sources.
var synthesisOrder = []query.Category{query.CategoryText, query.CategoryTable, query.CategoryImage}

// Response is the synthesised outcome of one routed question.
type Response struct {
	// Status is success, no_results, or error.
	Status agent.Status
	// Answer is the synthesised answer text. Set only on success.
	Answer string
	// Message is the detail for no_results and error statuses.
	Message string
	// Sources is the combined evidence, in synthesis order.
	Sources []agent.Source
	// Query is the original question.
	Query string
	// PrimaryAgent is the answering category when exactly one agent succeeded.
	PrimaryAgent query.Category
	// AgentsUsed lists the succeeding categories, in synthesis order.
	AgentsUsed []query.Category
	// AgentResults holds every routed agent's raw result, keyed by category.
	AgentResults map[query.Category]agent.Result
	// Analysis is the query analysis that drove the routing.
	Analysis query.Analysis
	// MultiAgent is true when the answer was synthesised from several agents.
	MultiAgent bool
}

// Supervisor owns the query analyzer and the agent registry.
type Supervisor struct {
	analyzer *query.Analyzer
	agents   map[query.Category]agent.Agent
}

// New builds a Supervisor over the given agent registry. The registry maps
// each query category to the agent serving it; categories without an agent
// are skipped at routing time.
func New(analyzer *query.Analyzer, agents map[query.Category]agent.Agent) *Supervisor {
	return &Supervisor{analyzer: analyzer, agents: agents}
}

// Process analyses the question, routes it to every detected category's
// agent, and synthesises the results.
func (s *Supervisor) Process(ctx context.Context, question string) Response {
	log := logging.FromContext(ctx)

	analysis := s.analyzer.Analyze(question)
	log.Info("routing query",
		"categories", analysis.Categories,
		"primary", analysis.Primary,
		"complexity", analysis.Complexity)

	results := s.route(ctx, analysis)
	return s.synthesize(question, analysis, results)
}

// route runs each detected category's agent, serially in category order.
func (s *Supervisor) route(ctx context.Context, analysis query.Analysis) map[query.Category]agent.Result {
	log := logging.FromContext(ctx)
	results := make(map[query.Category]agent.Result, len(analysis.Categories))

	for _, cat := range analysis.Categories {
		ag, ok := s.agents[cat]
		if !ok {
			log.Warn("no agent registered for category", "category", cat)
			continue
		}
		if !ag.CanHandle(cat) {
			log.Warn("agent declined category", "agent", ag.Name(), "category", cat)
			continue
		}
		log.Debug("dispatching to agent", "agent", ag.Name(), "category", cat)
		results[cat] = ag.Answer(ctx, analysis)
	}
	return results
}

// synthesize folds the per-agent results into one response: pass-through for
// a single success, a sectioned combined answer for several, and an
// aggregated failure report when nothing succeeded.
func (s *Supervisor) synthesize(question string, analysis query.Analysis, results map[query.Category]agent.Result) Response {
	var succeeded []query.Category
	for _, cat := range orderedCategories(results) {
		if results[cat].Status == agent.StatusSuccess {
			succeeded = append(succeeded, cat)
		}
	}

	switch len(succeeded) {
	case 0:
		var errMessages []string
		for _, cat := range orderedCategories(results) {
			if r := results[cat]; r.Status == agent.StatusError {
				errMessages = append(errMessages, r.Message)
			}
		}
		message := "I couldn't find relevant information to answer your query. "
		if len(errMessages) > 0 {
			message += fmt.Sprintf("Errors encountered: %s", strings.Join(errMessages, "; "))
		}
		return Response{
			Status:       agent.StatusNoResults,
			Message:      message,
			Query:        question,
			AgentResults: results,
			Analysis:     analysis,
		}

	case 1:
		cat := succeeded[0]
		r := results[cat]
		return Response{
			Status:       agent.StatusSuccess,
			Answer:       r.Answer,
			Sources:      r.Sources,
			Query:        question,
			PrimaryAgent: cat,
			AgentsUsed:   succeeded,
			AgentResults: results,
			Analysis:     analysis,
		}

	default:
		answer := fmt.Sprintf("Based on your query '%s', I found information from multiple sources:\n\n", question)
		var sources []agent.Source
		for _, cat := range succeeded {
			r := results[cat]
			answer += fmt.Sprintf("## %s Information:\n%s\n\n", sectionTitle(cat), r.Answer)
			sources = append(sources, r.Sources...)
		}
		answer += "This comprehensive answer draws from multiple information sources in the documents."
		return Response{
			Status:       agent.StatusSuccess,
			Answer:       answer,
			Sources:      sources,
			Query:        question,
			AgentsUsed:   succeeded,
			AgentResults: results,
			Analysis:     analysis,
			MultiAgent:   true,
		}
	}
}

// orderedCategories lists the result keys in synthesis order, with any
// categories outside the fixed order appended alphabetically.
func orderedCategories(results map[query.Category]agent.Result) []query.Category {
	ordered := make([]query.Category, 0, len(results))
	seen := make(map[query.Category]struct{}, len(results))
	for _, cat := range synthesisOrder {
		if _, ok := results[cat]; ok {
			ordered = append(ordered, cat)
			seen[cat] = struct{}{}
		}
	}
	var rest []query.Category
	for cat := range results {
		if _, ok := seen[cat]; !ok {
			rest = append(rest, cat)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(ordered, rest...)
}

// sectionTitle renders a category as a section heading ("text" -> "Text").
func sectionTitle(cat query.Category) string {
	words := strings.Split(strings.ReplaceAll(string(cat), "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
