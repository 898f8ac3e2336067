package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/srinivastls/AADIS/internal/docstore"
	"github.com/srinivastls/AADIS/internal/logging"
	"github.com/srinivastls/AADIS/internal/query"
)

// tableTopK caps how many relevant tables are analysed per question.
const tableTopK = 5

// Relevance weights for table matching. Header matches weigh double because
// column names are the strongest signal of what a table is about.
const (
	tableCaptionWeight = 1
	tableHeaderWeight  = 2
	tablePayloadWeight = 1
)

// TableAnalysisAgent answers tabular questions by matching stored tables
// against the question's keywords and running a keyword-selected aggregate
// over each match.
type TableAnalysisAgent struct {
	docs docstore.Reader
}

// NewTableAnalysisAgent wires the table agent to the document store.
func NewTableAnalysisAgent(docs docstore.Reader) *TableAnalysisAgent {
	return &TableAnalysisAgent{docs: docs}
}

func (a *TableAnalysisAgent) Name() string { return "TableAnalysis" }

func (a *TableAnalysisAgent) Capabilities() []string {
	return []string{"table_query", "data_analysis", "table_search"}
}

func (a *TableAnalysisAgent) CanHandle(cat query.Category) bool {
	return cat == query.CategoryTable
}

// rankedTable pairs a table with its keyword relevance and resolved document.
type rankedTable struct {
	table     docstore.TableRecord
	document  string
	relevance int
}

// tableAnalysis is the outcome of analysing one table.
type tableAnalysis struct {
	document string
	page     int
	caption  string
	summary  string
}

// Answer finds keyword-relevant tables and runs the question's aggregate.
func (a *TableAnalysisAgent) Answer(ctx context.Context, analysis query.Analysis) Result {
	log := logging.FromContext(ctx)
	log.Debug("table agent processing query", "query", analysis.Query)

	ranked, err := a.findRelevant(ctx, analysis.Keywords)
	if err != nil {
		log.Error("table lookup failed", "error", err)
		return failure(a.Name(), fmt.Sprintf("Error analyzing tables: %v", err))
	}
	if len(ranked) == 0 {
		return noResults(a.Name(), "No relevant tables found for your query.")
	}

	var analyses []tableAnalysis
	for _, rt := range ranked {
		if ta, ok := analyzeTable(analysis.Query, rt); ok {
			analyses = append(analyses, ta)
		}
	}
	if len(analyses) == 0 {
		return noResults(a.Name(), "Could not extract meaningful information from the tables.")
	}

	return Result{
		Agent:   a.Name(),
		Status:  StatusSuccess,
		Answer:  combineTableAnalyses(analysis.Query, analyses),
		Sources: tableSources(ranked),
		Count:   len(ranked),
	}
}

// findRelevant scores every stored table against the question keywords and
// keeps the best matches.
func (a *TableAnalysisAgent) findRelevant(ctx context.Context, keywords []string) ([]rankedTable, error) {
	tables, err := a.docs.Tables(ctx)
	if err != nil {
		return nil, err
	}

	var ranked []rankedTable
	for _, t := range tables {
		relevance := scoreTable(t, keywords)
		if relevance == 0 {
			continue
		}
		document := "Unknown"
		if doc, err := a.docs.DocumentByID(ctx, t.DocumentID); err == nil {
			document = doc.Filename
		}
		ranked = append(ranked, rankedTable{table: t, document: document, relevance: relevance})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].relevance > ranked[j].relevance
	})
	if len(ranked) > tableTopK {
		ranked = ranked[:tableTopK]
	}
	return ranked, nil
}

// scoreTable accumulates keyword overlap across caption, headers, and the
// serialized payload.
func scoreTable(t docstore.TableRecord, keywords []string) int {
	score := 0

	caption := strings.ToLower(t.Caption)
	if caption != "" {
		for _, kw := range keywords {
			if strings.Contains(caption, kw) {
				score += tableCaptionWeight
			}
		}
	}

	if len(t.Headers) > 0 {
		headers := strings.ToLower(strings.Join(t.Headers, " "))
		for _, kw := range keywords {
			if strings.Contains(headers, kw) {
				score += tableHeaderWeight
			}
		}
	}

	if payload, err := json.Marshal(struct {
		Headers []string            `json:"headers,omitempty"`
		Rows    [][]string          `json:"rows,omitempty"`
		Data    []map[string]string `json:"data,omitempty"`
	}{t.Headers, t.Rows, t.Records}); err == nil {
		body := strings.ToLower(string(payload))
		for _, kw := range keywords {
			if strings.Contains(body, kw) {
				score += tablePayloadWeight
			}
		}
	}

	return score
}

// tableFrame is a table reshaped into aligned columns for analysis.
type tableFrame struct {
	columns []string
	rows    [][]string
}

// buildFrame reshapes a stored table into a frame. Record maps take priority
// over raw rows; ragged rows are padded or cut to the header width. Returns
// false when the table carries no usable structure.
func buildFrame(t docstore.TableRecord) (tableFrame, bool) {
	if len(t.Records) > 0 {
		columns := t.Headers
		if len(columns) == 0 {
			// Map key order is not stable; sort for a deterministic frame.
			seen := make(map[string]struct{})
			for _, rec := range t.Records {
				for k := range rec {
					seen[k] = struct{}{}
				}
			}
			for k := range seen {
				columns = append(columns, k)
			}
			sort.Strings(columns)
		}
		rows := make([][]string, 0, len(t.Records))
		for _, rec := range t.Records {
			row := make([]string, len(columns))
			for i, col := range columns {
				row[i] = rec[col]
			}
			rows = append(rows, row)
		}
		return tableFrame{columns: columns, rows: rows}, true
	}

	if len(t.Headers) > 0 && len(t.Rows) > 0 {
		rows := make([][]string, 0, len(t.Rows))
		for _, r := range t.Rows {
			row := make([]string, len(t.Headers))
			copy(row, r)
			rows = append(rows, row)
		}
		return tableFrame{columns: t.Headers, rows: rows}, true
	}

	return tableFrame{}, false
}

// numericColumns returns the columns whose every non-empty cell parses as a
// number. A column with no values at all is not numeric.
func (f tableFrame) numericColumns() []string {
	var numeric []string
	for i, col := range f.columns {
		values := 0
		ok := true
		for _, row := range f.rows {
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				ok = false
				break
			}
			values++
		}
		if ok && values > 0 {
			numeric = append(numeric, col)
		}
	}
	return numeric
}

// analyzeTable selects the aggregate the question asks for and summarises
// the result. Keyword checks are plain substring matches on the lowered
// question, checked in fixed priority order.
func analyzeTable(question string, rt rankedTable) (tableAnalysis, bool) {
	frame, ok := buildFrame(rt.table)
	if !ok {
		return tableAnalysis{}, false
	}

	lower := strings.ToLower(question)
	var summary string
	switch {
	case containsAny(lower, "count", "how many", "number of"):
		summary = fmt.Sprintf("This table contains %d rows and %d columns.", len(frame.rows), len(frame.columns))
	case containsAny(lower, "sum", "total", "add"):
		summary = aggregateSummary(frame, "Sums calculated", "sum")
	case containsAny(lower, "average", "mean"):
		summary = aggregateSummary(frame, "Averages calculated", "average")
	case containsAny(lower, "maximum", "max", "highest"):
		summary = aggregateSummary(frame, "Maximum values found", "maximum")
	case containsAny(lower, "minimum", "min", "lowest"):
		summary = aggregateSummary(frame, "Minimum values found", "minimum")
	case containsAny(lower, "list", "show", "find"):
		summary = fmt.Sprintf("Table has columns: %s", strings.Join(frame.columns, ", "))
	default:
		summary = fmt.Sprintf("General table information: %d rows, %d columns", len(frame.rows), len(frame.columns))
	}

	caption := rt.table.Caption
	if caption == "" {
		caption = "No caption"
	}
	return tableAnalysis{
		document: rt.document,
		page:     rt.table.PageNumber,
		caption:  caption,
		summary:  summary,
	}, true
}

// aggregateSummary names the numeric columns an aggregate applies to, or
// reports that none exist.
func aggregateSummary(frame tableFrame, verb, operation string) string {
	numeric := frame.numericColumns()
	if len(numeric) == 0 {
		return fmt.Sprintf("No numeric columns found for %s calculation.", operation)
	}
	return fmt.Sprintf("%s for numeric columns: %s", verb, strings.Join(numeric, ", "))
}

// containsAny reports whether s contains any of the needles.
func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// combineTableAnalyses renders the per-table summaries into one answer.
func combineTableAnalyses(question string, analyses []tableAnalysis) string {
	answer := fmt.Sprintf("Based on the table analysis for your query '%s':\n\n", question)
	for i, ta := range analyses {
		answer += fmt.Sprintf("Table %d (from %s, Page %d):\n", i+1, ta.document, ta.page)
		answer += fmt.Sprintf("Caption: %s\n", ta.caption)
		answer += fmt.Sprintf("Analysis: %s\n\n", ta.summary)
	}
	return answer
}

// tableSources formats the ranked tables as source listings.
func tableSources(ranked []rankedTable) []Source {
	sources := make([]Source, 0, len(ranked))
	for _, rt := range ranked {
		caption := rt.table.Caption
		if caption == "" {
			caption = "No caption"
		}
		sources = append(sources, Source{
			Type:      "table",
			Document:  rt.document,
			Page:      rt.table.PageNumber,
			Caption:   caption,
			Headers:   rt.table.Headers,
			Relevance: rt.relevance,
		})
	}
	return sources
}
