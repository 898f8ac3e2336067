package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/srinivastls/AADIS/internal/docstore"
	"github.com/srinivastls/AADIS/internal/query"
)

func tableAnalysisInput(q string, keywords ...string) query.Analysis {
	return query.Analysis{Query: q, Categories: []query.Category{query.CategoryTable}, Primary: query.CategoryTable, Keywords: keywords}
}

func Test_TableAgent_SumOverNumericColumns(t *testing.T) {
	t.Parallel()

	docs := &fakeReader{
		documents: []docstore.Document{{ID: 1, Filename: "finances.pdf"}},
		tables: []docstore.TableRecord{{
			ID: 1, DocumentID: 1, PageNumber: 3, Caption: "Quarterly revenue",
			Headers: []string{"quarter", "revenue"},
			Rows:    [][]string{{"Q1", "100"}, {"Q2", "250.5"}},
		}},
	}
	agent := NewTableAnalysisAgent(docs)

	got := agent.Answer(context.Background(), tableAnalysisInput("total revenue sum", "revenue"))

	if got.Status != StatusSuccess {
		t.Fatalf("status: want success, got %s (%s)", got.Status, got.Message)
	}
	if !strings.Contains(got.Answer, "Table 1 (from finances.pdf, Page 3):") {
		t.Errorf("answer should reference the table: %q", got.Answer)
	}
	if !strings.Contains(got.Answer, "Sums calculated for numeric columns: revenue") {
		t.Errorf("sum analysis should name only numeric columns: %q", got.Answer)
	}

	if len(got.Sources) != 1 {
		t.Fatalf("want 1 source, got %d", len(got.Sources))
	}
	src := got.Sources[0]
	if src.Type != "table" || src.Caption != "Quarterly revenue" {
		t.Errorf("unexpected source: %+v", src)
	}
	// Keyword hits caption (+1), headers (+2), and payload (+1).
	if src.Relevance != 4 {
		t.Errorf("relevance: want 4, got %d", src.Relevance)
	}
}

func Test_TableAgent_AnalysisSelection(t *testing.T) {
	t.Parallel()

	docs := &fakeReader{
		documents: []docstore.Document{{ID: 1, Filename: "finances.pdf"}},
		tables: []docstore.TableRecord{{
			ID: 1, DocumentID: 1, PageNumber: 1, Caption: "revenue by region",
			Headers: []string{"region", "revenue"},
			Rows:    [][]string{{"north", "10"}, {"south", "20"}, {"east", "abc"}},
		}},
	}
	agent := NewTableAnalysisAgent(docs)

	tests := []struct {
		name     string
		question string
		want     string
	}{
		{"count", "how many rows are there", "This table contains 3 rows and 2 columns."},
		{"average with mixed column", "what is the average revenue", "No numeric columns found for average calculation."},
		{"list", "list the revenue entries", "Table has columns: region, revenue"},
		{"general fallback", "tell me about revenue", "General table information: 3 rows, 2 columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := agent.Answer(context.Background(), tableAnalysisInput(tt.question, "revenue"))
			if got.Status != StatusSuccess {
				t.Fatalf("status: want success, got %s (%s)", got.Status, got.Message)
			}
			if !strings.Contains(got.Answer, tt.want) {
				t.Errorf("want analysis %q in %q", tt.want, got.Answer)
			}
		})
	}
}

func Test_TableAgent_OperatorPriority(t *testing.T) {
	t.Parallel()

	// "total" and "average" both appear in the question; the earlier intent
	// in the fixed priority order must win.
	docs := &fakeReader{
		documents: []docstore.Document{{ID: 1, Filename: "inventory.pdf"}},
		tables: []docstore.TableRecord{{
			ID: 1, DocumentID: 1, PageNumber: 4, Caption: "stock levels",
			Headers: []string{"item", "stock"},
			Rows:    [][]string{{"bolts", "12"}, {"nuts", "30"}},
		}},
	}
	agent := NewTableAnalysisAgent(docs)

	got := agent.Answer(context.Background(), tableAnalysisInput("what is the total and average stock", "stock"))

	if got.Status != StatusSuccess {
		t.Fatalf("status: want success, got %s (%s)", got.Status, got.Message)
	}
	if !strings.Contains(got.Answer, "Sums calculated for numeric columns: stock") {
		t.Errorf("sum must win over average: %q", got.Answer)
	}
	if strings.Contains(got.Answer, "Averages calculated") {
		t.Errorf("only one operator may run per table: %q", got.Answer)
	}
}

func Test_TableAgent_RecordRowsBuildFrame(t *testing.T) {
	t.Parallel()

	// Record maps take priority over raw rows when both are present.
	docs := &fakeReader{
		documents: []docstore.Document{{ID: 1, Filename: "stats.pdf"}},
		tables: []docstore.TableRecord{{
			ID: 1, DocumentID: 1, PageNumber: 2, Caption: "population counts",
			Headers: []string{"city", "population"},
			Records: []map[string]string{
				{"city": "Oslo", "population": "700000"},
				{"city": "Bergen", "population": "290000"},
			},
		}},
	}
	agent := NewTableAnalysisAgent(docs)

	got := agent.Answer(context.Background(), tableAnalysisInput("maximum population", "population"))

	if got.Status != StatusSuccess {
		t.Fatalf("status: want success, got %s (%s)", got.Status, got.Message)
	}
	if !strings.Contains(got.Answer, "Maximum values found for numeric columns: population") {
		t.Errorf("unexpected analysis: %q", got.Answer)
	}
}

func Test_TableAgent_RankingAndCap(t *testing.T) {
	t.Parallel()

	docs := &fakeReader{
		documents: []docstore.Document{{ID: 1, Filename: "doc.pdf"}},
		tables: []docstore.TableRecord{
			{ID: 1, DocumentID: 1, PageNumber: 1, Caption: "unrelated", Headers: []string{"a"}, Rows: [][]string{{"1"}}},
			{ID: 2, DocumentID: 1, PageNumber: 2, Caption: "sales data", Headers: []string{"sales"}, Rows: [][]string{{"5"}}},
		},
	}
	agent := NewTableAnalysisAgent(docs)

	got := agent.Answer(context.Background(), tableAnalysisInput("count of sales", "sales"))

	if got.Status != StatusSuccess {
		t.Fatalf("status: want success, got %s (%s)", got.Status, got.Message)
	}
	if len(got.Sources) != 1 {
		t.Fatalf("irrelevant table should be excluded, got %d sources", len(got.Sources))
	}
	if got.Sources[0].Page != 2 {
		t.Errorf("want the matching table, got page %d", got.Sources[0].Page)
	}
}

func Test_TableAgent_NoRelevantTables(t *testing.T) {
	t.Parallel()

	agent := NewTableAnalysisAgent(&fakeReader{})

	got := agent.Answer(context.Background(), tableAnalysisInput("sum of sales", "sales"))

	if got.Status != StatusNoResults {
		t.Fatalf("status: want no_results, got %s", got.Status)
	}
	if got.Message != "No relevant tables found for your query." {
		t.Errorf("unexpected message: %q", got.Message)
	}
}

func Test_TableAgent_UnstructuredTableYieldsNoResults(t *testing.T) {
	t.Parallel()

	// Caption matches but the table has no usable rows or records.
	docs := &fakeReader{
		documents: []docstore.Document{{ID: 1, Filename: "doc.pdf"}},
		tables: []docstore.TableRecord{
			{ID: 1, DocumentID: 1, PageNumber: 1, Caption: "sales summary"},
		},
	}
	agent := NewTableAnalysisAgent(docs)

	got := agent.Answer(context.Background(), tableAnalysisInput("total sales", "sales"))

	if got.Status != StatusNoResults {
		t.Fatalf("status: want no_results, got %s", got.Status)
	}
	if got.Message != "Could not extract meaningful information from the tables." {
		t.Errorf("unexpected message: %q", got.Message)
	}
}
