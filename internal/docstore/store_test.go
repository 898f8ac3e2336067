package docstore

import (
	"context"
	"errors"
	"testing"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_DocumentRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.PutDocument(ctx, Document{Filename: "report.pdf", Status: StatusCompleted, TotalPages: 12})
	if err != nil {
		t.Fatalf("put document: %v", err)
	}

	doc, err := s.DocumentByID(ctx, id)
	if err != nil {
		t.Fatalf("document by id: %v", err)
	}
	if doc.Filename != "report.pdf" || doc.Status != StatusCompleted || doc.TotalPages != 12 {
		t.Errorf("unexpected document: %+v", doc)
	}

	docs, err := s.Documents(ctx)
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("want 1 document, got %d", len(docs))
	}
}

func Test_Store_DocumentByID_NotFound(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.DocumentByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func Test_Store_FirstTextBlock_ReadingOrderWins(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	docID, err := s.PutDocument(ctx, Document{Filename: "doc.pdf"})
	if err != nil {
		t.Fatalf("put document: %v", err)
	}

	// Insert out of reading order — the lower reading_order must win.
	if _, err := s.PutTextBlock(ctx, TextBlock{DocumentID: docID, Content: "second", PageNumber: 3, ReadingOrder: 2, VectorKey: "v2"}); err != nil {
		t.Fatalf("put block: %v", err)
	}
	if _, err := s.PutTextBlock(ctx, TextBlock{DocumentID: docID, Content: "first", BlockType: "heading", PageNumber: 3, ReadingOrder: 1, VectorKey: "v1"}); err != nil {
		t.Fatalf("put block: %v", err)
	}

	b, err := s.FirstTextBlock(ctx, docID, 3)
	if err != nil {
		t.Fatalf("first text block: %v", err)
	}
	if b.Content != "first" || b.BlockType != "heading" {
		t.Errorf("want first block by reading order, got %+v", b)
	}

	if _, err := s.FirstTextBlock(ctx, docID, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty page: want ErrNotFound, got %v", err)
	}
}

func Test_Store_TablePayloadRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	docID, err := s.PutDocument(ctx, Document{Filename: "tables.pdf"})
	if err != nil {
		t.Fatalf("put document: %v", err)
	}

	in := TableRecord{
		DocumentID: docID,
		Caption:    "Quarterly revenue",
		PageNumber: 7,
		Headers:    []string{"quarter", "revenue"},
		Rows:       [][]string{{"Q1", "100"}, {"Q2", "150"}},
		Records: []map[string]string{
			{"quarter": "Q1", "revenue": "100"},
			{"quarter": "Q2", "revenue": "150"},
		},
	}
	if _, err := s.PutTable(ctx, in); err != nil {
		t.Fatalf("put table: %v", err)
	}

	tables, err := s.Tables(ctx)
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("want 1 table, got %d", len(tables))
	}
	got := tables[0]
	if got.Caption != in.Caption || got.PageNumber != in.PageNumber {
		t.Errorf("table metadata mismatch: %+v", got)
	}
	if len(got.Headers) != 2 || got.Headers[1] != "revenue" {
		t.Errorf("headers mismatch: %v", got.Headers)
	}
	if len(got.Rows) != 2 || got.Rows[1][1] != "150" {
		t.Errorf("rows mismatch: %v", got.Rows)
	}
	if len(got.Records) != 2 || got.Records[0]["quarter"] != "Q1" {
		t.Errorf("records mismatch: %v", got.Records)
	}
}

func Test_Store_ImagesRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	docID, err := s.PutDocument(ctx, Document{Filename: "figures.pdf"})
	if err != nil {
		t.Fatalf("put document: %v", err)
	}
	if _, err := s.PutImage(ctx, ImageRecord{
		DocumentID: docID,
		ImagePath:  "/data/images/fig1.png",
		Caption:    "Figure 1: architecture overview",
		AltText:    "system diagram",
		PageNumber: 2,
		Width:      800,
		Height:     600,
	}); err != nil {
		t.Fatalf("put image: %v", err)
	}

	images, err := s.Images(ctx)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("want 1 image, got %d", len(images))
	}
	img := images[0]
	if img.Caption != "Figure 1: architecture overview" || img.Width != 800 || img.Height != 600 {
		t.Errorf("image mismatch: %+v", img)
	}
}
