package agent

import (
	"context"
	"errors"

	"github.com/srinivastls/AADIS/internal/docstore"
	"github.com/srinivastls/AADIS/internal/index"
)

// fakeReader is an in-memory docstore.Reader for agent tests.
type fakeReader struct {
	documents []docstore.Document
	blocks    []docstore.TextBlock
	tables    []docstore.TableRecord
	images    []docstore.ImageRecord
	err       error
}

func (f *fakeReader) Documents(ctx context.Context) ([]docstore.Document, error) {
	return f.documents, f.err
}

func (f *fakeReader) DocumentByID(ctx context.Context, id int64) (*docstore.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.documents {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, docstore.ErrNotFound
}

func (f *fakeReader) FirstTextBlock(ctx context.Context, documentID int64, page int) (*docstore.TextBlock, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.blocks {
		if b.DocumentID == documentID && b.PageNumber == page {
			return &b, nil
		}
	}
	return nil, docstore.ErrNotFound
}

func (f *fakeReader) Tables(ctx context.Context) ([]docstore.TableRecord, error) {
	return f.tables, f.err
}

func (f *fakeReader) Images(ctx context.Context) ([]docstore.ImageRecord, error) {
	return f.images, f.err
}

// fakeEmbedder returns a fixed vector for every input text.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

// fakeIndex returns canned hits regardless of the query vector.
type fakeIndex struct {
	hits []index.Hit
	err  error
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, k int) ([]index.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) Upsert(ctx context.Context, points []index.Point) error {
	return errors.New("not implemented")
}

func (f *fakeIndex) Close() error { return nil }
