package agent

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/srinivastls/AADIS/internal/docstore"
	"github.com/srinivastls/AADIS/internal/embedder"
	"github.com/srinivastls/AADIS/internal/index"
	"github.com/srinivastls/AADIS/internal/logging"
	"github.com/srinivastls/AADIS/internal/query"
)

// Retrieval constants for the text agent.
const (
	// textTopK is how many nearest neighbours are pulled from the index.
	textTopK = 5
	// textAnswerChunks is how many top chunks are quoted in the answer.
	textAnswerChunks = 3
	// textQuoteLen is the quoted-content length in the answer body.
	textQuoteLen = 200
	// textSnippetLen is the preview length in source listings.
	textSnippetLen = 150
)

// TextRetrievalAgent answers text questions by embedding the question,
// querying the similarity index, and quoting the best-matching blocks.
type TextRetrievalAgent struct {
	docs docstore.Reader
	emb  embedder.Embedder
	idx  index.Index
}

// NewTextRetrievalAgent wires the text agent to its collaborators.
func NewTextRetrievalAgent(docs docstore.Reader, emb embedder.Embedder, idx index.Index) *TextRetrievalAgent {
	return &TextRetrievalAgent{docs: docs, emb: emb, idx: idx}
}

func (a *TextRetrievalAgent) Name() string { return "TextRetrieval" }

func (a *TextRetrievalAgent) Capabilities() []string {
	return []string{"text_retrieval", "semantic_search", "text_qa"}
}

// CanHandle accepts text and general questions.
func (a *TextRetrievalAgent) CanHandle(cat query.Category) bool {
	return cat == query.CategoryText || cat == query.CategoryGeneral
}

// textChunk is one retrieved block with its resolved document context.
type textChunk struct {
	content    string
	document   string
	page       int
	blockType  string
	similarity float64
}

// Answer retrieves the nearest text blocks and composes a quoted answer.
func (a *TextRetrievalAgent) Answer(ctx context.Context, analysis query.Analysis) Result {
	log := logging.FromContext(ctx)
	log.Debug("text agent processing query", "query", analysis.Query)

	chunks, err := a.retrieve(ctx, analysis.Query)
	if err != nil {
		log.Error("text retrieval failed", "error", err)
		return failure(a.Name(), fmt.Sprintf("Error processing query: %v", err))
	}
	if len(chunks) == 0 {
		return noResults(a.Name(), "No relevant text found for your query.")
	}

	return Result{
		Agent:   a.Name(),
		Status:  StatusSuccess,
		Answer:  composeTextAnswer(analysis.Query, chunks),
		Sources: textSources(chunks),
		Count:   len(chunks),
	}
}

// retrieve embeds the question, queries the index, and resolves each hit back
// to its document. Hits whose page has no stored block are dropped.
func (a *TextRetrievalAgent) retrieve(ctx context.Context, question string) ([]textChunk, error) {
	vectors, err := a.emb.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}

	hits, err := a.idx.Query(ctx, vectors[0], textTopK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	var chunks []textChunk
	for _, hit := range hits {
		// The page join is by document and page only: the first block on the
		// page stands in for the hit. Confirms the page still exists.
		_, err := a.docs.FirstTextBlock(ctx, hit.Metadata.DocumentID, hit.Metadata.PageNumber)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve block: %w", err)
		}

		document := "Unknown"
		if doc, err := a.docs.DocumentByID(ctx, hit.Metadata.DocumentID); err == nil {
			document = doc.Filename
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("resolve document: %w", err)
		}

		blockType := hit.Metadata.BlockType
		if blockType == "" {
			blockType = "text"
		}
		chunks = append(chunks, textChunk{
			content:    hit.Content,
			document:   document,
			page:       hit.Metadata.PageNumber,
			blockType:  blockType,
			similarity: float64(1 - hit.Distance),
		})
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].similarity > chunks[j].similarity
	})
	return chunks, nil
}

// composeTextAnswer quotes the top chunks and closes with the query echo.
func composeTextAnswer(question string, chunks []textChunk) string {
	answer := "Based on the documents, here's what I found:\n\n"
	for i, chunk := range chunks {
		if i == textAnswerChunks {
			break
		}
		answer += fmt.Sprintf("%d. From %s (Page %d):\n", i+1, chunk.document, chunk.page)
		answer += fmt.Sprintf("   %s...\n\n", truncate(chunk.content, textQuoteLen))
	}
	answer += fmt.Sprintf("This information addresses your query: '%s'", question)
	return answer
}

// textSources formats all retrieved chunks as source listings.
func textSources(chunks []textChunk) []Source {
	sources := make([]Source, 0, len(chunks))
	for _, chunk := range chunks {
		snippet := chunk.content
		if len([]rune(snippet)) > textSnippetLen {
			snippet = truncate(snippet, textSnippetLen) + "..."
		}
		sources = append(sources, Source{
			Type:       chunk.blockType,
			Document:   chunk.document,
			Page:       chunk.page,
			Similarity: math.Round(chunk.similarity*1000) / 1000,
			Snippet:    snippet,
		})
	}
	return sources
}
