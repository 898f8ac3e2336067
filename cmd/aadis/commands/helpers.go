package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/srinivastls/AADIS/internal/agent"
	"github.com/srinivastls/AADIS/internal/docstore"
	"github.com/srinivastls/AADIS/internal/embedder"
	"github.com/srinivastls/AADIS/internal/history"
	"github.com/srinivastls/AADIS/internal/index"
	"github.com/srinivastls/AADIS/internal/orchestrator"
	"github.com/srinivastls/AADIS/internal/query"
	"github.com/srinivastls/AADIS/internal/server"
	"github.com/srinivastls/AADIS/internal/supervisor"
)

// defaultCollection is the Qdrant collection the ingestion pipeline writes
// text-block embeddings to.
const defaultCollection = "aadis_text_blocks"

// qaCore bundles the wired QA system and the handles commands need to
// release it.
type qaCore struct {
	orch    *orchestrator.Orchestrator
	pingers []server.Pinger
	closers []func() error
}

// close releases all resources held by the core, keeping the first error.
func (c *qaCore) close() {
	for _, fn := range c.closers {
		_ = fn()
	}
}

// buildQACore wires the document store, similarity index, embedding backend,
// agents, supervisor, history store, and orchestrator from the environment.
func buildQACore(ctx context.Context, log *slog.Logger) (*qaCore, error) {
	core := &qaCore{}

	store, err := docstore.Open(resolvePath("AADIS_DB", "documents.db"))
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	core.closers = append(core.closers, store.Close)
	core.pingers = append(core.pingers, store)

	emb, err := embedder.NewFromEnv()
	if err != nil {
		core.close()
		return nil, fmt.Errorf("initialise embedder: %w", err)
	}
	if p, ok := emb.(server.Pinger); ok {
		core.pingers = append(core.pingers, p)
	}

	idx, err := buildIndex(ctx)
	if err != nil {
		core.close()
		return nil, fmt.Errorf("initialise index: %w", err)
	}
	core.closers = append(core.closers, idx.Close)
	if p, ok := idx.(server.Pinger); ok {
		core.pingers = append(core.pingers, p)
	}

	hist, err := buildHistory(log)
	if err != nil {
		core.close()
		return nil, fmt.Errorf("open history store: %w", err)
	}
	core.closers = append(core.closers, hist.Close)

	sup := supervisor.New(query.NewAnalyzer(), map[query.Category]agent.Agent{
		query.CategoryText:  agent.NewTextRetrievalAgent(store, emb, idx),
		query.CategoryTable: agent.NewTableAnalysisAgent(store),
		query.CategoryImage: agent.NewImageAnalysisAgent(store),
	})
	core.orch = orchestrator.New(sup, hist)

	return core, nil
}

// buildIndex constructs the similarity index. Qdrant is the default backend;
// AADIS_INDEX=memory selects an in-process index for local experiments.
func buildIndex(ctx context.Context) (index.Index, error) {
	if os.Getenv("AADIS_INDEX") == "memory" {
		return index.NewMemoryIndex(), nil
	}

	port := 0
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}
	collection := os.Getenv("QDRANT_COLLECTION")
	if collection == "" {
		collection = defaultCollection
	}

	return index.NewQdrantIndex(ctx, &index.QdrantConfig{
		Host:       os.Getenv("QDRANT_HOST"),
		Port:       port,
		Collection: collection,
		VectorSize: uint64(embedder.DefaultDimensions(embedder.Backend())),
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
}

// buildHistory constructs the conversation history store.
// AADIS_HISTORY_DB selects the SQLite path; "memory" keeps history in-process.
func buildHistory(log *slog.Logger) (history.Store, error) {
	path := os.Getenv("AADIS_HISTORY_DB")
	if path == "memory" {
		log.Info("history: in-process store (not persisted)")
		return history.NewMemoryStore(), nil
	}
	if path == "" {
		path = dataPath("history.db")
	}
	store, err := history.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	log.Info("history: store opened", slog.String("path", path))
	return store, nil
}

// resolvePath returns the env var's value, falling back to the aadis data
// directory for the given filename.
func resolvePath(envKey, filename string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return dataPath(filename)
}

// dataPath returns ~/.aadis/<filename>, creating the directory if needed.
// Falls back to the working directory when the home directory is unknown.
func dataPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filename
	}
	dir := filepath.Join(home, ".aadis")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return filename
	}
	return filepath.Join(dir, filename)
}
