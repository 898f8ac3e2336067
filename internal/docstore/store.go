package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// ErrNotFound is returned when a requested record does not exist.
// Callers treat it as missing evidence, not as a collaborator failure.
var ErrNotFound = errors.New("docstore: not found")

// Reader is the read interface the QA core depends on.
// Implementations must be safe for concurrent readers.
type Reader interface {
	// Documents returns all documents in the store.
	Documents(ctx context.Context) ([]Document, error)
	// DocumentByID returns the document with the given id,
	// or ErrNotFound if it does not exist.
	DocumentByID(ctx context.Context, id int64) (*Document, error)
	// FirstTextBlock returns the first text block (by reading order) on the
	// given page of the given document, or ErrNotFound if the page has none.
	FirstTextBlock(ctx context.Context, documentID int64, page int) (*TextBlock, error)
	// Tables returns all table records in the store.
	Tables(ctx context.Context) ([]TableRecord, error)
	// Images returns all image records in the store.
	Images(ctx context.Context) ([]ImageRecord, error)
}

// SQLiteStore implements Reader backed by the SQLite database the ingestion
// pipeline writes. It also exposes Put* methods used by the ingestion side
// and by tests; the QA core never calls them.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// Open opens (or creates) a SQLiteStore at the given path and ensures the
// schema exists. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("docstore: open %s: %w", path, err)
	}
	// Single connection avoids SQLITE_BUSY when the ingestion side writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    filename    TEXT    NOT NULL UNIQUE,
    status      TEXT    NOT NULL DEFAULT 'pending'
                CHECK(status IN ('pending','processing','completed','failed')),
    total_pages INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS text_blocks (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id   INTEGER NOT NULL REFERENCES documents(id),
    content       TEXT    NOT NULL,
    block_type    TEXT    NOT NULL DEFAULT 'paragraph',
    page_number   INTEGER NOT NULL,
    reading_order INTEGER NOT NULL DEFAULT 0,
    vector_key    TEXT    NOT NULL UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_text_blocks_doc_page
    ON text_blocks (document_id, page_number, reading_order);
CREATE TABLE IF NOT EXISTS tables (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL REFERENCES documents(id),
    caption     TEXT    NOT NULL DEFAULT '',
    page_number INTEGER NOT NULL,
    payload     TEXT    NOT NULL  -- JSON: {"headers":[...],"rows":[[...]],"data":[{...}]}
);
CREATE TABLE IF NOT EXISTS images (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id INTEGER NOT NULL REFERENCES documents(id),
    image_path  TEXT    NOT NULL,
    caption     TEXT    NOT NULL DEFAULT '',
    alt_text    TEXT    NOT NULL DEFAULT '',
    page_number INTEGER NOT NULL,
    width       INTEGER NOT NULL DEFAULT 0,
    height      INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("docstore: migrate: %w", err)
	}
	return nil
}

// tablePayload is the JSON shape of the tables.payload column.
type tablePayload struct {
	Headers []string            `json:"headers,omitempty"`
	Rows    [][]string          `json:"rows,omitempty"`
	Data    []map[string]string `json:"data,omitempty"`
}

// Documents returns all documents in the store.
func (s *SQLiteStore) Documents(ctx context.Context) ([]Document, error) {
	const q = `SELECT id, filename, status, total_pages FROM documents ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("docstore: documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.Status, &d.TotalPages); err != nil {
			return nil, fmt.Errorf("docstore: documents scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: documents rows: %w", err)
	}
	return docs, nil
}

// DocumentByID returns the document with the given id, or ErrNotFound.
func (s *SQLiteStore) DocumentByID(ctx context.Context, id int64) (*Document, error) {
	const q = `SELECT id, filename, status, total_pages FROM documents WHERE id = ?`
	var d Document
	err := s.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.Filename, &d.Status, &d.TotalPages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: document %d: %w", id, err)
	}
	return &d, nil
}

// FirstTextBlock returns the first block on the given document page by
// reading order, or ErrNotFound. This is a document+page join, not an exact
// per-block one: when a page holds several blocks the first one wins, so hit
// metadata can be attributed to a sibling block on the same page.
func (s *SQLiteStore) FirstTextBlock(ctx context.Context, documentID int64, page int) (*TextBlock, error) {
	const q = `
SELECT id, document_id, content, block_type, page_number, reading_order, vector_key
FROM   text_blocks
WHERE  document_id = ? AND page_number = ?
ORDER  BY reading_order, id
LIMIT  1`
	var b TextBlock
	err := s.db.QueryRowContext(ctx, q, documentID, page).Scan(
		&b.ID, &b.DocumentID, &b.Content, &b.BlockType, &b.PageNumber, &b.ReadingOrder, &b.VectorKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: text block doc=%d page=%d: %w", documentID, page, err)
	}
	return &b, nil
}

// Tables returns all table records, decoding each structured payload.
// A payload that fails to decode yields a record with empty structure rather
// than failing the whole listing — malformed evidence is handled downstream.
func (s *SQLiteStore) Tables(ctx context.Context) ([]TableRecord, error) {
	const q = `SELECT id, document_id, caption, page_number, payload FROM tables ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("docstore: tables: %w", err)
	}
	defer rows.Close()

	var tables []TableRecord
	for rows.Next() {
		var t TableRecord
		var payload string
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.Caption, &t.PageNumber, &payload); err != nil {
			return nil, fmt.Errorf("docstore: tables scan: %w", err)
		}
		var p tablePayload
		if err := json.Unmarshal([]byte(payload), &p); err == nil {
			t.Headers = p.Headers
			t.Rows = p.Rows
			t.Records = p.Data
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: tables rows: %w", err)
	}
	return tables, nil
}

// Images returns all image records in the store.
func (s *SQLiteStore) Images(ctx context.Context) ([]ImageRecord, error) {
	const q = `
SELECT id, document_id, image_path, caption, alt_text, page_number, width, height
FROM   images ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("docstore: images: %w", err)
	}
	defer rows.Close()

	var images []ImageRecord
	for rows.Next() {
		var img ImageRecord
		if err := rows.Scan(&img.ID, &img.DocumentID, &img.ImagePath, &img.Caption,
			&img.AltText, &img.PageNumber, &img.Width, &img.Height); err != nil {
			return nil, fmt.Errorf("docstore: images scan: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore: images rows: %w", err)
	}
	return images, nil
}

// PutDocument inserts a document and returns its id.
// Write path for the ingestion pipeline and tests only.
func (s *SQLiteStore) PutDocument(ctx context.Context, d Document) (int64, error) {
	const q = `INSERT INTO documents (filename, status, total_pages) VALUES (?, ?, ?)`
	status := d.Status
	if status == "" {
		status = StatusPending
	}
	res, err := s.db.ExecContext(ctx, q, d.Filename, status, d.TotalPages)
	if err != nil {
		return 0, fmt.Errorf("docstore: put document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("docstore: put document id: %w", err)
	}
	return id, nil
}

// PutTextBlock inserts a text block and returns its id.
func (s *SQLiteStore) PutTextBlock(ctx context.Context, b TextBlock) (int64, error) {
	const q = `
INSERT INTO text_blocks (document_id, content, block_type, page_number, reading_order, vector_key)
VALUES (?, ?, ?, ?, ?, ?)`
	blockType := b.BlockType
	if blockType == "" {
		blockType = "paragraph"
	}
	res, err := s.db.ExecContext(ctx, q, b.DocumentID, b.Content, blockType,
		b.PageNumber, b.ReadingOrder, b.VectorKey)
	if err != nil {
		return 0, fmt.Errorf("docstore: put text block: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("docstore: put text block id: %w", err)
	}
	return id, nil
}

// PutTable inserts a table record, encoding its structured payload.
func (s *SQLiteStore) PutTable(ctx context.Context, t TableRecord) (int64, error) {
	payload, err := json.Marshal(tablePayload{Headers: t.Headers, Rows: t.Rows, Data: t.Records})
	if err != nil {
		return 0, fmt.Errorf("docstore: encode table payload: %w", err)
	}
	const q = `INSERT INTO tables (document_id, caption, page_number, payload) VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, t.DocumentID, t.Caption, t.PageNumber, string(payload))
	if err != nil {
		return 0, fmt.Errorf("docstore: put table: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("docstore: put table id: %w", err)
	}
	return id, nil
}

// PutImage inserts an image record and returns its id.
func (s *SQLiteStore) PutImage(ctx context.Context, img ImageRecord) (int64, error) {
	const q = `
INSERT INTO images (document_id, image_path, caption, alt_text, page_number, width, height)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, img.DocumentID, img.ImagePath, img.Caption,
		img.AltText, img.PageNumber, img.Width, img.Height)
	if err != nil {
		return 0, fmt.Errorf("docstore: put image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("docstore: put image id: %w", err)
	}
	return id, nil
}

// Ping verifies the database connection. Used by readiness checks.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("docstore: ping: %w", err)
	}
	return nil
}

// Name returns the dependency label used in readiness responses.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("docstore: close: %w", err)
	}
	return nil
}
