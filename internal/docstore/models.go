// Package docstore provides read access to the persisted outputs of the
// document ingestion pipeline: documents, text blocks, table records, and
// image records. The QA core only ever reads these; all writes happen in the
// ingestion pipeline, which shares this schema.
package docstore

// Document status values set by the ingestion pipeline.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document is an ingested source document.
type Document struct {
	// ID is the primary key assigned at ingestion.
	ID int64
	// Filename is the original file name, unique per store.
	Filename string
	// Status is one of the Status* lifecycle constants.
	Status string
	// TotalPages is the page count determined during layout analysis.
	TotalPages int
}

// TextBlock is a unit of extracted text with its position in the document.
type TextBlock struct {
	ID         int64
	DocumentID int64
	// Content is the raw text of the block.
	Content string
	// BlockType describes the layout role: paragraph, heading, list, etc.
	BlockType string
	PageNumber int
	// ReadingOrder is the block's position within the page's reading order.
	ReadingOrder int
	// VectorKey references this block's embedding in the similarity index.
	// Unique per block.
	VectorKey string
}

// TableRecord is an extracted table with its structured payload.
// Rows are not guaranteed to be as wide as Headers — the extraction pipeline
// emits ragged rows for malformed source tables, and readers must pad or skip.
type TableRecord struct {
	ID         int64
	DocumentID int64
	Caption    string
	PageNumber int
	// Headers is the ordered list of column names.
	Headers []string
	// Rows is the ordered list of row value lists.
	Rows [][]string
	// Records is an optional row-of-maps view of the same data. When present
	// it is preferred over Headers+Rows for analysis.
	Records []map[string]string
}

// ImageRecord is an extracted image with its descriptive metadata.
type ImageRecord struct {
	ID         int64
	DocumentID int64
	// ImagePath is where the extracted image file was written.
	ImagePath string
	Caption    string
	AltText    string
	PageNumber int
	// Width and Height are pixel dimensions; zero when unknown.
	Width  int
	Height int
}
