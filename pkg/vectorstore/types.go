package vectorstore

// Document types stored in the index
const (
	TypeTranscriptionChunk = "transcription_chunk"
	TypeWeeklySummary      = "weekly_summary"
	TypeMonthlySummary     = "monthly_summary"
)

// Metadata describes a stored document
type Metadata struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Type        string `json:"type"`
	Language    string `json:"language,omitempty"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// Document is an immutable (text, metadata) pair owned by the store.
// Only metadata may be edited after the document is written.
type Document struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// SearchHit is a nearest-neighbor result with its raw distance
type SearchHit struct {
	Document
	Distance float64 `json:"distance"`
}

// Filter restricts a search or scan by metadata
type Filter struct {
	Type     string // exact document type
	DateFrom string // inclusive YYYY-MM-DD lower bound
	DateTo   string // inclusive YYYY-MM-DD upper bound
}
