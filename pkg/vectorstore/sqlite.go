package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

func init() {
	// Auto-register sqlite-vec extension
	sqlite_vec.Auto()
}

// SQLiteStore implements Store on sqlite with the sqlite-vec extension
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Config holds vector store configuration
type Config struct {
	DBPath    string
	Dimension int
	Logger    zerolog.Logger
}

// NewSQLiteStore opens (or creates) the index at cfg.DBPath
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("database path is required")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New("embedding dimension must be positive")
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: cfg.Logger,
	}

	if err := s.initSchema(cfg.Dimension); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().Str("path", cfg.DBPath).Int("dimension", cfg.Dimension).Msg("Vector store initialized")
	return s, nil
}

// initSchema creates database tables
func (s *SQLiteStore) initSchema(dimension int) error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			date TEXT NOT NULL,
			doc_type TEXT NOT NULL,
			language TEXT,
			chunk_index INTEGER NOT NULL DEFAULT 0,
			total_chunks INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_documents_date ON documents(date);
		CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(doc_type);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	vectorSchema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS embeddings USING vec0(
			doc_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, dimension)

	if _, err := s.db.Exec(vectorSchema); err != nil {
		return fmt.Errorf("failed to create vector table: %w", err)
	}

	return nil
}

// Add writes documents and their vectors in one transaction
func (s *SQLiteStore) Add(ctx context.Context, texts []string, vectors [][]float32, metadata []Metadata) ([]string, error) {
	if len(texts) != len(vectors) || len(texts) != len(metadata) {
		return nil, fmt.Errorf("texts (%d), vectors (%d) and metadata (%d) must have equal length",
			len(texts), len(vectors), len(metadata))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	ids := make([]string, len(texts))

	for i, text := range texts {
		id := uuid.NewString()

		_, err := tx.ExecContext(ctx,
			"INSERT INTO documents (id, text, date, doc_type, language, chunk_index, total_chunks, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			id, text, metadata[i].Date, metadata[i].Type, metadata[i].Language,
			metadata[i].ChunkIndex, metadata[i].TotalChunks, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert document: %w", err)
		}

		embeddingJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal embedding: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO embeddings (doc_id, embedding) VALUES (?, ?)",
			id, string(embeddingJSON),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert embedding: %w", err)
		}

		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Debug().Int("count", len(ids)).Msg("Documents added")
	return ids, nil
}

// Search returns the nearest neighbors of the query vector
func (s *SQLiteStore) Search(ctx context.Context, queryVector []float32, limit int, filter *Filter) ([]SearchHit, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	embeddingJSON, err := json.Marshal(queryVector)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query vector: %w", err)
	}

	query := `
		SELECT d.id, d.text, d.date, d.doc_type, d.language, d.chunk_index, d.total_chunks,
			vec_distance_cosine(e.embedding, ?) AS distance
		FROM embeddings e
		JOIN documents d ON d.id = e.doc_id
	`
	args := []interface{}{string(embeddingJSON)}

	where, whereArgs := filterClause(filter)
	if where != "" {
		query += " WHERE " + where
		args = append(args, whereArgs...)
	}

	query += " ORDER BY distance ASC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		var language sql.NullString
		if err := rows.Scan(&h.ID, &h.Text, &h.Metadata.Date, &h.Metadata.Type, &language,
			&h.Metadata.ChunkIndex, &h.Metadata.TotalChunks, &h.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan hit: %w", err)
		}
		h.Metadata.Language = language.String
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

// GetAll returns matching documents in insertion order
func (s *SQLiteStore) GetAll(ctx context.Context, filter *Filter) ([]Document, error) {
	query := "SELECT id, text, date, doc_type, language, chunk_index, total_chunks FROM documents"
	var args []interface{}

	where, whereArgs := filterClause(filter)
	if where != "" {
		query += " WHERE " + where
		args = append(args, whereArgs...)
	}

	query += " ORDER BY rowid ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var language sql.NullString
		if err := rows.Scan(&d.ID, &d.Text, &d.Metadata.Date, &d.Metadata.Type, &language,
			&d.Metadata.ChunkIndex, &d.Metadata.TotalChunks); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Metadata.Language = language.String
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

// Delete removes documents and their vectors by ID
func (s *SQLiteStore) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete document %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE doc_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete embedding %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// UpdateMetadata replaces a document's metadata
func (s *SQLiteStore) UpdateMetadata(ctx context.Context, id string, metadata Metadata) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE documents SET date = ?, doc_type = ?, language = ?, chunk_index = ?, total_chunks = ? WHERE id = ?",
		metadata.Date, metadata.Type, metadata.Language, metadata.ChunkIndex, metadata.TotalChunks, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("document %s not found", id)
	}

	return nil
}

// Count returns the number of stored documents
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// filterClause builds a WHERE fragment for the optional metadata filter
func filterClause(filter *Filter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var clauses []string
	var args []interface{}

	if filter.Type != "" {
		clauses = append(clauses, "doc_type = ?")
		args = append(args, filter.Type)
	}
	if filter.DateFrom != "" {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.DateTo)
	}

	return strings.Join(clauses, " AND "), args
}
