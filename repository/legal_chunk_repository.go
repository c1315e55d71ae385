package repository

import (
	"context"
	"fmt"
	"strings"

	"legalmitra-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmbeddingDimensions is the vector size of the legal_chunks embedding column
const EmbeddingDimensions = 768

// LegalChunkRepository handles database operations for the reference library
type LegalChunkRepository struct {
	db *pgxpool.Pool
}

// NewLegalChunkRepository creates a new legal chunk repository
func NewLegalChunkRepository(db *pgxpool.Pool) *LegalChunkRepository {
	return &LegalChunkRepository{db: db}
}

// formatVector formats an embedding vector as a pgvector literal
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func checkDimensions(embedding []float32) error {
	if len(embedding) != EmbeddingDimensions {
		return fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}
	return nil
}

// SearchSimilar returns the chunks nearest to the embedding by cosine distance
func (r *LegalChunkRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]models.LegalChunk, error) {
	if err := checkDimensions(embedding); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT
			id,
			chunk_text,
			source_document,
			chunk_index,
			citation,
			embedding <=> $1::vector AS distance
		FROM legal_chunks
		ORDER BY embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, formatVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.LegalChunk
	for rows.Next() {
		var chunk models.LegalChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.Text,
			&chunk.SourceDocument,
			&chunk.ChunkIndex,
			&chunk.Citation,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal chunks: %w", err)
	}

	return chunks, nil
}

// Upsert stores a chunk with its embedding, replacing any chunk at the same
// (source_document, chunk_index) position
func (r *LegalChunkRepository) Upsert(ctx context.Context, chunk *models.LegalChunk, embedding []float32) error {
	if err := checkDimensions(embedding); err != nil {
		return err
	}

	query := `
		INSERT INTO legal_chunks (source_document, chunk_index, chunk_text, citation, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (source_document, chunk_index) DO UPDATE SET
			chunk_text = EXCLUDED.chunk_text,
			citation = EXCLUDED.citation,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()
		RETURNING id`

	err := r.db.QueryRow(
		ctx, query,
		chunk.SourceDocument,
		chunk.ChunkIndex,
		chunk.Text,
		chunk.Citation,
		formatVector(embedding),
	).Scan(&chunk.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert legal chunk: %w", err)
	}
	return nil
}

// Count returns the number of chunks in the library
func (r *LegalChunkRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM legal_chunks").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountBySource returns the number of chunks cut from one source document
func (r *LegalChunkRepository) CountBySource(ctx context.Context, source string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM legal_chunks WHERE source_document = $1", source).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks for %s: %w", source, err)
	}
	return n, nil
}

// DeleteBySource removes every chunk of a source document
func (r *LegalChunkRepository) DeleteBySource(ctx context.Context, source string) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM legal_chunks WHERE source_document = $1", source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks for %s: %w", source, err)
	}
	return tag.RowsAffected(), nil
}
