package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"legalmitra-backend/config"
	"legalmitra-backend/logger"
	"legalmitra-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	var drop bool
	flag.BoolVar(&drop, "drop", false, "Drop the existing legal_chunks table first")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.ReferenceLibraryEnabled() {
		log.Fatal("DATABASE_URL is required to create the reference schema")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		log.Warn("Failed to create pgvector extension", "error", err)
	} else {
		log.Info("pgvector extension enabled")
	}

	if drop {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS legal_chunks CASCADE"); err != nil {
			log.Fatal("Failed to drop table", "error", err)
		}
		log.Info("Dropped existing legal_chunks table")
	}

	schemaSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS legal_chunks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),

    -- statute or judgment file the chunk was cut from
    source_document VARCHAR(255) NOT NULL,
    chunk_index INTEGER NOT NULL,

    chunk_text TEXT NOT NULL,
    citation TEXT,

    embedding vector(%d),

    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),

    CONSTRAINT chunk_order_unique UNIQUE (source_document, chunk_index)
);`, repository.EmbeddingDimensions)

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatal("Failed to create legal_chunks table", "error", err)
	}
	log.Info("Created legal_chunks table")

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Vector similarity search (HNSW)",
			sql: `CREATE INDEX IF NOT EXISTS idx_embedding_hnsw ON legal_chunks
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
		},
		{
			name: "Source document filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_source_document ON legal_chunks(source_document);",
		},
		{
			name: "Citation lookup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_citation ON legal_chunks(citation) WHERE citation IS NOT NULL;",
		},
	}

	created := 0
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Warn("Failed to create index", "index", idx.name, "error", err)
			continue
		}
		created++
		log.Info("Created index", "index", idx.name)
	}

	log.Info("Reference schema ready", "table", "legal_chunks", "indexes", created)
}
