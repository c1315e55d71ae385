package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"legalmitra-backend/config"
	"legalmitra-backend/document"
	"legalmitra-backend/llm"
	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type options struct {
	dir       string
	chunkSize int
	overlap   int
	workers   int
	perMinute int
	force     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dir, "dir", "./reference_library", "Directory of statute and judgment PDFs")
	flag.IntVar(&opts.chunkSize, "chunk-size", 1500, "Maximum characters per chunk")
	flag.IntVar(&opts.overlap, "overlap", 200, "Characters shared by consecutive chunks")
	flag.IntVar(&opts.workers, "workers", 2, "Documents processed concurrently")
	flag.IntVar(&opts.perMinute, "embeddings-per-minute", 120, "Embedding request budget")
	flag.BoolVar(&opts.force, "force", false, "Re-index documents that already have chunks")
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
		log.Fatal("DATABASE_URL is required to build the reference index")
	}

	ctx := context.Background()

	gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey,
		llm.GeminiWithEmbeddingModel(cfg.EmbeddingModel),
		llm.GeminiWithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to initialize Gemini", "error", err)
	}
	defer gemini.Close()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	var tableExists bool
	err = pool.QueryRow(ctx, "SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'legal_chunks')").Scan(&tableExists)
	if err != nil {
		log.Fatal("Failed to check table existence", "error", err)
	}
	if !tableExists {
		log.Fatal("legal_chunks table does not exist. Please run: go run ./cmd/create-reference-schema")
	}

	paths, err := filepath.Glob(filepath.Join(opts.dir, "*.pdf"))
	if err != nil {
		log.Fatal("Failed to list reference documents", "error", err)
	}
	if len(paths) == 0 {
		log.Warn("No PDF documents found", "dir", opts.dir)
		return
	}

	ix := &indexer{
		chunks:   repository.NewLegalChunkRepository(pool),
		embedder: gemini,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(max(opts.perMinute, 1))), 1),
		opts:     opts,
		log:      log,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.workers, 1))
	for _, path := range paths {
		g.Go(func() error {
			// one bad document does not stop the others
			if err := ix.indexDocument(gctx, path); err != nil {
				ix.failed.Add(1)
				log.Error("Failed to index document", "file", filepath.Base(path), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	total, err := ix.chunks.Count(ctx)
	if err != nil {
		log.Warn("Failed to count chunks", "error", err)
	}
	log.Info("Reference index build complete",
		"documents", len(paths),
		"failed", ix.failed.Load(),
		"chunks_written", ix.written.Load(),
		"chunks_total", total,
	)
}

type indexer struct {
	chunks   *repository.LegalChunkRepository
	embedder *llm.Gemini
	limiter  *rate.Limiter
	opts     options
	log      *logger.Logger

	written atomic.Int64
	failed  atomic.Int64
}

func (ix *indexer) indexDocument(ctx context.Context, path string) error {
	source := filepath.Base(path)
	log := ix.log.With("file", source)

	existing, err := ix.chunks.CountBySource(ctx, source)
	if err != nil {
		return err
	}
	if existing > 0 {
		if !ix.opts.force {
			log.Info("Skipping, already indexed", "chunks", existing)
			return nil
		}
		if _, err := ix.chunks.DeleteBySource(ctx, source); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ext, err := document.ExtractPDFText(data, 0)
	if err != nil {
		return err
	}
	if ext.Text == "" {
		log.Warn("No extractable text, skipping", "pages", ext.TotalPages)
		return nil
	}

	pieces := document.ChunkText(ext.Text, ix.opts.chunkSize, ix.opts.overlap)
	log.Info("Chunked document", "pages", ext.Pages, "chunks", len(pieces))

	title := strings.TrimSuffix(source, filepath.Ext(source))
	for i, text := range pieces {
		if err := ix.limiter.Wait(ctx); err != nil {
			return err
		}

		embedding, err := ix.embedder.EmbedDocument(ctx, title, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		chunk := &models.LegalChunk{
			Text:           text,
			SourceDocument: source,
			ChunkIndex:     i,
		}
		if c := document.DetectCitation(text); c != "" {
			chunk.Citation = &c
		}
		if err := ix.chunks.Upsert(ctx, chunk, embedding); err != nil {
			return err
		}
		ix.written.Add(1)
	}

	log.Info("Indexed document", "chunks", len(pieces))
	return nil
}
