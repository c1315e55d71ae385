package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"legalmitra-backend/document"
	"legalmitra-backend/llm"
	"legalmitra-backend/logger"
	"legalmitra-backend/models"
	"legalmitra-backend/session"

	"golang.org/x/sync/errgroup"
)

const extractWorkers = 4

// ChunkSearcher finds reference library chunks near an embedding
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]models.LegalChunk, error)
}

// ReferenceService manages uploaded reference PDFs and assembles the
// reference context sent with an analysis prompt
type ReferenceService struct {
	files      *FileService
	chunks     ChunkSearcher
	embedder   llm.Embedder
	maxPages   int
	maxFiles   int
	maxChars   int
	chunkLimit int
	log        *logger.Logger
}

// ReferenceServiceOption is a functional option for ReferenceService
type ReferenceServiceOption func(*ReferenceService)

// ReferenceWithFiles sets the file service used to store uploads
func ReferenceWithFiles(f *FileService) ReferenceServiceOption {
	return func(s *ReferenceService) {
		s.files = f
	}
}

// ReferenceWithLibrary enables vector search over the reference library
func ReferenceWithLibrary(chunks ChunkSearcher, embedder llm.Embedder, limit int) ReferenceServiceOption {
	return func(s *ReferenceService) {
		s.chunks = chunks
		s.embedder = embedder
		if limit > 0 {
			s.chunkLimit = limit
		}
	}
}

// ReferenceWithLimits sets the page, file and context size limits
func ReferenceWithLimits(maxPages, maxFiles, maxChars int) ReferenceServiceOption {
	return func(s *ReferenceService) {
		if maxPages > 0 {
			s.maxPages = maxPages
		}
		if maxFiles > 0 {
			s.maxFiles = maxFiles
		}
		if maxChars > 0 {
			s.maxChars = maxChars
		}
	}
}

// ReferenceWithLogger sets the logger
func ReferenceWithLogger(l *logger.Logger) ReferenceServiceOption {
	return func(s *ReferenceService) {
		s.log = l
	}
}

// NewReferenceService creates a new reference service
func NewReferenceService(opts ...ReferenceServiceOption) *ReferenceService {
	s := &ReferenceService{
		maxPages:   30,
		maxFiles:   5,
		maxChars:   30000,
		chunkLimit: 5,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LibraryEnabled reports whether vector search is configured
func (s *ReferenceService) LibraryEnabled() bool {
	return s.chunks != nil && s.embedder != nil
}

// Upload is one file received from a client
type Upload struct {
	Filename string
	Data     []byte
}

// UploadReferences extracts the text of each PDF and stores it in the session.
// Either every upload is stored or none is.
func (s *ReferenceService) UploadReferences(ctx context.Context, sess *session.Session, uploads []Upload) ([]*models.File, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files", ErrInvalidReference)
	}
	if len(uploads) > s.maxFiles {
		return nil, fmt.Errorf("%w: %d files, limit %d", ErrTooManyFiles, len(uploads), s.maxFiles)
	}
	if s.files == nil {
		return nil, fmt.Errorf("file storage not configured")
	}

	for _, u := range uploads {
		if !looksLikePDF(u) {
			return nil, fmt.Errorf("%w: %s is not a PDF", ErrInvalidReference, u.Filename)
		}
	}

	extractions := make([]document.Extraction, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractWorkers)
	for i, u := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ext, err := document.ExtractPDFText(u.Data, s.maxPages)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidReference, u.Filename, err)
			}
			extractions[i] = ext
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make([]*models.File, 0, len(uploads))
	for i, u := range uploads {
		file := &models.File{
			Kind:     models.FileKindReference,
			Filename: filepath.Base(u.Filename),
			MimeType: "application/pdf",
			Text:     extractions[i].Text,
			Pages:    extractions[i].Pages,
		}
		if err := s.files.Store(ctx, sess, file, u.Data); err != nil {
			// objects that survive the rollback stay until the session purge
			if rerr := s.files.RemoveAll(ctx, sess, files); rerr != nil {
				s.log.Warn("reference rollback incomplete", "session_id", sess.ID, "error", rerr)
			}
			return nil, err
		}
		if file.Text == "" {
			s.log.Warn("no extractable text in reference", "session_id", sess.ID, "filename", file.Filename)
		}
		files = append(files, file)
	}

	s.log.Info("references uploaded", "session_id", sess.ID, "files", len(files))
	return files, nil
}

// ListReferences returns the reference files uploaded to a session
func (s *ReferenceService) ListReferences(sess *session.Session) []*models.File {
	return sess.Files.ListByKind(models.FileKindReference)
}

// ContextRequest selects the sources of an analysis reference context
type ContextRequest struct {
	Scenario    string
	Text        string
	UseUploaded bool
	UseLibrary  bool
}

// ResolveContext concatenates the selected sources and caps the result at
// the configured size. Library failures only drop the library section.
func (s *ReferenceService) ResolveContext(ctx context.Context, sess *session.Session, req ContextRequest) string {
	var parts []string

	if text := strings.TrimSpace(req.Text); text != "" {
		parts = append(parts, text)
	}

	if req.UseUploaded {
		for _, f := range s.ListReferences(sess) {
			if f.Text != "" {
				parts = append(parts, fmt.Sprintf("[%s]\n%s", f.Filename, f.Text))
			}
		}
	}

	if req.UseLibrary {
		if lib, err := s.libraryContext(ctx, req.Scenario); err != nil {
			s.log.Warn("reference library unavailable", "session_id", sess.ID, "error", err)
		} else if lib != "" {
			parts = append(parts, lib)
		}
	}

	return truncateRunes(strings.Join(parts, "\n\n"), s.maxChars)
}

func (s *ReferenceService) libraryContext(ctx context.Context, scenario string) (string, error) {
	if !s.LibraryEnabled() {
		return "", fmt.Errorf("reference library not configured")
	}

	embedding, err := s.embedder.Embed(ctx, scenario)
	if err != nil {
		return "", fmt.Errorf("failed to embed scenario: %w", err)
	}

	chunks, err := s.chunks.SearchSimilar(ctx, embedding, s.chunkLimit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := fmt.Sprintf("%s #%d", c.SourceDocument, c.ChunkIndex)
		if c.Citation != nil && *c.Citation != "" {
			label = *c.Citation + ", " + label
		}
		fmt.Fprintf(&b, "[%s]\n%s", label, c.Text)
	}
	return b.String(), nil
}

func looksLikePDF(u Upload) bool {
	return bytes.HasPrefix(u.Data, []byte("%PDF")) || strings.EqualFold(filepath.Ext(u.Filename), ".pdf")
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}
