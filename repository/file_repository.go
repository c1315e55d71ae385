package repository

import (
	"errors"
	"sort"
	"sync"
	"time"

	"legalmitra-backend/models"

	"github.com/google/uuid"
)

var ErrFileNotFound = errors.New("file not found")

// FileRepository keeps the metadata of a session's stored files
type FileRepository struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*models.File
}

// NewFileRepository creates a new file repository
func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[uuid.UUID]*models.File)}
}

// Create records a file. ID and CreatedAt are filled in when empty.
func (r *FileRepository) Create(file *models.File) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if file.ID == uuid.Nil {
		file.ID = uuid.New()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	cp := *file
	r.files[file.ID] = &cp
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(id uuid.UUID) (*models.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, ok := r.files[id]
	if !ok {
		return nil, ErrFileNotFound
	}
	cp := *file
	return &cp, nil
}

// ListByKind retrieves the files of one kind, oldest first
func (r *FileRepository) ListByKind(kind models.FileKind) []*models.File {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var files []*models.File
	for _, f := range r.files {
		if f.Kind == kind {
			cp := *f
			files = append(files, &cp)
		}
	}
	sortFiles(files)
	return files
}

// All retrieves every file, oldest first
func (r *FileRepository) All() []*models.File {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files := make([]*models.File, 0, len(r.files))
	for _, f := range r.files {
		cp := *f
		files = append(files, &cp)
	}
	sortFiles(files)
	return files
}

// Delete removes a file record
func (r *FileRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.files, id)
}

func sortFiles(files []*models.File) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
}
