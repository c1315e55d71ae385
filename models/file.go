package models

import (
	"time"

	"github.com/google/uuid"
)

// FileKind distinguishes uploaded references from generated exports
type FileKind string

const (
	FileKindReference FileKind = "reference"
	FileKindExport    FileKind = "export"
)

// File represents a file held in the storage backend for a session
type File struct {
	ID          uuid.UUID `json:"id"`
	Kind        FileKind  `json:"kind"`
	CaseID      string    `json:"case_id,omitempty"`
	Filename    string    `json:"filename"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	StoragePath string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`

	// Extracted text, only for reference uploads
	Text  string `json:"-"`
	Pages int    `json:"pages,omitempty"`
}
