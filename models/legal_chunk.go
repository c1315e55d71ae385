package models

import (
	"github.com/google/uuid"
)

// LegalChunk represents a chunk of statute or judgment text from the reference library
type LegalChunk struct {
	ID             uuid.UUID `json:"id"`
	Text           string    `json:"text"`
	SourceDocument string    `json:"source_document"`
	ChunkIndex     int       `json:"chunk_index"`
	Citation       *string   `json:"citation,omitempty"` // e.g. "IPC s.379"
	Distance       float64   `json:"distance,omitempty"` // Vector similarity distance
}
