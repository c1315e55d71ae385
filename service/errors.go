package service

import (
	"errors"
	"fmt"
)

var (
	ErrAnalysisFailed    = errors.New("analysis failed")
	ErrExportFailed      = errors.New("export failed")
	ErrEmptyScenario     = errors.New("case scenario must not be empty")
	ErrEmptyEvidence     = errors.New("evidence must not be empty")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidReference  = errors.New("invalid reference document")
	ErrTooManyFiles      = errors.New("too many files in one upload")
)

// CollaboratorError reports a failed call to the text-generation model.
// It matches ErrAnalysisFailed with errors.Is.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() []error {
	return []error{ErrAnalysisFailed, e.Err}
}

// ExportError reports a document that could not be produced.
// It matches ErrExportFailed with errors.Is.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() []error {
	return []error{ErrExportFailed, e.Err}
}
