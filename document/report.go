package document

import (
	"errors"
	"time"
)

const (
	DefaultTitle  = "Legal Case Analysis Report"
	DefaultFooter = "Generated by LegalMitra - AI legal assistant"

	dateLayout = "02-01-2006 15:04"
)

var ErrUnsupportedText = errors.New("text cannot be encoded with the available font")

// Report is the content of an exported case document
type Report struct {
	Title       string
	CaseID      string
	Version     int
	Permalink   string
	GeneratedAt time.Time
	Scenario    string
	Analysis    string
	Footer      string
}

func (r Report) title() string {
	if r.Title == "" {
		return DefaultTitle
	}
	return r.Title
}

func (r Report) footer() string {
	if r.Footer == "" {
		return DefaultFooter
	}
	return r.Footer
}

func (r Report) date() string {
	if r.GeneratedAt.IsZero() {
		return time.Now().Format(dateLayout)
	}
	return r.GeneratedAt.Format(dateLayout)
}
