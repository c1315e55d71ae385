package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrInvalidPDF = errors.New("invalid PDF document")

// Extraction is the text pulled out of an uploaded PDF
type Extraction struct {
	Text       string
	Pages      int // pages read
	TotalPages int
}

// ExtractPDFText reads the plain text of at most maxPages pages. Pages
// that fail to decode are skipped.
func ExtractPDFText(data []byte, maxPages int) (ext Extraction, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	ext.TotalPages = r.NumPage()
	limit := ext.TotalPages
	if maxPages > 0 && maxPages < limit {
		limit = maxPages
	}

	var b strings.Builder
	for i := 1; i <= limit; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
		ext.Pages++
	}

	ext.Text = strings.TrimSpace(b.String())
	return ext, nil
}
