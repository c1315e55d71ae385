package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// DocxFont is set on every run so Indic text renders in any viewer that
// has the Noto family installed
const DocxFont = "Noto Sans"

type docxWriter struct {
	doc *docx.RootDoc
}

func (w *docxWriter) heading(text string, level uint) error {
	p, err := w.doc.AddHeading("", level)
	if err != nil {
		return fmt.Errorf("failed to add heading %q: %w", text, err)
	}
	p.AddText(text).Font(DocxFont)
	return nil
}

func (w *docxWriter) para(style, text string, bold bool) {
	p := w.doc.AddEmptyParagraph()
	if style != "" {
		p.Style(style)
	}
	if text != "" {
		p.AddText(text).Font(DocxFont).Bold(bold)
	}
}

// RenderDOCX produces a Word document for a report
func RenderDOCX(rep Report) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("failed to create docx: %w", err)
	}
	w := &docxWriter{doc: doc}

	if err := w.heading(rep.title(), 0); err != nil {
		return nil, err
	}
	w.para("", "Case ID: "+rep.CaseID, true)
	w.para("", "Date: "+rep.date(), true)
	if rep.Version > 0 {
		w.para("", fmt.Sprintf("Version: %d", rep.Version), true)
	}
	if rep.Permalink != "" {
		w.para("", "Permalink: "+rep.Permalink, true)
	}

	if err := w.heading("Case Scenario", 1); err != nil {
		return nil, err
	}
	for _, line := range strings.Split(rep.Scenario, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			w.para("", line, false)
		}
	}

	if err := w.heading("Legal Analysis", 1); err != nil {
		return nil, err
	}
	for _, b := range Parse(rep.Analysis) {
		switch b.Kind {
		case BlockHeading:
			if err := w.heading(b.Text, 2); err != nil {
				return nil, err
			}
		case BlockBullet:
			w.para("List Bullet", b.Text, false)
		case BlockNumbered:
			// the number comes from the analysis, not from list numbering
			w.para("List Paragraph", b.Number+". "+b.Text, false)
		case BlockParagraph:
			w.para("", b.Text, false)
		case BlockBreak:
			w.para("", "", false)
		}
	}

	w.para("", "", false)
	footer := doc.AddEmptyParagraph()
	footer.AddText(rep.footer()).Font(DocxFont).Italic(true).Color("808080")

	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		return nil, fmt.Errorf("failed to write docx: %w", err)
	}
	return out.Bytes(), nil
}
