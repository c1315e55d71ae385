package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	unicodeFamily = "NotoSans"
	coreFamily    = "Helvetica"
)

type rgb struct{ r, g, b int }

var (
	titleColor   = rgb{102, 126, 234}
	sectionColor = rgb{118, 75, 162}
	bodyColor    = rgb{33, 33, 33}
	footerColor  = rgb{128, 128, 128}
)

// PDFRenderer renders reports with fpdf. Without a TTF font only text that
// fits Windows-1252 can be written.
type PDFRenderer struct {
	font []byte
}

// NewPDFRenderer loads the UTF-8 font at fontPath, if one is given
func NewPDFRenderer(fontPath string) (*PDFRenderer, error) {
	if fontPath == "" {
		return &PDFRenderer{}, nil
	}
	font, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF font: %w", err)
	}
	return &PDFRenderer{font: font}, nil
}

// UnicodeCapable reports whether a TTF font is loaded
func (r *PDFRenderer) UnicodeCapable() bool {
	return len(r.font) > 0
}

// pdfWriter keeps the first encoding error so layout code stays linear
type pdfWriter struct {
	pdf    *fpdf.Fpdf
	family string
	encode func(string) (string, error)
	err    error
}

func (w *pdfWriter) text(s string) string {
	if w.err != nil {
		return ""
	}
	out, err := w.encode(s)
	if err != nil {
		w.err = fmt.Errorf("%w: %q", ErrUnsupportedText, truncate(s, 40))
		return ""
	}
	return out
}

func (w *pdfWriter) style(style string, size float64, c rgb) {
	w.pdf.SetFont(w.family, style, size)
	w.pdf.SetTextColor(c.r, c.g, c.b)
}

func (w *pdfWriter) paragraph(s string, lineHeight float64) {
	w.pdf.MultiCell(0, lineHeight, w.text(s), "", "L", false)
}

// Render produces the PDF bytes for a report
func (r *PDFRenderer) Render(rep Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(19, 13, 19)
	pdf.SetAutoPageBreak(true, 13)

	w := &pdfWriter{pdf: pdf, family: coreFamily}
	if r.UnicodeCapable() {
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8FontFromBytes(unicodeFamily, style, r.font)
		}
		w.family = unicodeFamily
		w.encode = func(s string) (string, error) { return s, nil }
	} else {
		enc := charmap.Windows1252.NewEncoder()
		w.encode = func(s string) (string, error) {
			return enc.String(s)
		}
	}

	pdf.AddPage()

	w.style("B", 20, titleColor)
	pdf.CellFormat(0, 12, w.text(rep.title()), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	w.style("", 11, bodyColor)
	pdf.CellFormat(0, 6, w.text(fmt.Sprintf("Case ID: %s    Date: %s", rep.CaseID, rep.date())), "", 1, "L", false, 0, "")
	if rep.Version > 0 {
		pdf.CellFormat(0, 6, w.text(fmt.Sprintf("Version: %d", rep.Version)), "", 1, "L", false, 0, "")
	}
	if rep.Permalink != "" {
		pdf.CellFormat(0, 6, w.text("Permalink: "+rep.Permalink), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	w.style("B", 14, sectionColor)
	pdf.CellFormat(0, 8, w.text("Case Scenario"), "", 1, "L", false, 0, "")
	w.style("", 11, bodyColor)
	for _, line := range strings.Split(rep.Scenario, "\n") {
		if strings.TrimSpace(line) != "" {
			w.paragraph(line, 6)
		}
	}
	pdf.Ln(6)

	w.style("B", 14, sectionColor)
	pdf.CellFormat(0, 8, w.text("Legal Analysis"), "", 1, "L", false, 0, "")

	for _, b := range Parse(rep.Analysis) {
		switch b.Kind {
		case BlockHeading:
			pdf.Ln(2)
			w.style("B", 13, sectionColor)
			w.paragraph(b.Text, 7)
		case BlockBullet:
			w.style("", 11, bodyColor)
			w.paragraph("• "+b.Text, 6)
		case BlockNumbered:
			w.style("", 11, bodyColor)
			w.paragraph(b.Number+". "+b.Text, 6)
		case BlockParagraph:
			w.style("", 11, bodyColor)
			w.paragraph(b.Text, 6)
		case BlockBreak:
			pdf.Ln(3)
		}
	}

	pdf.Ln(10)
	w.style("I", 9, footerColor)
	pdf.CellFormat(0, 5, w.text(rep.footer()), "", 1, "C", false, 0, "")

	if w.err != nil {
		return nil, w.err
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
