package document

import (
	"regexp"
	"strings"
)

// ChunkText splits text into pieces of at most size runes, cutting at
// paragraph breaks where possible. Consecutive chunks share up to overlap
// runes so a provision split across a boundary stays searchable. Overlap is
// ignored unless it is below half of size.
func ChunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size/2 {
		overlap = 0
	}

	var (
		chunks  []string
		current []rune
		fresh   int // runes added since the last flush
	)
	flush := func() {
		if fresh > 0 {
			if s := strings.TrimSpace(string(current)); s != "" {
				chunks = append(chunks, s)
			}
		}
		if overlap > 0 && len(current) > overlap {
			current = append([]rune(nil), current[len(current)-overlap:]...)
		} else {
			current = current[:0]
		}
		fresh = 0
	}

	for _, para := range strings.Split(text, "\n\n") {
		runes := []rune(strings.TrimSpace(para))
		if len(runes) == 0 {
			continue
		}

		if fresh > 0 && len(current)+2+len(runes) > size {
			flush()
		}
		if len(current) > 0 {
			current = append(current, '\n', '\n')
		}

		// paragraphs longer than a chunk are cut hard
		for len(current)+len(runes) > size {
			n := size - len(current)
			current = append(current, runes[:n]...)
			fresh += n
			runes = runes[n:]
			flush()
		}
		current = append(current, runes...)
		fresh += len(runes)
	}
	flush()

	return chunks
}

var sectionPattern = regexp.MustCompile(`(?i)\b(?:section|sec\.|s\.)\s*(\d+[A-Z]?)\b(?:\s+of\s+the\s+([A-Z][A-Za-z ,]*?(?:Code|Act)(?:,\s*\d{4})?))?`)

// DetectCitation returns the first statutory section reference in text,
// such as "Section 379, Indian Penal Code", or "" if there is none
func DetectCitation(text string) string {
	m := sectionPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	citation := "Section " + strings.ToUpper(m[1])
	if m[2] != "" {
		citation += ", " + strings.TrimSpace(m[2])
	}
	return citation
}
