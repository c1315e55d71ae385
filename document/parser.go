// Package document turns case analysis text into structured blocks and
// renders case reports as PDF, DOCX and Markdown.
package document

import (
	"strings"
)

// BlockKind identifies how a line of analysis text is rendered
type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockBullet    BlockKind = "bullet"
	BlockNumbered  BlockKind = "numbered"
	BlockParagraph BlockKind = "paragraph"
	BlockBreak     BlockKind = "break"
)

// Block is one structural element of parsed text
type Block struct {
	Kind   BlockKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number string    `json:"number,omitempty"` // only for numbered items
}

var bulletPrefixes = []string{"- ", "* ", "• "}

// Parse splits model output into blocks. The input is treated as untrusted:
// every line lands in some block and nothing is rejected.
func Parse(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []Block
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		var b Block
		if line != "" {
			b = parseLine(line)
		}

		// a heading marker with no text reads as a break
		if line == "" || (b.Kind == BlockHeading && strings.TrimSpace(b.Text) == "") {
			if len(blocks) > 0 && blocks[len(blocks)-1].Kind != BlockBreak {
				blocks = append(blocks, Block{Kind: BlockBreak})
			}
			continue
		}

		blocks = append(blocks, b)
	}

	// no trailing break
	if n := len(blocks); n > 0 && blocks[n-1].Kind == BlockBreak {
		blocks = blocks[:n-1]
	}

	return blocks
}

func parseLine(line string) Block {
	if len(line) > 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") {
		return Block{Kind: BlockHeading, Text: cleanInline(line)}
	}

	if strings.HasPrefix(line, "#") {
		return Block{Kind: BlockHeading, Text: cleanInline(strings.TrimLeft(line, "# "))}
	}

	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return Block{Kind: BlockBullet, Text: cleanInline(line[len(prefix):])}
		}
	}

	if num, rest, ok := splitNumbered(line); ok {
		return Block{Kind: BlockNumbered, Number: num, Text: cleanInline(rest)}
	}

	return Block{Kind: BlockParagraph, Text: cleanInline(line)}
}

// splitNumbered recognises "12. text"
func splitNumbered(line string) (string, string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return "", "", false
	}
	return line[:i], strings.TrimSpace(line[i+1:]), true
}

// cleanInline strips markdown emphasis markers
func cleanInline(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "**", ""))
}
