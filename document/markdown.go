package document

import (
	"fmt"
	"strings"
)

// RenderMarkdown produces a normalised Markdown version of a report
func RenderMarkdown(rep Report) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rep.title())
	fmt.Fprintf(&b, "**Case ID:** %s  \n", rep.CaseID)
	fmt.Fprintf(&b, "**Date:** %s  \n", rep.date())
	if rep.Version > 0 {
		fmt.Fprintf(&b, "**Version:** %d  \n", rep.Version)
	}
	if rep.Permalink != "" {
		fmt.Fprintf(&b, "**Permalink:** `%s`  \n", rep.Permalink)
	}

	b.WriteString("\n## Case Scenario\n\n")
	b.WriteString(strings.TrimSpace(rep.Scenario))
	b.WriteString("\n\n## Legal Analysis\n\n")

	prev := BlockBreak
	for _, blk := range Parse(rep.Analysis) {
		// headings always start on a fresh paragraph
		if blk.Kind == BlockHeading && prev != BlockBreak {
			b.WriteString("\n")
		}
		switch blk.Kind {
		case BlockHeading:
			fmt.Fprintf(&b, "### %s\n\n", blk.Text)
		case BlockBullet:
			fmt.Fprintf(&b, "- %s\n", blk.Text)
		case BlockNumbered:
			fmt.Fprintf(&b, "%s. %s\n", blk.Number, blk.Text)
		case BlockParagraph:
			fmt.Fprintf(&b, "%s\n", blk.Text)
		case BlockBreak:
			b.WriteString("\n")
		}
		prev = blk.Kind
		if blk.Kind == BlockHeading {
			prev = BlockBreak
		}
	}

	fmt.Fprintf(&b, "\n---\n\n_%s_\n", rep.footer())
	return []byte(b.String())
}
