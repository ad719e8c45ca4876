package ingest

import (
	"strings"

	"editorial_ingest/internal/domain"
)

// NormalizeText turns a pasted free-text article into a candidate: the first
// non-empty line becomes the title, the remaining blocks become paragraphs.
// With preserve set, line breaks inside blocks are kept as <br/> instead of
// being collapsed, honoring the preserve-original mode.
func NormalizeText(payload string, preserve bool) domain.ArticleCandidate {
	lines := strings.Split(strings.TrimSpace(payload), "\n")

	title := ""
	bodyStart := 0
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			title = strings.TrimSpace(line)
			bodyStart = i + 1
			break
		}
	}

	blocks := splitBlocks(lines[min(bodyStart, len(lines)):])
	if len(blocks) == 0 && title != "" {
		blocks = []string{title}
	}

	var body strings.Builder
	for _, block := range blocks {
		body.WriteString("<p>")
		if preserve {
			body.WriteString(strings.ReplaceAll(block, "\n", "<br/>"))
		} else {
			body.WriteString(strings.Join(strings.Fields(block), " "))
		}
		body.WriteString("</p>")
	}

	excerpt := firstRunes(strings.Join(strings.Fields(strings.Join(blocks, " ")), " "), 160)

	return domain.ArticleCandidate{
		Title:   firstRunes(title, 120),
		Slug:    domain.Slugify(title),
		Excerpt: excerpt,
		Body:    body.String(),
	}
}

// splitBlocks groups consecutive non-empty lines, using blank lines as
// paragraph separators.
func splitBlocks(lines []string) []string {
	var blocks []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimSpace(line))
	}
	flush()

	return blocks
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
