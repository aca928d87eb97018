package chunking

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownToChunks splits markdown content at header boundaries, then
// applies the same recursive character split and overlap policy as
// TextToChunks within any section still over maxSize. Falls back to
// TextToChunks entirely when no headers are found.
func MarkdownToChunks(content, filename string, maxSize, minSize int) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}

	sections := splitByHeading(content)
	if len(sections) <= 1 {
		return TextToChunks(content, filename, maxSize, minSize)
	}

	var chunks []string
	for _, section := range sections {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		if len(section) <= maxSize {
			chunk := "Source: " + filename + "\n\n" + section
			if len(chunk) > minSize {
				chunks = append(chunks, chunk)
			}
			continue
		}
		chunks = append(chunks, TextToChunks(section, filename, maxSize, minSize)...)
	}

	if len(chunks) == 0 {
		return TextToChunks(content, filename, maxSize, minSize)
	}
	return chunks
}

// splitByHeading walks the markdown AST to find top-level heading byte
// offsets and slices the raw source between them, so each section keeps
// its own heading line plus the body text that follows it.
func splitByHeading(content string) []string {
	source := []byte(content)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var offsets []int
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			if lines := h.Lines(); lines.Len() > 0 {
				// The heading's text segment starts after any "#" markers;
				// back up to the start of its line so the markers stay in
				// this section.
				start := lines.At(0).Start
				for start > 0 && source[start-1] != '\n' {
					start--
				}
				offsets = append(offsets, start)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil || len(offsets) == 0 {
		return nil
	}

	var sections []string
	if offsets[0] > 0 {
		sections = append(sections, string(source[:offsets[0]]))
	}
	for i, start := range offsets {
		end := len(source)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		sections = append(sections, string(source[start:end]))
	}
	return sections
}
