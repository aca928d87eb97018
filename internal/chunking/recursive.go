// Package chunking splits raw documents — plain text, markdown, PDF, and
// structured JSON — into content-bearing chunks sized for the embedding
// model and vector store, per the sync engine's type-aware dispatch.
package chunking

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators is the recursive-splitter cascade: paragraph breaks
// first, then lines, then sentence breaks, then words, then hard
// character boundaries.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Overlap returns the character overlap to carry between adjacent chunks:
// 15% of maxSize, capped at 200 characters.
func Overlap(maxSize int) int {
	o := int(float64(maxSize) * 0.15)
	if o > 200 {
		o = 200
	}
	if o < 0 {
		o = 0
	}
	return o
}

// TextToChunks splits content into chunks of at most maxSize characters,
// each prefixed with "Source: <filename>", discarding chunks at or below
// minSize. It walks the separator cascade — paragraphs, lines, sentences,
// words, characters — merging the resulting atoms greedily with overlap.
func TextToChunks(content, filename string, maxSize, minSize int) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	overlap := Overlap(maxSize)
	atoms := atomize(content, DefaultSeparators, maxSize)
	merged := mergeAtoms(atoms, maxSize, overlap)

	var chunks []string
	for _, m := range merged {
		chunk := "Source: " + filename + "\n\n" + strings.TrimSpace(m)
		if len(chunk) > minSize {
			chunks = append(chunks, chunk)
		}
	}

	if len(chunks) == 0 {
		truncated := content
		if len(truncated) > maxSize {
			truncated = truncated[:maxSize]
		}
		chunks = append(chunks, "Source: "+filename+"\n\n"+truncated)
	}
	return chunks
}

// atomize recursively splits text on the first separator that yields more
// than one piece, recursing into any piece still over maxSize with the
// remaining separators. Pieces with no separator left are hard-split at
// rune boundaries.
func atomize(text string, separators []string, maxSize int) []string {
	if len(text) <= maxSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return hardSplit(text, maxSize)
	}

	sep := separators[0]
	rest := separators[1:]

	if sep == "" {
		return hardSplit(text, maxSize)
	}

	parts := strings.Split(text, sep)
	if len(parts) <= 1 {
		return atomize(text, rest, maxSize)
	}

	var atoms []string
	for i, p := range parts {
		piece := p
		if i < len(parts)-1 {
			piece = p + sep
		}
		if piece == "" {
			continue
		}
		atoms = append(atoms, atomize(piece, rest, maxSize)...)
	}
	return atoms
}

// hardSplit breaks text into maxSize-rune pieces without regard to word
// boundaries — the last resort when no separator applies.
func hardSplit(text string, maxSize int) []string {
	if maxSize <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	var pieces []string
	for len(runes) > 0 {
		n := maxSize
		if n > len(runes) {
			n = len(runes)
		}
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	return pieces
}

// mergeAtoms greedily packs atoms into chunks no larger than maxSize,
// seeding each new chunk with the trailing overlap characters of the
// previous one for context continuity across the split boundary.
func mergeAtoms(atoms []string, maxSize, overlap int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
		}
	}

	for _, atom := range atoms {
		if current.Len() > 0 && current.Len()+len(atom) > maxSize {
			flush()
			tail := tailRunes(current.String(), overlap)
			current.Reset()
			current.WriteString(tail)
		}
		if len(atom) > maxSize && current.Len() == 0 {
			// atom alone exceeds maxSize even after atomize exhausted its
			// separators (can happen with maxSize <= 0 in hardSplit) —
			// emit as its own chunk rather than looping forever.
			chunks = append(chunks, atom)
			continue
		}
		current.WriteString(atom)
	}
	flush()
	return chunks
}

// tailRunes returns the trailing n runes of s, or all of s if shorter.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := utf8.RuneCountInString(s)
	if count <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[count-n:])
}
