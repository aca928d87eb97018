package chunking

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFToChunks extracts text from a PDF file page-by-page and applies
// TextToChunks to the joined result. Encrypted PDFs are attempted with an
// empty password implicitly (the reader simply fails to open them); any
// open or extraction failure yields an empty chunk list rather than an
// error, matching the sync engine's tolerant handling of unreadable files.
func PDFToChunks(path, filename string, maxSize, minSize int) []string {
	text, err := extractPDFText(path)
	if err != nil || strings.TrimSpace(text) == "" {
		return nil
	}
	return TextToChunks(text, filename, maxSize, minSize)
}

func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(content); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
