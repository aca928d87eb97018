package chunking

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// ChunkFile dispatches to the appropriate chunker based on filePath's
// extension, per §4.2's chunking dispatch table. content is the raw file
// bytes already read from disk; for PDFs, filePath must point at a file
// readable from disk (the PDF library streams pages itself rather than
// accepting an in-memory buffer).
func ChunkFile(filePath string, content []byte, maxSize, minSize int) []string {
	filename := filepath.Base(filePath)
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".json":
		return chunkJSON(content, filename, maxSize, minSize)
	case ".md", ".markdown", ".rst":
		return MarkdownToChunks(string(content), filename, maxSize, minSize)
	case ".pdf":
		return PDFToChunks(filePath, filename, maxSize, minSize)
	default:
		return TextToChunks(string(content), filename, maxSize, minSize)
	}
}

func chunkJSON(content []byte, filename string, maxSize, minSize int) []string {
	var obj map[string]any
	if err := json.Unmarshal(content, &obj); err != nil {
		return TextToChunks(string(content), filename, maxSize, minSize)
	}

	switch {
	case IsMitreTechnique(obj):
		return []string{MitreToNaturalText(obj)}
	case IsDataflow(obj):
		return DataflowToNaturalText(obj, filename)
	case IsDeviceRecord(obj):
		return JSONToNaturalText(obj, filename)
	default:
		return TextToChunks(string(content), filename, maxSize, minSize)
	}
}
