package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	textArtifact = "result.txt"
	jsonArtifact = "result.json"
)

// SaveResults writes result.txt and result.json into outDir, creating it
// first. The JSON artifact always serializes to an array, even with no
// detections.
func SaveResults(plainText string, pages []PageDetections, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	if pages == nil {
		pages = []PageDetections{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("encode detections: %w", err)
	}

	if err := os.WriteFile(filepath.Join(outDir, textArtifact), []byte(plainText), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", textArtifact, err)
	}
	if err := os.WriteFile(filepath.Join(outDir, jsonArtifact), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonArtifact, err)
	}
	return nil
}

// joinPageTexts flattens per-page detections into the plain-text artifact:
// detections joined by newlines within a page, pages by blank lines.
func joinPageTexts(pages []PageDetections) string {
	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		lines := make([]string, 0, len(page))
		for _, d := range page {
			lines = append(lines, d.Text)
		}
		texts = append(texts, strings.Join(lines, "\n"))
	}
	return strings.Join(texts, "\n\n")
}
