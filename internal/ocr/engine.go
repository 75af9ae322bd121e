package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine turns one rasterized page image into ordered detections.
type Engine interface {
	Recognize(ctx context.Context, imagePath string, languages []string) (PageDetections, error)
}

// TesseractEngine recognizes text with a fresh gosseract client per page.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs the default OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient}
}

// Recognize runs tesseract over the image and returns line-level detections
// in recognition order. Confidence is normalized to [0,1].
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string, languages []string) (PageDetections, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if len(languages) > 0 {
		if err := c.SetLanguage(languages...); err != nil {
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	detections := make(PageDetections, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		detections = append(detections, Detection{
			BBox:       boxCorners(b.Box),
			Text:       text,
			Confidence: b.Confidence / 100.0,
		})
	}
	return detections, nil
}
