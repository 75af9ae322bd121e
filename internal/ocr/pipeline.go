package ocr

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Options controls a single pipeline run.
type Options struct {
	Languages     []string
	DPI           int
	TextThreshold int
	RenderWorkers int
}

func (o *Options) applyDefaults() {
	if len(o.Languages) == 0 {
		o.Languages = []string{"rus", "eng"}
	}
	if o.DPI <= 0 {
		o.DPI = 300
	}
	if o.TextThreshold <= 0 {
		o.TextThreshold = 20
	}
	if o.RenderWorkers <= 0 {
		o.RenderWorkers = 2
	}
}

// Pipeline converts a PDF into the result.txt / result.json artifact pair.
// PDFs that already carry a text layer skip OCR entirely.
type Pipeline struct {
	engine Engine
	log    *logrus.Logger
}

// NewPipeline builds a pipeline around the given OCR engine.
func NewPipeline(engine Engine, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{engine: engine, log: log}
}

// Run processes pdfPath and writes artifacts into outDir.
func (p *Pipeline) Run(ctx context.Context, pdfPath, outDir string, opts Options) error {
	opts.applyDefaults()
	start := time.Now()

	if p.isTextual(pdfPath, opts.TextThreshold) {
		p.log.WithField("pdf", pdfPath).Info("textual pdf, extracting embedded text")
		text, err := extractAllText(pdfPath)
		if err != nil {
			return fmt.Errorf("extract text layer: %w", err)
		}
		return SaveResults(text, nil, outDir)
	}

	pages, err := pageCount(pdfPath)
	if err != nil {
		return err
	}
	if pages == 0 {
		return fmt.Errorf("pdf has no pages")
	}

	workDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	images, err := renderAll(ctx, pdfPath, workDir, pages, opts.DPI, opts.RenderWorkers)
	if err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}

	results := make([]PageDetections, 0, pages)
	for i, img := range images {
		detections, err := p.engine.Recognize(ctx, img, opts.Languages)
		if err != nil {
			return fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		p.log.WithFields(logrus.Fields{
			"page":       i + 1,
			"pages":      pages,
			"detections": len(detections),
		}).Debug("page recognized")
		results = append(results, detections)
	}

	if err := SaveResults(joinPageTexts(results), results, outDir); err != nil {
		return err
	}
	p.log.WithFields(logrus.Fields{
		"pdf":      pdfPath,
		"pages":    pages,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("ocr finished")
	return nil
}
