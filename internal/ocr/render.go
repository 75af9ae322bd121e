package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const rendererBinary = "pdftoppm"

// EnsureRenderer checks that the rasterizer is available on PATH.
func EnsureRenderer() error {
	if _, err := exec.LookPath(rendererBinary); err != nil {
		return fmt.Errorf("%s binary not found: %w", rendererBinary, err)
	}
	return nil
}

func pageCount(pdfPath string) (int, error) {
	n, err := api.PageCountFile(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

// renderPage rasterizes a single page to PNG under workDir and returns the
// image path.
func renderPage(ctx context.Context, pdfPath, workDir string, page, dpi int) (string, error) {
	prefix := filepath.Join(workDir, "page")
	args := []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		pdfPath,
		prefix,
	}
	cmd := exec.CommandContext(ctx, rendererBinary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%s page %d: %w - %s", rendererBinary, page, err, out)
	}
	return findRenderedImage(prefix, page)
}

// findRenderedImage locates the output file; pdftoppm zero-pads the page
// suffix depending on the document's total page count.
func findRenderedImage(prefix string, page int) (string, error) {
	for width := 1; width <= 6; width++ {
		candidate := fmt.Sprintf("%s-%0*d.png", prefix, width, page)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("rendered image not found for page %d", page)
}

// renderAll rasterizes every page with a bounded worker pool, returning image
// paths indexed by page order. The first render error cancels the rest.
func renderAll(ctx context.Context, pdfPath, workDir string, pages, dpi, workers int) ([]string, error) {
	if workers <= 0 {
		workers = 2
	}

	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	images := make([]string, pages)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for page := 1; page <= pages; page++ {
		if renderCtx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(p int) {
			defer wg.Done()
			defer func() { <-sem }()
			path, err := renderPage(renderCtx, pdfPath, workDir, p, dpi)
			if err != nil {
				fail(err)
				return
			}
			images[p-1] = path
		}(page)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return images, nil
}
