// Package web carries the embedded browser front-end and the upload helpers
// shared between the HTTP layer and the served script.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
)

//go:embed templates static
var assets embed.FS

// Templates parses the embedded HTML pages.
func Templates() *template.Template {
	return template.Must(template.ParseFS(assets, "templates/*.html"))
}

// Static exposes the embedded static assets for gin's StaticFS.
func Static() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

var sizeUnits = [4]string{"B", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with a four-step unit table in base
// 1024. The same formatting is mirrored in the served script.
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	value := float64(n)
	step := 0
	for value >= 1024 && step < len(sizeUnits)-1 {
		value /= 1024
		step++
	}
	if step == 0 {
		return fmt.Sprintf("%d B", n)
	}
	s := strconv.FormatFloat(value, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + " " + sizeUnits[step]
}

// IsPDFUpload accepts a file when its name ends in .pdf or its reported MIME
// type mentions pdf. Content is verified later by the pipeline, so a lying
// extension fails the task rather than the upload.
func IsPDFUpload(filename, contentType string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "pdf")
}

var pdfMagic = []byte("%PDF-")

// HasPDFMagic reports whether the stream starts with the %PDF- marker,
// rescuing real PDFs uploaded under a misleading name and MIME type. The
// reader is rewound before and after the check.
func HasPDFMagic(r io.ReadSeeker) bool {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return false
	}
	head := make([]byte, len(pdfMagic))
	n, _ := io.ReadFull(r, head)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return false
	}
	return n == len(pdfMagic) && string(head) == string(pdfMagic)
}
