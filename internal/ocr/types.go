package ocr

import "image"

// Detection is a single recognized region on a page. BBox carries the four
// corner points of the axis-aligned box, clockwise from the top-left, which
// is the shape result.json consumers expect.
type Detection struct {
	BBox       [][]float64 `json:"bbox"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
}

// PageDetections holds a page's detections in recognition order.
type PageDetections []Detection

func boxCorners(r image.Rectangle) [][]float64 {
	x1, y1 := float64(r.Min.X), float64(r.Min.Y)
	x2, y2 := float64(r.Max.X), float64(r.Max.Y)
	return [][]float64{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
}
