// Package ocr recognizes text lines in chart snapshots.
package ocr

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer returns the text lines found in an image, in reading order.
// An image without text yields no lines and no error.
type Recognizer interface {
	Lines(ctx context.Context, image []byte) ([]string, error)
}

// Tesseract recognizes text with a local tesseract installation.
type Tesseract struct {
	languages []string
}

// NewTesseract creates a recognizer for the given tesseract language codes.
func NewTesseract(languages ...string) *Tesseract {
	langs := make([]string, 0, len(languages))
	for _, l := range languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{"eng"}
	}
	return &Tesseract{languages: langs}
}

func (t *Tesseract) Lines(ctx context.Context, image []byte) ([]string, error) {
	if len(image) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize text lines: %w", err)
	}

	return ReadingOrder(boxes), nil
}

// ReadingOrder sorts recognized line boxes top to bottom, then left to right,
// and drops lines without text.
func ReadingOrder(boxes []gosseract.BoundingBox) []string {
	sorted := make([]gosseract.BoundingBox, 0, len(boxes))
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) != "" {
			sorted = append(sorted, b)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Box.Min.Y != sorted[j].Box.Min.Y {
			return sorted[i].Box.Min.Y < sorted[j].Box.Min.Y
		}
		return sorted[i].Box.Min.X < sorted[j].Box.Min.X
	})

	lines := make([]string, 0, len(sorted))
	for _, b := range sorted {
		lines = append(lines, strings.TrimSpace(b.Word))
	}
	return lines
}
