package testsupport

import (
	"bytes"
	"encoding/csv"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pagesig/internal/signature"
)

// Screenshot describes a solid-colour test image with optional pixel
// overrides keyed by coordinate.
type Screenshot struct {
	Width, Height int
	Fill          signature.Color
	Pixels        map[image.Point]signature.Color
}

// Image renders the screenshot as an opaque NRGBA image.
func (s Screenshot) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	fill := color.NRGBA{R: s.Fill.R, G: s.Fill.G, B: s.Fill.B, A: 255}
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
	for pt, c := range s.Pixels {
		img.SetNRGBA(pt.X, pt.Y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}
	return img
}

// WritePNG encodes shot as a PNG at path, creating parent directories.
func WritePNG(t testing.TB, path string, shot Screenshot) {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, shot.Image()); err != nil {
		t.Fatalf("encode png %s: %v", path, err)
	}
	writeBytes(t, path, buf.Bytes())
}

// WriteAnnotations writes (image, label) rows to an annotation table.
func WriteAnnotations(t testing.TB, path string, rows [][2]string) {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row[:]); err != nil {
			t.Fatalf("encode annotation row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush annotations: %v", err)
	}
	writeBytes(t, path, buf.Bytes())
}

// WriteSignatures writes rows to a signature table.
func WriteSignatures(t testing.TB, path string, rows []signature.Row) {
	t.Helper()

	var buf bytes.Buffer
	if err := signature.WriteTable(&buf, rows, false); err != nil {
		t.Fatalf("encode signatures: %v", err)
	}
	writeBytes(t, path, buf.Bytes())
}

// WriteFile writes raw content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content string) {
	t.Helper()
	writeBytes(t, path, []byte(content))
}

func writeBytes(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
