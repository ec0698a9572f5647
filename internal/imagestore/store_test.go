package imagestore_test

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"pagesig/internal/imagestore"
	"pagesig/internal/signature"
	"pagesig/internal/testsupport"
)

func TestOpenSamplesRGB(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(dir, "a.png"), testsupport.Screenshot{
		Width: 4, Height: 3,
		Pixels: map[image.Point]signature.Color{{X: 1, Y: 2}: {R: 1, G: 2, B: 3}},
	})

	store, err := imagestore.New(dir, imagestore.Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, err := store.Open("a.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if got := img.ColorAt(1, 2); got != (signature.Color{R: 1, G: 2, B: 3}) {
		t.Fatalf("unexpected colour %v", got)
	}
}

func TestSwapRedBlue(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePNG(t, filepath.Join(dir, "bgr.png"), testsupport.Screenshot{
		Width: 1, Height: 1, Fill: signature.Color{R: 10, G: 20, B: 30},
	})

	store, err := imagestore.New(dir, imagestore.Options{SwapRedBlue: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, err := store.Open("bgr.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := img.ColorAt(0, 0); got != (signature.Color{R: 30, G: 20, B: 10}) {
		t.Fatalf("expected swapped channels, got %v", got)
	}
}

func TestFrameHandlesNonNRGBAImages(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.Pix[3] = 77
	frame := imagestore.NewFrame(gray, false)
	if got := frame.ColorAt(1, 1); got != (signature.Color{R: 77, G: 77, B: 77}) {
		t.Fatalf("unexpected grey sample %v", got)
	}

	offset := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	offset.Pix[0] = 9
	offset.Pix[3] = 255
	if got := imagestore.NewFrame(offset, false).ColorAt(0, 0); got.R != 9 {
		t.Fatalf("coordinates must be relative to bounds origin, got %v", got)
	}
}

func TestOpenCachesDecodedFrames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	testsupport.WritePNG(t, path, testsupport.Screenshot{Width: 1, Height: 1})

	store, err := imagestore.New(dir, imagestore.Options{CacheSize: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Open("a.png"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Open("a.png"); err != nil {
		t.Fatalf("expected cached frame after file removal, got %v", err)
	}

	store.Purge()
	if _, err := store.Open("a.png"); err == nil {
		t.Fatal("expected open failure after purge")
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "broken.png"), "not a png")

	store, err := imagestore.New(dir, imagestore.Options{CacheSize: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Open("missing.png"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := store.Open("broken.png"); err == nil {
		t.Fatal("expected decode error")
	}
	for _, id := range []string{"", "../escape.png", "/etc/passwd"} {
		if _, err := store.Open(id); !errors.Is(err, imagestore.ErrInvalidIdentifier) {
			t.Fatalf("expected ErrInvalidIdentifier for %q, got %v", id, err)
		}
	}
}
