package annotations

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadGroupsByLabel(t *testing.T) {
	input := "a.png,Open\r\nb.png,Battle\r\nc.png,Open\r\nd.png,Null\r\ntruncated.png\r\n,Open\r\n"

	corpus, skipped, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", skipped)
	}
	if !reflect.DeepEqual(corpus.Images("Open"), []string{"a.png", "c.png"}) {
		t.Fatalf("unexpected Open images %v", corpus.Images("Open"))
	}
	if !reflect.DeepEqual(corpus.Labels(), []string{"Battle", "Open"}) {
		t.Fatalf("expected Null to be excluded from labels, got %v", corpus.Labels())
	}
	if corpus.Len() != 3 {
		t.Fatalf("expected 3 non-Null annotations, got %d", corpus.Len())
	}
	if len(corpus[NullLabel]) != 1 {
		t.Fatal("Null rows stay in the corpus map")
	}
}

func TestImagesReturnsCopy(t *testing.T) {
	corpus := Corpus{"Open": {"a.png"}}
	images := corpus.Images("Open")
	images[0] = "mutated.png"
	if corpus["Open"][0] != "a.png" {
		t.Fatal("Images must not expose the backing slice")
	}
	if got := corpus.Images("Missing"); len(got) != 0 {
		t.Fatalf("expected no images for unknown label, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	corpus, err := Load(filepath.Join(t.TempDir(), "annotations.csv"), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(corpus) != 0 {
		t.Fatalf("expected empty corpus, got %v", corpus)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.csv")
	if err := os.WriteFile(path, []byte("x.png,Open\ny.png,Open\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	corpus, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(corpus.Images("Open")) != 2 {
		t.Fatalf("expected 2 Open images, got %v", corpus)
	}
}

func TestLoadRejectsBrokenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.csv")
	if err := os.WriteFile(path, []byte("x.png,\"Open\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}
