package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClassifyListsMatchingLabels(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"classify", "marked.png"}, env.configPath, "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "Home:")
	requireContains(t, out, "[PASS]")
	requireNotContains(t, out, "Battle")

	out, _, err = runCLI(t, []string{"classify", "plain.png"}, env.configPath, "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "No signature matches plain.png")
}

func TestClassifyVerboseShowsFailingPixel(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"classify", "plain.png", "--label", "Home", "--verbose"}, env.configPath, "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "[FAIL]")
	requireContains(t, out, "RGB(255, 0, 0)")
	requireContains(t, out, "RGB(255, 255, 255)")
}

func TestClassifyAcceptsPathOutsideImagesDir(t *testing.T) {
	env := setupCLITestEnv(t)
	data, err := os.ReadFile(filepath.Join(env.cfg.Paths.ImagesDir, "battle.png"))
	if err != nil {
		t.Fatal(err)
	}
	outside := filepath.Join(t.TempDir(), "capture.png")
	writeFile(t, outside, string(data))

	out, _, err := runCLI(t, []string{"classify", outside, "--label", "Battle"}, env.configPath, "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	requireContains(t, out, "[PASS]")
}

func TestClassifyErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"classify", "missing.png"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for missing image")
	}
	if _, _, err := runCLI(t, []string{"classify", "plain.png", "--label", "Nope"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for unknown label")
	}
	_, _, err := runCLI(t, []string{"classify", "plain.png", "--verbose"}, env.configPath, "")
	if err == nil || !strings.Contains(err.Error(), "--verbose requires --label") {
		t.Fatalf("expected --verbose without --label to fail, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
