package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagesig/internal/config"
	"pagesig/internal/signature"
	"pagesig/internal/testsupport"
)

var (
	white = signature.Color{R: 255, G: 255, B: 255}
	black = signature.Color{}
	red   = signature.Color{R: 255}
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv writes a small corpus: Home fails on plain.png because of
// its red pixel 2, and Battle classifies battle.png correctly.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", base)
	t.Setenv("PAGESIG_TOLERANCE", "")
	t.Setenv("PAGESIG_LOG_LEVEL", "")

	testsupport.WritePNG(t, filepath.Join(cfg.Paths.ImagesDir, "plain.png"), testsupport.Screenshot{
		Width: 4, Height: 4, Fill: white,
	})
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.ImagesDir, "marked.png"), testsupport.Screenshot{
		Width: 4, Height: 4, Fill: white,
		Pixels: map[image.Point]signature.Color{{X: 2, Y: 2}: red},
	})
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.ImagesDir, "battle.png"), testsupport.Screenshot{
		Width: 4, Height: 4, Fill: black,
	})
	testsupport.WriteAnnotations(t, cfg.Paths.AnnotationsFile, [][2]string{
		{"plain.png", "Home"},
		{"marked.png", "Home"},
		{"battle.png", "Battle"},
		{"plain.png", "Null"},
	})
	testsupport.WriteSignatures(t, cfg.Paths.SignaturesFile, []signature.Row{
		{Label: "Home", Signature: signature.Signature{
			{X: 0, Y: 0, Color: white},
			{X: 1, Y: 1, Color: white},
			{X: 2, Y: 2, Color: red},
		}},
		{Label: "Battle", Signature: signature.Signature{{X: 0, Y: 0, Color: black}}},
	})

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nimages_dir = %q\nannotations_file = %q\nsignatures_file = %q\n\n"+
			"[classifier]\ntolerance = %d\n\n[signatures]\nbackup = %t\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.ImagesDir,
		cfg.Paths.AnnotationsFile,
		cfg.Paths.SignaturesFile,
		cfg.Classifier.Tolerance,
		cfg.Signatures.Backup,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
