package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"pagesig/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PAGESIG_TOLERANCE", "")
	t.Setenv("PAGESIG_LOG_LEVEL", "")
	workDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(workDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantResolved := filepath.Join(tempHome, ".config", "pagesig", "config.toml")
	if resolved != wantResolved {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, wantResolved)
	}

	wantSignatures := filepath.Join(workDir, "data", "models", "page_rec_pixels.csv")
	if cfg.Paths.SignaturesFile != wantSignatures {
		t.Fatalf("unexpected signatures file: got %q want %q", cfg.Paths.SignaturesFile, wantSignatures)
	}
	if !filepath.IsAbs(cfg.Paths.ImagesDir) {
		t.Fatalf("expected absolute images dir, got %q", cfg.Paths.ImagesDir)
	}
	if cfg.Classifier.Tolerance != 20 {
		t.Fatalf("expected default tolerance 20, got %d", cfg.Classifier.Tolerance)
	}
	if !cfg.Signatures.Backup {
		t.Fatal("expected signature backups enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.LockPath() != wantSignatures+".lock" {
		t.Fatalf("unexpected lock path %q", cfg.LockPath())
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PAGESIG_TOLERANCE", "")
	t.Setenv("PAGESIG_LOG_LEVEL", "")

	dataDir := filepath.Join(tempHome, "clash")
	configPath := filepath.Join(tempHome, "pagesig.toml")
	payload := struct {
		Paths      config.Paths      `toml:"paths"`
		Classifier config.Classifier `toml:"classifier"`
		Images     config.Images     `toml:"images"`
		Logging    config.Logging    `toml:"logging"`
	}{
		Paths: config.Paths{
			ImagesDir:       "~/clash/images",
			AnnotationsFile: filepath.Join(dataDir, "annotations.csv"),
			SignaturesFile:  filepath.Join(dataDir, "pixels.csv"),
		},
		Classifier: config.Classifier{Tolerance: 12},
		Images:     config.Images{CacheSize: 0, SwapRedBlue: true},
		Logging:    config.Logging{Format: "JSON", Level: "DEBUG"},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q to exist, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Paths.ImagesDir != filepath.Join(dataDir, "images") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.ImagesDir)
	}
	if cfg.Classifier.Tolerance != 12 {
		t.Fatalf("expected tolerance 12, got %d", cfg.Classifier.Tolerance)
	}
	if cfg.Images.CacheSize != 0 || !cfg.Images.SwapRedBlue {
		t.Fatalf("unexpected images section: %+v", cfg.Images)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
}

func TestLoadRejectsOutOfRangeTolerance(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGESIG_LOG_LEVEL", "")
	t.Setenv("PAGESIG_TOLERANCE", "300")

	_, _, _, err := config.Load("")
	if err == nil {
		t.Fatal("expected validation error for tolerance 300")
	}
	if !strings.Contains(err.Error(), "classifier.tolerance") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadToleranceFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGESIG_LOG_LEVEL", "")
	t.Setenv("PAGESIG_TOLERANCE", " 7 ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Classifier.Tolerance != 7 {
		t.Fatalf("expected tolerance from env, got %d", cfg.Classifier.Tolerance)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PAGESIG_TOLERANCE", "")
	t.Setenv("PAGESIG_LOG_LEVEL", "")
	path := filepath.Join(home, "bad.toml")
	if err := os.WriteFile(path, []byte("[classifier]\ntolerence = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error for misspelled key")
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PAGESIG_TOLERANCE", "")
	t.Setenv("PAGESIG_LOG_LEVEL", "")
	target := filepath.Join(home, "nested", "config.toml")

	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Classifier.Tolerance != config.Default().Classifier.Tolerance {
		t.Fatalf("sample tolerance diverges from defaults: %d", cfg.Classifier.Tolerance)
	}
}
