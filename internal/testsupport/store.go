package testsupport

import (
	"testing"

	"pagesig/internal/config"
	"pagesig/internal/imagestore"
	"pagesig/internal/signature"
)

// MustOpenSignatures opens the configured signature table for tests.
func MustOpenSignatures(t testing.TB, cfg *config.Config) *signature.Store {
	t.Helper()

	store, err := signature.Open(cfg.Paths.SignaturesFile, signature.Options{Backup: cfg.Signatures.Backup})
	if err != nil {
		t.Fatalf("signature.Open: %v", err)
	}
	return store
}

// MustOpenImages opens the configured image directory for tests.
func MustOpenImages(t testing.TB, cfg *config.Config) *imagestore.Store {
	t.Helper()

	store, err := imagestore.New(cfg.Paths.ImagesDir, imagestore.Options{
		CacheSize:   cfg.Images.CacheSize,
		SwapRedBlue: cfg.Images.SwapRedBlue,
	})
	if err != nil {
		t.Fatalf("imagestore.New: %v", err)
	}
	return store
}
