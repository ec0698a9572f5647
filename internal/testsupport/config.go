package testsupport

import (
	"path/filepath"
	"testing"

	"pagesig/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
// Nothing is created on disk; use the Write helpers to populate fixtures.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ImagesDir = filepath.Join(base, "training", "images")
	cfgVal.Paths.AnnotationsFile = filepath.Join(base, "training", "annotations.csv")
	cfgVal.Paths.SignaturesFile = filepath.Join(base, "models", "page_rec_pixels.csv")
	cfgVal.Images.CacheSize = 8

	builder := &configBuilder{cfg: &cfgVal}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTolerance overrides the classifier tolerance.
func WithTolerance(tolerance int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classifier.Tolerance = tolerance
	}
}

// WithoutBackups disables signature table backups.
func WithoutBackups() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Signatures.Backup = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Paths.SignaturesFile))
}
