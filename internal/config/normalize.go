package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeClassifier(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ImagesDir, err = expandPath(strings.TrimSpace(c.Paths.ImagesDir)); err != nil {
		return fmt.Errorf("paths.images_dir: %w", err)
	}
	if c.Paths.AnnotationsFile, err = expandPath(strings.TrimSpace(c.Paths.AnnotationsFile)); err != nil {
		return fmt.Errorf("paths.annotations_file: %w", err)
	}
	if c.Paths.SignaturesFile, err = expandPath(strings.TrimSpace(c.Paths.SignaturesFile)); err != nil {
		return fmt.Errorf("paths.signatures_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeClassifier() error {
	if value, ok := os.LookupEnv("PAGESIG_TOLERANCE"); ok && strings.TrimSpace(value) != "" {
		tolerance, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("PAGESIG_TOLERANCE: %w", err)
		}
		c.Classifier.Tolerance = tolerance
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("PAGESIG_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		if expanded, err := expandPath(c.Logging.File); err == nil {
			c.Logging.File = expanded
		}
	}
}
