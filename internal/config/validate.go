package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ImagesDir == "" {
		return errors.New("paths.images_dir must be set")
	}
	if c.Paths.AnnotationsFile == "" {
		return errors.New("paths.annotations_file must be set")
	}
	if c.Paths.SignaturesFile == "" {
		return errors.New("paths.signatures_file must be set")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if c.Classifier.Tolerance < 0 || c.Classifier.Tolerance > MaxTolerance {
		return fmt.Errorf("classifier.tolerance must be between 0 and %d, got %d", MaxTolerance, c.Classifier.Tolerance)
	}
	return nil
}

func (c *Config) validateImages() error {
	if c.Images.CacheSize < 0 {
		return errors.New("images.cache_size must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
