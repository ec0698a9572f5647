package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"pagesig/internal/annotations"
	"pagesig/internal/config"
	"pagesig/internal/imagestore"
	"pagesig/internal/logging"
	"pagesig/internal/signature"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = strings.ToLower(format)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// workspace bundles the stores every data command reads from.
type workspace struct {
	cfg        *config.Config
	logger     *slog.Logger
	signatures *signature.Store
	corpus     annotations.Corpus
	images     *imagestore.Store
}

func (c *commandContext) openWorkspace() (*workspace, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	sigs, err := signature.Open(cfg.Paths.SignaturesFile, signature.Options{
		Backup: cfg.Signatures.Backup,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open signatures: %w", err)
	}
	corpus, err := annotations.Load(cfg.Paths.AnnotationsFile, logger)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	images, err := openImages(cfg, cfg.Paths.ImagesDir, logger)
	if err != nil {
		return nil, err
	}

	return &workspace{
		cfg:        cfg,
		logger:     logger,
		signatures: sigs,
		corpus:     corpus,
		images:     images,
	}, nil
}

func openImages(cfg *config.Config, dir string, logger *slog.Logger) (*imagestore.Store, error) {
	images, err := imagestore.New(dir, imagestore.Options{
		CacheSize:   cfg.Images.CacheSize,
		SwapRedBlue: cfg.Images.SwapRedBlue,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open images: %w", err)
	}
	return images, nil
}

// toleranceFlag returns the --tolerance value when set, else the configured one.
func toleranceFlag(cmd *cobra.Command, value int, cfg *config.Config) (int, error) {
	if !cmd.Flags().Changed("tolerance") {
		return cfg.Classifier.Tolerance, nil
	}
	if value < 0 || value > config.MaxTolerance {
		return 0, fmt.Errorf("--tolerance must be between 0 and %d, got %d", config.MaxTolerance, value)
	}
	return value, nil
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
