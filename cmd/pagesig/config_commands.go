package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pagesig/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configInitTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			// CreateSample creates missing parent directories.
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Point [paths] at your screenshots, annotation table and signature table before running an audit.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file (default ~/.config/pagesig/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func configInitTarget(flag string) (string, error) {
	if target := strings.TrimSpace(flag); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); err != nil {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"paths.images_dir", cfg.Paths.ImagesDir},
					{"paths.annotations_file", cfg.Paths.AnnotationsFile},
					{"paths.signatures_file", cfg.Paths.SignaturesFile},
					{"classifier.tolerance", fmt.Sprint(cfg.Classifier.Tolerance)},
					{"images.cache_size", fmt.Sprint(cfg.Images.CacheSize)},
					{"images.swap_red_blue", yesNo(cfg.Images.SwapRedBlue)},
					{"signatures.backup", yesNo(cfg.Signatures.Backup)},
					{"logging", cfg.Logging.Format + " / " + cfg.Logging.Level},
				},
				nil,
			))
			warnMissing(cmd, "images directory", cfg.Paths.ImagesDir)
			warnMissing(cmd, "annotation table", cfg.Paths.AnnotationsFile)
			warnMissing(cmd, "signature table", cfg.Paths.SignaturesFile)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func warnMissing(cmd *cobra.Command, what, path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine(what, statusWarn, "not found at "+path, shouldColorize(cmd.OutOrStdout())))
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
