package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pagesig/internal/classifier"
	"pagesig/internal/logging"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var label string
	var tolerance int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "classify IMAGE",
		Short: "Classify one screenshot against the signature table",
		Long: "Classify one screenshot. IMAGE is an identifier inside paths.images_dir or a path\n" +
			"to an existing file. Without --label every matching label is listed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			label = strings.TrimSpace(label)
			if verbose && label == "" {
				return errors.New("--verbose requires --label")
			}
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			tol, err := toleranceFlag(cmd, tolerance, ws.cfg)
			if err != nil {
				return err
			}

			source, id, err := resolveImage(ws, args[0])
			if err != nil {
				return err
			}
			img, err := source.Open(id)
			if err != nil {
				return fmt.Errorf("open image %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if label == "" {
				c := classifier.New(source, tol, ws.logger)
				matches := c.MatchLabels(id, ws.signatures)
				if len(matches) == 0 {
					fmt.Fprintf(out, "No signature matches %s at tolerance %d\n", args[0], tol)
					return nil
				}
				for _, match := range matches {
					fmt.Fprintln(out, renderStatusLine(match, statusPass, "", colorize))
				}
				return nil
			}

			sig, ok := ws.signatures.Signature(label)
			if !ok {
				return fmt.Errorf("no signature for label %q", label)
			}
			matched := classifier.Classify(img, sig, tol)
			ws.logger.Debug("classified image",
				logging.String(logging.FieldImageID, id),
				logging.String(logging.FieldLabel, label),
				logging.Bool("matched", matched))

			kind := statusFail
			if matched {
				kind = statusPass
			}
			fmt.Fprintln(out, renderStatusLine(label, kind, fmt.Sprintf("%d pixels at tolerance %d", len(sig), tol), colorize))
			if verbose {
				printVerdicts(out, classifier.Evaluate(img, sig, tol), colorize)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Only test the signature for this label")
	cmd.Flags().IntVarP(&tolerance, "tolerance", "t", 0, "Per-channel colour tolerance (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print per-pixel verdicts (requires --label)")
	return cmd
}

// resolveImage prefers an identifier under the images directory and falls
// back to a path to an existing file elsewhere.
func resolveImage(ws *workspace, arg string) (classifier.ImageSource, string, error) {
	if path, err := ws.images.Path(arg); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return ws.images, arg, nil
		}
	}
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return ws.images, arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return nil, "", fmt.Errorf("resolve image path: %w", err)
	}
	images, err := openImages(ws.cfg, filepath.Dir(abs), ws.logger)
	if err != nil {
		return nil, "", err
	}
	return images, filepath.Base(abs), nil
}

func printVerdicts(out io.Writer, verdicts []classifier.Verdict, colorize bool) {
	if len(verdicts) == 0 {
		fmt.Fprintln(out, "Signature has no reference pixels")
		return
	}
	rows := make([][]string, 0, len(verdicts))
	for _, v := range verdicts {
		sampled := "out of bounds"
		if v.InBounds {
			sampled = v.Sampled.String()
		}
		rows = append(rows, []string{
			strconv.Itoa(v.Index),
			strconv.Itoa(v.X),
			strconv.Itoa(v.Y),
			v.Reference.String(),
			sampled,
			passFail(v.Matched, colorize),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "X", "Y", "Expected", "Sampled", "Result"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
}
