package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"pagesig/internal/signature"
)

func newSignaturesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "signatures",
		Aliases: []string{"sig"},
		Short:   "Inspect the signature table",
	}
	cmd.AddCommand(newSignaturesListCommand(ctx))
	cmd.AddCommand(newSignaturesShowCommand(ctx))
	return cmd
}

type signatureSummary struct {
	Label  string `json:"label"`
	Pixels int    `json:"pixels"`
}

func newSignaturesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List labels and their pixel counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			summaries := make([]signatureSummary, 0, ws.signatures.Len())
			for _, label := range ws.signatures.Labels() {
				sig, _ := ws.signatures.Signature(label)
				summaries = append(summaries, signatureSummary{Label: label, Pixels: len(sig)})
			}

			if jsonOut {
				return writeJSON(cmd, summaries)
			}
			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintf(out, "No signatures in %s\n", ws.signatures.Path())
				return nil
			}
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{s.Label, strconv.Itoa(s.Pixels)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Label", "Pixels"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

type pixelJSON struct {
	Index int `json:"index"`
	signature.ReferencePixel
}

func newSignaturesShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show LABEL",
		Short: "Show the reference pixels of one signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			label := args[0]
			sig, ok := ws.signatures.Signature(label)
			if !ok {
				return fmt.Errorf("%w: %q", signature.ErrUnknownLabel, label)
			}

			if jsonOut {
				pixels := make([]pixelJSON, 0, len(sig))
				for i, px := range sig {
					pixels = append(pixels, pixelJSON{Index: i, ReferencePixel: px})
				}
				return writeJSON(cmd, map[string]any{"label": label, "pixels": pixels})
			}
			printSignature(cmd.OutOrStdout(), label, sig, nil)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	return cmd
}

// printSignature renders the pixels of sig, flagging indices in pending.
func printSignature(out io.Writer, label string, sig signature.Signature, pending map[int]bool) {
	fmt.Fprintf(out, "%s: %d reference pixels\n", label, len(sig))
	if len(sig) == 0 {
		return
	}
	rows := make([][]string, 0, len(sig))
	for i, px := range sig {
		mark := ""
		if pending[i] {
			mark = "remove"
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.Itoa(px.X),
			strconv.Itoa(px.Y),
			px.Color.String(),
			mark,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "X", "Y", "Colour", "Pending"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))
}
