package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pagesig/internal/calibration"
	"pagesig/internal/classifier"
	"pagesig/internal/logging"
)

func newCalibrateCommand(ctx *commandContext) *cobra.Command {
	var tolerance int

	cmd := &cobra.Command{
		Use:   "calibrate [LABEL]",
		Short: "Interactively prune unreliable reference pixels",
		Long: "Start an interactive calibration session. The corpus is audited first; select a\n" +
			"label, inspect its failing screenshots, mark pixel indices and commit them to\n" +
			"remove those pixels from the signature table. Type 'help' for commands.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := ctx.openWorkspace()
			if err != nil {
				return err
			}
			tol, err := toleranceFlag(cmd, tolerance, ws.cfg)
			if err != nil {
				return err
			}

			lock, err := acquireCalibrationLock(ws.cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					ws.logger.Warn("failed to release calibration lock", logging.Error(err))
				}
			}()

			sessionID := uuid.NewString()
			logger := ws.logger.With(logging.String(logging.FieldSessionID, sessionID))
			logger.Info("calibration session started",
				logging.String("signatures", ws.signatures.Path()),
				logging.Int("tolerance", tol))

			session := calibration.New(calibration.Deps{
				Images:     ws.images,
				Corpus:     ws.corpus,
				Signatures: ws.signatures,
				Logger:     logger,
			}, tol)

			out := cmd.OutOrStdout()
			repl := &calibrationREPL{
				session:  session,
				out:      out,
				colorize: shouldColorize(out),
			}
			if err := repl.exec(cmd.Context(), "audit"); err != nil {
				return err
			}
			if len(args) == 1 {
				if err := repl.exec(cmd.Context(), "select "+args[0]); err != nil {
					return err
				}
			}
			err = repl.run(cmd.Context(), cmd.InOrStdin())
			logger.Info("calibration session ended", logging.Int("commits", repl.commits))
			return err
		},
	}

	cmd.Flags().IntVarP(&tolerance, "tolerance", "t", 0, "Per-channel colour tolerance (default from config)")
	return cmd
}

func acquireCalibrationLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire calibration lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another calibration session is editing this signature table (lock %s)", path)
	}
	return lock, nil
}

var errQuit = errors.New("quit")

type replCommand struct {
	usage string
	help  string
	run   func(r *calibrationREPL, ctx context.Context, args []string) error
}

var replCommands map[string]replCommand

func init() {
	replCommands = map[string]replCommand{
		"labels":    {usage: "labels", help: "Show the latest audit report", run: (*calibrationREPL).cmdLabels},
		"audit":     {usage: "audit", help: "Re-run the audit at the current tolerance", run: (*calibrationREPL).cmdAudit},
		"select":    {usage: "select LABEL", help: "Focus on a label and its failing screenshots", run: (*calibrationREPL).cmdSelect},
		"show":      {usage: "show [IMAGE]", help: "Evaluate every pixel on the current (or given) screenshot", run: (*calibrationREPL).cmdShow},
		"pixels":    {usage: "pixels", help: "List the selected signature with pending removals", run: (*calibrationREPL).cmdPixels},
		"next":      {usage: "next", help: "Move to the next failing screenshot", run: (*calibrationREPL).cmdNext},
		"prev":      {usage: "prev", help: "Move to the previous failing screenshot", run: (*calibrationREPL).cmdPrev},
		"mark":      {usage: "mark INDEX...", help: "Mark pixel indices for removal", run: (*calibrationREPL).cmdMark},
		"unmark":    {usage: "unmark INDEX...", help: "Unmark pixel indices", run: (*calibrationREPL).cmdUnmark},
		"toggle":    {usage: "toggle INDEX...", help: "Flip pixel indices in the pending set", run: (*calibrationREPL).cmdToggle},
		"clear":     {usage: "clear", help: "Drop every pending removal", run: (*calibrationREPL).cmdClear},
		"pending":   {usage: "pending", help: "List pending removals", run: (*calibrationREPL).cmdPending},
		"commit":    {usage: "commit [LABEL]", help: "Remove pending pixels from the table and re-audit", run: (*calibrationREPL).cmdCommit},
		"tolerance": {usage: "tolerance [N]", help: "Show or set the tolerance (takes effect on the next audit)", run: (*calibrationREPL).cmdTolerance},
		"help":      {usage: "help", help: "Show this help", run: (*calibrationREPL).cmdHelp},
		"quit":      {usage: "quit", help: "End the session", run: (*calibrationREPL).cmdQuit},
	}
}

var replAliases = map[string]string{
	"exit": "quit",
	"q":    "quit",
	"n":    "next",
	"p":    "prev",
	"m":    "mark",
	"t":    "toggle",
	"?":    "help",
}

type calibrationREPL struct {
	session  *calibration.Session
	out      io.Writer
	colorize bool
	commits  int
}

func (r *calibrationREPL) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.prompt()
		if !scanner.Scan() {
			break
		}
		err := r.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
	fmt.Fprintln(r.out)
	if pending := r.session.Pending(); len(pending) > 0 {
		fmt.Fprintf(r.out, "Discarding %d pending removals\n", len(pending))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read command: %w", err)
	}
	return nil
}

func (r *calibrationREPL) prompt() {
	if label := r.session.Snapshot().Label; label != "" {
		fmt.Fprintf(r.out, "pagesig[%s]> ", label)
		return
	}
	fmt.Fprint(r.out, "pagesig> ")
}

func (r *calibrationREPL) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	if alias, ok := replAliases[name]; ok {
		name = alias
	}
	command, ok := replCommands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (type 'help')", fields[0])
	}
	return command.run(r, ctx, fields[1:])
}

func (r *calibrationREPL) cmdLabels(context.Context, []string) error {
	report, ok := r.session.Report()
	if !ok {
		return calibration.ErrNoAudit
	}
	printAuditReport(r.out, report, report.Totals())
	return nil
}

func (r *calibrationREPL) cmdAudit(ctx context.Context, _ []string) error {
	report, err := r.session.Audit(ctx)
	if err != nil {
		return err
	}
	printAuditReport(r.out, report, report.Totals())
	return nil
}

func (r *calibrationREPL) cmdSelect(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select LABEL")
	}
	if err := r.session.SelectLabel(args[0]); err != nil {
		return err
	}
	snap := r.session.Snapshot()
	fmt.Fprintf(r.out, "Selected %s: %d reference pixels, %d failing screenshots\n",
		snap.Label, len(snap.Signature), len(snap.FailingImages))
	return nil
}

func (r *calibrationREPL) cmdShow(_ context.Context, args []string) error {
	switch len(args) {
	case 0:
		insp, err := r.session.Inspect()
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Screenshot %d/%d: %s\n", insp.Position+1, insp.Of, insp.ImageID)
		if insp.ImageErr != nil {
			fmt.Fprintf(r.out, "Screenshot unavailable: %v\n", insp.ImageErr)
		}
		r.printVerdicts(insp.Verdicts)
		return nil
	case 1:
		verdicts, err := r.session.EvaluatePixels(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Screenshot: %s\n", args[0])
		r.printVerdicts(verdicts)
		return nil
	default:
		return errors.New("usage: show [IMAGE]")
	}
}

func (r *calibrationREPL) printVerdicts(verdicts []classifier.Verdict) {
	pending := r.pendingSet()
	failed := 0
	rows := make([][]string, 0, len(verdicts))
	for _, v := range verdicts {
		if !v.Matched {
			failed++
		}
		sampled := "out of bounds"
		if v.InBounds {
			sampled = v.Sampled.String()
		}
		mark := ""
		if pending[v.Index] {
			mark = "remove"
		}
		rows = append(rows, []string{
			strconv.Itoa(v.Index),
			strconv.Itoa(v.X),
			strconv.Itoa(v.Y),
			v.Reference.String(),
			sampled,
			passFail(v.Matched, r.colorize),
			mark,
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(r.out, "Signature has no reference pixels")
		return
	}
	fmt.Fprintln(r.out, renderTable(
		[]string{"#", "X", "Y", "Expected", "Sampled", "Result", "Pending"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(r.out, "%d of %d pixels fail at tolerance %d\n", failed, len(verdicts), r.session.Tolerance())
}

func (r *calibrationREPL) cmdPixels(context.Context, []string) error {
	snap := r.session.Snapshot()
	if snap.Label == "" {
		return calibration.ErrNoLabel
	}
	printSignature(r.out, snap.Label, snap.Signature, r.pendingSet())
	return nil
}

func (r *calibrationREPL) cmdNext(context.Context, []string) error {
	return r.moved(r.session.NextImage())
}

func (r *calibrationREPL) cmdPrev(context.Context, []string) error {
	return r.moved(r.session.PrevImage())
}

func (r *calibrationREPL) moved(_ int, err error) error {
	if err != nil {
		return err
	}
	snap := r.session.Snapshot()
	id, ok := snap.CurrentImage()
	if !ok {
		fmt.Fprintln(r.out, "No failing screenshots")
		return nil
	}
	fmt.Fprintf(r.out, "Screenshot %d/%d: %s\n", snap.Cursor+1, len(snap.FailingImages), id)
	return nil
}

func (r *calibrationREPL) cmdMark(_ context.Context, args []string) error {
	return r.eachIndex("mark", args, r.session.MarkForRemoval)
}

func (r *calibrationREPL) cmdUnmark(_ context.Context, args []string) error {
	return r.eachIndex("unmark", args, r.session.Unmark)
}

func (r *calibrationREPL) cmdToggle(_ context.Context, args []string) error {
	return r.eachIndex("toggle", args, func(idx int) error {
		_, err := r.session.Toggle(idx)
		return err
	})
}

func (r *calibrationREPL) eachIndex(verb string, args []string, fn func(int) error) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s INDEX...", verb)
	}
	indices, err := parseIndices(args)
	if err != nil {
		return err
	}
	for _, idx := range indices {
		if err := fn(idx); err != nil {
			return err
		}
	}
	return r.cmdPending(context.Background(), nil)
}

func (r *calibrationREPL) cmdClear(context.Context, []string) error {
	r.session.ClearPending()
	fmt.Fprintln(r.out, "Pending removals cleared")
	return nil
}

func (r *calibrationREPL) cmdPending(context.Context, []string) error {
	pending := r.session.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Pending: none")
		return nil
	}
	fmt.Fprintf(r.out, "Pending: %s\n", joinInts(pending))
	return nil
}

func (r *calibrationREPL) cmdCommit(ctx context.Context, args []string) error {
	label := r.session.Snapshot().Label
	switch len(args) {
	case 0:
	case 1:
		label = args[0]
	default:
		return errors.New("usage: commit [LABEL]")
	}
	result, err := r.session.Commit(ctx, label)
	if err != nil {
		return err
	}
	if result.Label == "" {
		fmt.Fprintln(r.out, "Nothing to commit")
		return nil
	}
	r.commits++
	if len(result.Removed) == 0 {
		fmt.Fprintf(r.out, "No pending index is valid for %s; table unchanged\n", result.Label)
	} else {
		fmt.Fprintf(r.out, "Removed pixels %s from %s; %d remain\n",
			joinInts(result.Removed), result.Label, len(result.Signature))
	}
	if res, ok := result.Report.Lookup(result.Label); ok {
		fmt.Fprintf(r.out, "%s now %d/%d correct (%s%%)\n",
			res.Label, res.Correct, res.Total(), formatPercent(res.Percent))
	}
	if !result.Reselected {
		fmt.Fprintf(r.out, "%s is no longer audited; session is idle\n", result.Label)
	}
	return nil
}

func (r *calibrationREPL) cmdTolerance(_ context.Context, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(r.out, "Tolerance: %d\n", r.session.Tolerance())
		return nil
	case 1:
		value, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid tolerance %q", args[0])
		}
		if err := r.session.SetTolerance(value); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Tolerance set to %d; run 'audit' to refresh the report\n", value)
		return nil
	default:
		return errors.New("usage: tolerance [N]")
	}
}

func (r *calibrationREPL) cmdHelp(context.Context, []string) error {
	names := make([]string, 0, len(replCommands))
	for name := range replCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{replCommands[name].usage, replCommands[name].help})
	}
	fmt.Fprintln(r.out, renderTable([]string{"Command", "Description"}, rows, nil))
	return nil
}

func (r *calibrationREPL) cmdQuit(context.Context, []string) error {
	if pending := r.session.Pending(); len(pending) > 0 {
		fmt.Fprintf(r.out, "Discarding %d pending removals\n", len(pending))
	}
	return errQuit
}

func (r *calibrationREPL) pendingSet() map[int]bool {
	set := make(map[int]bool)
	for _, idx := range r.session.Pending() {
		set[idx] = true
	}
	return set
}

func parseIndices(args []string) ([]int, error) {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			idx, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid pixel index %q", part)
			}
			indices = append(indices, idx)
		}
	}
	return indices, nil
}
