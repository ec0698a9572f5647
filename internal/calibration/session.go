package calibration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"pagesig/internal/audit"
	"pagesig/internal/classifier"
	"pagesig/internal/config"
	"pagesig/internal/logging"
	"pagesig/internal/signature"
)

// SignatureStore is the persisted signature table a Session edits.
type SignatureStore interface {
	classifier.SignatureSource
	RemovePixels(label string, indices []int) (signature.Signature, []int, error)
}

// Deps are the collaborators of a Session.
type Deps struct {
	Images     classifier.ImageSource
	Corpus     audit.Corpus
	Signatures SignatureStore
	Logger     *slog.Logger
}

// Session holds the state of one calibration loop.
type Session struct {
	images classifier.ImageSource
	corpus audit.Corpus
	store  SignatureStore
	engine *audit.Engine
	logger *slog.Logger

	tolerance int
	state     State
	report    *audit.Report

	label   string
	failing []string
	sig     signature.Signature
	cursor  int
	pending map[int]struct{}
}

// New constructs an idle Session evaluating at tolerance.
func New(deps Deps, tolerance int) *Session {
	logger := logging.NewComponentLogger(deps.Logger, "calibration")
	return &Session{
		images:    deps.Images,
		corpus:    deps.Corpus,
		store:     deps.Signatures,
		engine:    audit.New(deps.Images, deps.Logger),
		logger:    logger,
		tolerance: tolerance,
		state:     StateIdle,
		pending:   make(map[int]struct{}),
	}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Tolerance returns the tolerance used for evaluations and audits.
func (s *Session) Tolerance() int { return s.tolerance }

// Report returns the most recent audit report.
func (s *Session) Report() (audit.Report, bool) {
	if s.report == nil {
		return audit.Report{}, false
	}
	return *s.report, true
}

// Audit runs a full audit at the current tolerance and keeps the report. A
// selected label has its failing images refreshed; it drops back to idle if
// the label left the report. Pending removals are kept.
func (s *Session) Audit(ctx context.Context) (audit.Report, error) {
	report, err := s.engine.Run(ctx, s.corpus, s.store, s.tolerance)
	if err != nil {
		return audit.Report{}, fmt.Errorf("run audit: %w", err)
	}
	s.report = &report

	if s.label == "" {
		return report, nil
	}
	res, ok := report.Lookup(s.label)
	if !ok {
		s.logger.Info("selected label no longer audited",
			logging.String(logging.FieldLabel, s.label))
		s.reset()
		return report, nil
	}
	s.failing = append([]string(nil), res.FailedImages...)
	if sig, ok := s.store.Signature(s.label); ok {
		s.sig = sig
	}
	s.cursor = clamp(s.cursor, len(s.failing))
	s.state = StateLabelSelected
	return report, nil
}

// SelectLabel focuses the session on label, loading its failing images and
// signature. Pending removals and the image cursor are reset.
func (s *Session) SelectLabel(label string) error {
	if s.report == nil {
		return ErrNoAudit
	}
	res, ok := s.report.Lookup(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	sig, ok := s.store.Signature(label)
	if !ok {
		return fmt.Errorf("%w: %q has no signature", ErrUnknownLabel, label)
	}

	s.label = label
	s.failing = append([]string(nil), res.FailedImages...)
	s.sig = sig
	s.cursor = 0
	s.pending = make(map[int]struct{})
	s.state = StateLabelSelected

	s.logger.Debug("label selected",
		logging.String(logging.FieldLabel, label),
		logging.Int("failing", len(s.failing)),
		logging.Int("pixels", len(sig)))
	return nil
}

// Inspection is the per-pixel evaluation of one failing image.
type Inspection struct {
	ImageID  string              `json:"image_id"`
	Position int                 `json:"position"`
	Of       int                 `json:"of"`
	Verdicts []classifier.Verdict `json:"verdicts"`

	// ImageErr is set when the image could not be read; every verdict is
	// then out of bounds.
	ImageErr error `json:"-"`
}

// Failed returns the indices of the pixels that did not match.
func (i Inspection) Failed() []int {
	var out []int
	for _, v := range i.Verdicts {
		if !v.Matched {
			out = append(out, v.Index)
		}
	}
	return out
}

// Inspect evaluates the selected signature against the failing image under
// the cursor. It changes nothing but the state.
func (s *Session) Inspect() (Inspection, error) {
	if s.label == "" {
		return Inspection{}, ErrNoLabel
	}
	if len(s.failing) == 0 {
		return Inspection{}, fmt.Errorf("%w: %q", ErrNoFailingImages, s.label)
	}

	id := s.failing[s.cursor]
	verdicts, err := s.EvaluatePixels(id)
	insp := Inspection{
		ImageID:  id,
		Position: s.cursor,
		Of:       len(s.failing),
		Verdicts: verdicts,
	}
	if err != nil {
		insp.Verdicts = classifier.Evaluate(nil, s.sig, s.tolerance)
		insp.ImageErr = err
	}
	s.state = StateInspecting
	return insp, nil
}

// EvaluatePixels evaluates the selected signature against any image.
func (s *Session) EvaluatePixels(id string) ([]classifier.Verdict, error) {
	if s.label == "" {
		return nil, ErrNoLabel
	}
	verdicts, err := classifier.New(s.images, s.tolerance, s.logger).EvaluateImage(id, s.sig)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", id, err)
	}
	return verdicts, nil
}

// NextImage advances the cursor, stopping at the last failing image.
func (s *Session) NextImage() (int, error) { return s.moveCursor(1) }

// PrevImage moves the cursor back, stopping at the first failing image.
func (s *Session) PrevImage() (int, error) { return s.moveCursor(-1) }

func (s *Session) moveCursor(delta int) (int, error) {
	if s.label == "" {
		return 0, ErrNoLabel
	}
	s.cursor = clamp(s.cursor+delta, len(s.failing))
	return s.cursor, nil
}

// MarkForRemoval adds index to the pending set. Indices are not checked
// against the signature; out-of-range ones are dropped at commit. Editing the
// pending set puts the session in Inspecting.
func (s *Session) MarkForRemoval(index int) error {
	if s.label == "" {
		return ErrNoLabel
	}
	s.pending[index] = struct{}{}
	s.state = StateInspecting
	return nil
}

// Unmark removes index from the pending set.
func (s *Session) Unmark(index int) error {
	if s.label == "" {
		return ErrNoLabel
	}
	delete(s.pending, index)
	s.state = StateInspecting
	return nil
}

// Toggle flips index in the pending set and reports whether it is now marked.
func (s *Session) Toggle(index int) (bool, error) {
	if s.label == "" {
		return false, ErrNoLabel
	}
	s.state = StateInspecting
	if _, ok := s.pending[index]; ok {
		delete(s.pending, index)
		return false, nil
	}
	s.pending[index] = struct{}{}
	return true, nil
}

// ClearPending empties the pending set.
func (s *Session) ClearPending() {
	s.pending = make(map[int]struct{})
}

// Pending returns the marked indices in ascending order.
func (s *Session) Pending() []int {
	out := make([]int, 0, len(s.pending))
	for idx := range s.pending {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// CommitResult describes a completed commit.
type CommitResult struct {
	Label string `json:"label"`

	// Removed holds the indices deleted from the persisted signature,
	// highest first. Stale indices are absent.
	Removed   []int               `json:"removed"`
	Signature signature.Signature `json:"-"`
	Report    audit.Report        `json:"report"`

	// Reselected is false when the label dropped out of the fresh report
	// and the session went idle.
	Reselected bool `json:"reselected"`
}

// Commit removes the pending indices from the persisted signature of label,
// re-runs the audit and re-selects label. An empty pending set is a no-op.
func (s *Session) Commit(ctx context.Context, label string) (CommitResult, error) {
	if s.label == "" {
		return CommitResult{}, ErrNoLabel
	}
	if label != s.label {
		return CommitResult{}, fmt.Errorf("%w: %q (selected %q)", ErrLabelMismatch, label, s.label)
	}
	if len(s.pending) == 0 {
		return CommitResult{}, nil
	}

	previous := s.state
	s.state = StateCommitting
	updated, removed, err := s.store.RemovePixels(label, s.Pending())
	if err != nil {
		s.state = previous
		return CommitResult{}, fmt.Errorf("commit %s: %w", label, err)
	}
	s.pending = make(map[int]struct{})
	s.sig = updated
	s.state = StateLabelSelected

	result := CommitResult{Label: label, Removed: removed, Signature: updated}
	report, err := s.Audit(ctx)
	if err != nil {
		return result, fmt.Errorf("re-audit after commit: %w", err)
	}
	result.Report = report

	if err := s.SelectLabel(label); err != nil {
		s.reset()
		s.logger.Info("committed label left the audit",
			logging.String(logging.FieldLabel, label))
		return result, nil
	}
	result.Reselected = true
	return result, nil
}

// SetTolerance changes the tolerance for later evaluations and audits. The
// current report is not recomputed.
func (s *Session) SetTolerance(tolerance int) error {
	if tolerance < 0 || tolerance > config.MaxTolerance {
		return fmt.Errorf("%w: %d", ErrInvalidTolerance, tolerance)
	}
	s.tolerance = tolerance
	return nil
}

// Snapshot is a read-only view of a Session for display.
type Snapshot struct {
	State         State               `json:"state"`
	Tolerance     int                 `json:"tolerance"`
	Audited       bool                `json:"audited"`
	Label         string              `json:"label,omitempty"`
	FailingImages []string            `json:"failing_images,omitempty"`
	Cursor        int                 `json:"cursor"`
	Signature     signature.Signature `json:"-"`
	Pending       []int               `json:"pending,omitempty"`
}

// CurrentImage returns the failing image under the cursor.
func (s Snapshot) CurrentImage() (string, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.FailingImages) {
		return "", false
	}
	return s.FailingImages[s.Cursor], true
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:         s.state,
		Tolerance:     s.tolerance,
		Audited:       s.report != nil,
		Label:         s.label,
		FailingImages: append([]string(nil), s.failing...),
		Cursor:        s.cursor,
		Signature:     s.sig.Clone(),
		Pending:       s.Pending(),
	}
}

func (s *Session) reset() {
	s.label = ""
	s.failing = nil
	s.sig = nil
	s.cursor = 0
	s.pending = make(map[int]struct{})
	s.state = StateIdle
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
