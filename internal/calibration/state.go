package calibration

import "errors"

// State is the position of a Session in the calibration loop.
type State string

const (
	StateIdle          State = "idle"
	StateLabelSelected State = "label_selected"
	StateInspecting    State = "inspecting"
	StateCommitting    State = "committing"
)

var (
	// ErrNoAudit is returned when a label is selected before any audit ran.
	ErrNoAudit = errors.New("no audit has run")
	// ErrUnknownLabel is returned for labels absent from the current report.
	ErrUnknownLabel = errors.New("label not in audit report")
	// ErrNoLabel is returned by label-scoped operations while idle.
	ErrNoLabel = errors.New("no label selected")
	// ErrLabelMismatch is returned when Commit names a label other than the
	// selected one.
	ErrLabelMismatch = errors.New("label is not the selected label")
	// ErrNoFailingImages is returned when there is nothing to inspect.
	ErrNoFailingImages = errors.New("label has no failing images")
	// ErrInvalidTolerance is returned for tolerances outside 0..255.
	ErrInvalidTolerance = errors.New("tolerance out of range")
)
