package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldLabel is the standardized structured logging key for page labels.
	FieldLabel = "label"
	// FieldImageID is the standardized structured logging key for annotated image identifiers.
	FieldImageID = "image_id"
	// FieldSessionID is the standardized structured logging key for calibration sessions.
	FieldSessionID = "session_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)
