// Package calibration drives the operator loop that prunes unreliable
// reference pixels from a signature.
//
// A Session is an explicit state machine:
//
//	Idle -> LabelSelected -> Inspecting -> Committing -> LabelSelected
//
// An audit must run before a label can be selected. Pixel indices marked for
// removal stay pending until Commit, which rewrites the persisted signature,
// re-runs the audit and re-selects the label from the fresh report.
//
// Sessions are not safe for concurrent use and take no locks; callers that
// share a signature table across processes must serialise sessions
// themselves.
package calibration
