// Package signature persists pixel signatures: per-label lists of reference
// pixels whose expected colours identify one application screen.
//
// The on-disk table is CSV with one row per label. The second column holds a
// typed array of five-integer records in [x, y, b, g, r] order, the layout
// the bootstrap tool has always written. Blue-green-red ordering exists only
// inside the codec; in memory every colour is a Color with named channels.
//
// The Store is the single writer of the table. It performs no locking of its
// own: callers must guarantee that only one process mutates a given table at a
// time (the calibrate command holds an advisory file lock for that). The only
// mutation offered is removal of reference pixels; signatures are created by
// external tooling.
package signature
