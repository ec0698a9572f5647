// Package audit measures how well each signature classifies its annotated
// screenshots.
//
// A run covers every label present in both the annotation corpus and the
// signature store, excluding the Null label. Screenshots that cannot be read
// count as misclassified. Runs are stateless; the same inputs always produce
// the same Report, independent of annotation row order.
package audit
