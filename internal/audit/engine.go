package audit

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"pagesig/internal/annotations"
	"pagesig/internal/classifier"
	"pagesig/internal/logging"
)

// Corpus lists annotated screenshots per label.
type Corpus interface {
	Labels() []string
	Images(label string) []string
}

// Engine runs audits against one image source.
type Engine struct {
	images classifier.ImageSource
	logger *slog.Logger
}

// New constructs an Engine.
func New(images classifier.ImageSource, logger *slog.Logger) *Engine {
	return &Engine{
		images: images,
		logger: logging.NewComponentLogger(logger, "audit"),
	}
}

// Run classifies every annotated screenshot of every label that has a
// signature and returns per-label accuracy. The context is checked between
// labels; a cancelled run returns no report.
func (e *Engine) Run(ctx context.Context, corpus Corpus, sigs classifier.SignatureSource, tolerance int) (Report, error) {
	started := time.Now()
	matcher := classifier.New(e.images, tolerance, e.logger)
	report := Report{Tolerance: matcher.Tolerance(), Results: []Result{}}

	for _, label := range qualifyingLabels(corpus, sigs) {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		sig, _ := sigs.Signature(label)

		images := corpus.Images(label)
		sort.Strings(images)

		result := Result{Label: label, FailedImages: []string{}}
		for _, id := range images {
			if matcher.ClassifyImage(id, sig) {
				result.Correct++
				continue
			}
			result.Incorrect++
			result.FailedImages = append(result.FailedImages, id)
		}
		result.Percent = percent(result.Correct, result.Incorrect)
		report.Results = append(report.Results, result)

		e.logger.Debug("audited label",
			logging.String(logging.FieldLabel, label),
			logging.Int("correct", result.Correct),
			logging.Int("incorrect", result.Incorrect))
	}

	totals := report.Totals()
	e.logger.Info("audit complete",
		logging.Int("tolerance", report.Tolerance),
		logging.Int("labels", totals.Labels),
		logging.Int("correct", totals.Correct),
		logging.Int("incorrect", totals.Incorrect),
		logging.Duration("elapsed", time.Since(started)))
	return report, nil
}

func qualifyingLabels(corpus Corpus, sigs classifier.SignatureSource) []string {
	known := make(map[string]struct{})
	for _, label := range sigs.Labels() {
		known[label] = struct{}{}
	}
	var labels []string
	for _, label := range corpus.Labels() {
		if label == annotations.NullLabel {
			continue
		}
		if _, ok := known[label]; ok {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}
