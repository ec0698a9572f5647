// Package annotations reads the annotation table produced by the labeling
// tool: one (image identifier, label) row per screenshot.
package annotations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"pagesig/internal/logging"
)

// NullLabel marks screenshots that show no known screen. It never takes part
// in audit or calibration.
const NullLabel = "Null"

// Corpus maps a label to its annotated image identifiers in table order.
type Corpus map[string][]string

// Load reads the annotation table at path. A missing file is an empty corpus.
// Rows with fewer than two fields are skipped with a warning; the labeling
// tool only ever appends complete rows, so these are truncated writes.
func Load(path string, logger *slog.Logger) (Corpus, error) {
	logger = logging.NewComponentLogger(logger, "annotations")

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("annotation table not found; corpus is empty", logging.String("path", path))
			return Corpus{}, nil
		}
		return nil, fmt.Errorf("open annotation table: %w", err)
	}
	defer file.Close()

	corpus, skipped, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("read annotation table %s: %w", path, err)
	}
	if skipped > 0 {
		logging.WarnWithContext(logger, "skipped incomplete annotation rows", "annotation_rows_skipped",
			logging.String("path", path),
			logging.Int("skipped", skipped),
			logging.String(logging.FieldImpact, "those screenshots are left out of the audit"),
			logging.String(logging.FieldErrorHint, "re-label the affected screenshots"))
	}
	logger.Debug("loaded annotation table",
		logging.String("path", path),
		logging.Int("labels", len(corpus)),
		logging.Int("images", corpus.Len()))
	return corpus, nil
}

// Read decodes annotation rows and reports how many incomplete rows it skipped.
func Read(r io.Reader) (Corpus, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	corpus := Corpus{}
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return corpus, skipped, nil
		}
		if err != nil {
			return nil, skipped, err
		}
		if len(record) < 2 {
			skipped++
			continue
		}
		image := strings.TrimSpace(record[0])
		label := strings.TrimSpace(record[1])
		if image == "" || label == "" {
			skipped++
			continue
		}
		corpus[label] = append(corpus[label], image)
	}
}

// Labels returns the annotated labels, sorted, without NullLabel.
func (c Corpus) Labels() []string {
	labels := make([]string, 0, len(c))
	for label := range c {
		if label == NullLabel {
			continue
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Images returns a copy of the identifiers annotated with label.
func (c Corpus) Images(label string) []string {
	images := c[label]
	out := make([]string, len(images))
	copy(out, images)
	return out
}

// Len counts annotations outside NullLabel.
func (c Corpus) Len() int {
	total := 0
	for label, images := range c {
		if label == NullLabel {
			continue
		}
		total += len(images)
	}
	return total
}
