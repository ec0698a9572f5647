package signature

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"pagesig/internal/fileutil"
	"pagesig/internal/logging"
)

// Options configures a Store.
type Options struct {
	// Backup copies the previous table to <path>.bak before each write.
	Backup bool
	Logger *slog.Logger
}

// Store is the authoritative label -> Signature table backed by a CSV file.
//
// When a label appears on more than one row the last row wins, both for
// lookups and for removals. Rows keep the cell text they were read with, so
// a commit only re-encodes the row it edits.
type Store struct {
	path   string
	backup bool
	logger *slog.Logger

	rows  []Row
	index map[string]int
	crlf  bool
}

// Open loads the table at path. A missing file yields an empty store; a
// malformed row fails the whole load with a *ValidationError.
func Open(path string, opts Options) (*Store, error) {
	s := &Store{
		path:   path,
		backup: opts.Backup,
		logger: logging.NewComponentLogger(opts.Logger, "signatures"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the table location.
func (s *Store) Path() string { return s.path }

// Reload re-reads the table from disk, replacing the in-memory copy only if
// the whole file decodes.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.setRows(nil, false)
			s.logger.Debug("signature table not found; starting empty", logging.String("path", s.path))
			return nil
		}
		return fmt.Errorf("read signature table: %w", err)
	}

	rows, err := ReadTable(bytes.NewReader(data), s.path)
	if err != nil {
		return err
	}
	s.setRows(rows, usesCRLF(data))
	s.logger.Debug("loaded signature table",
		logging.String("path", s.path),
		logging.Int("rows", len(rows)),
		logging.Int("labels", len(s.index)))
	return nil
}

func (s *Store) setRows(rows []Row, crlf bool) {
	s.rows = rows
	s.crlf = crlf
	s.index = make(map[string]int, len(rows))
	for i, row := range rows {
		s.index[row.Label] = i
	}
}

// Labels returns every label with a signature, sorted.
func (s *Store) Labels() []string {
	labels := make([]string, 0, len(s.index))
	for label := range s.index {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Len returns the number of distinct labels.
func (s *Store) Len() int { return len(s.index) }

// Signature returns a copy of the signature for label.
func (s *Store) Signature(label string) (Signature, bool) {
	i, ok := s.index[label]
	if !ok {
		return nil, false
	}
	sig := s.rows[i].Signature.Clone()
	if sig == nil {
		sig = Signature{}
	}
	return sig, true
}

// RemovePixels deletes the given indices from the persisted signature for
// label and writes the table back. The table is re-read first so indices are
// applied to what is on disk, not to a stale in-memory copy. Indices that are
// out of range for the current signature are ignored. It returns the updated
// signature and the indices that were removed, highest first.
func (s *Store) RemovePixels(label string, indices []int) (Signature, []int, error) {
	if err := s.Reload(); err != nil {
		return nil, nil, err
	}
	i, ok := s.index[label]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}

	before := len(s.rows[i].Signature)
	updated, removed := s.rows[i].Signature.Without(indices)
	if len(removed) == 0 {
		s.logger.Debug("no valid pixel indices to remove",
			logging.String(logging.FieldLabel, label),
			logging.Any("requested", indices))
		return updated, removed, nil
	}

	rows := make([]Row, len(s.rows))
	copy(rows, s.rows)
	rows[i] = Row{Label: label, Signature: updated}
	if err := s.write(rows); err != nil {
		return nil, nil, err
	}
	s.setRows(rows, s.crlf)

	s.logger.Info("removed reference pixels",
		logging.String(logging.FieldLabel, label),
		logging.Any("indices", removed),
		logging.Int("before", before),
		logging.Int("after", len(updated)))
	if ignored := len(uniqueDescending(indices)) - len(removed); ignored > 0 {
		s.logger.Debug("ignored stale pixel indices",
			logging.String(logging.FieldLabel, label),
			logging.Int("ignored", ignored))
	}
	return updated.Clone(), removed, nil
}

func (s *Store) write(rows []Row) error {
	var buf bytes.Buffer
	if err := WriteTable(&buf, rows, s.crlf); err != nil {
		return fmt.Errorf("encode signature table: %w", err)
	}
	if s.backup {
		backup, err := fileutil.BackupFile(s.path)
		if err != nil {
			return err
		}
		if backup != "" {
			s.logger.Debug("backed up signature table", logging.String("backup", backup))
		}
	}
	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write signature table: %w", err)
	}
	return nil
}
