package imagestore

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pagesig/internal/classifier"
	"pagesig/internal/logging"
)

// ErrInvalidIdentifier is returned for identifiers that do not name a file
// inside the images directory.
var ErrInvalidIdentifier = errors.New("invalid image identifier")

// Options configures a Store.
type Options struct {
	// CacheSize bounds the number of decoded frames kept in memory. Zero
	// disables caching.
	CacheSize   int
	SwapRedBlue bool
	Logger      *slog.Logger
}

// Store opens screenshots by identifier from a directory.
type Store struct {
	dir         string
	swapRedBlue bool
	cache       *lru.Cache[string, *Frame]
	logger      *slog.Logger
}

// New constructs a Store rooted at dir. The directory is not required to
// exist; missing images surface as open errors per identifier.
func New(dir string, opts Options) (*Store, error) {
	s := &Store{
		dir:         dir,
		swapRedBlue: opts.SwapRedBlue,
		logger:      logging.NewComponentLogger(opts.Logger, "images"),
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *Frame](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create image cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Path resolves id to a file path inside the images directory.
func (s *Store) Path(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	if filepath.IsAbs(trimmed) || !filepath.IsLocal(trimmed) {
		return "", fmt.Errorf("%w: %q escapes the images directory", ErrInvalidIdentifier, id)
	}
	return filepath.Join(s.dir, trimmed), nil
}

// Open decodes the image for id, serving repeated requests from the cache.
func (s *Store) Open(id string) (classifier.Image, error) {
	if s.cache != nil {
		if frame, ok := s.cache.Get(id); ok {
			return frame, nil
		}
	}

	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	frame, err := s.decode(path)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(id, frame)
	}
	return frame, nil
}

// Purge drops every cached frame. Call it when screenshots change on disk.
func (s *Store) Purge() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *Store) decode(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}
	s.logger.Debug("decoded image",
		logging.String("path", path),
		logging.String("format", format),
		logging.Int("width", img.Bounds().Dx()),
		logging.Int("height", img.Bounds().Dy()))
	return NewFrame(img, s.swapRedBlue), nil
}
