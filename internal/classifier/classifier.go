package classifier

import (
	"image"
	"log/slog"

	"pagesig/internal/logging"
	"pagesig/internal/signature"
)

// Image is random-access colour lookup over a decoded screenshot.
// Coordinates are relative to the top-left corner of Bounds.
type Image interface {
	Bounds() image.Rectangle
	ColorAt(x, y int) signature.Color
}

// ImageSource resolves annotated image identifiers to decoded images.
type ImageSource interface {
	Open(id string) (Image, error)
}

// SignatureSource exposes the labelled signatures to match against.
type SignatureSource interface {
	Labels() []string
	Signature(label string) (signature.Signature, bool)
}

// Verdict is the outcome for one reference pixel of a signature.
type Verdict struct {
	Index     int             `json:"index"`
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Reference signature.Color `json:"reference"`
	Sampled   signature.Color `json:"sampled"`
	InBounds  bool            `json:"in_bounds"`
	Matched   bool            `json:"matched"`
}

// PixelMatches reports whether max(|dR|, |dG|, |dB|) <= tolerance.
func PixelMatches(ref, sample signature.Color, tolerance int) bool {
	return channelWithin(ref.R, sample.R, tolerance) &&
		channelWithin(ref.G, sample.G, tolerance) &&
		channelWithin(ref.B, sample.B, tolerance)
}

func channelWithin(a, b uint8, tolerance int) bool {
	diff := int(a) - int(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func clampTolerance(tolerance int) int {
	if tolerance < 0 {
		return 0
	}
	return tolerance
}

func sample(img Image, px signature.ReferencePixel) (signature.Color, bool) {
	bounds := img.Bounds()
	if px.X < 0 || px.Y < 0 || px.X >= bounds.Dx() || px.Y >= bounds.Dy() {
		return signature.Color{}, false
	}
	return img.ColorAt(px.X, px.Y), true
}

// Classify reports whether every reference pixel of sig passes on img. It
// stops at the first failing pixel. A nil image never matches; an empty
// signature always does.
func Classify(img Image, sig signature.Signature, tolerance int) bool {
	if img == nil {
		return false
	}
	tolerance = clampTolerance(tolerance)
	for _, px := range sig {
		got, ok := sample(img, px)
		if !ok || !PixelMatches(px.Color, got, tolerance) {
			return false
		}
	}
	return true
}

// Evaluate returns one verdict per reference pixel, in signature order.
func Evaluate(img Image, sig signature.Signature, tolerance int) []Verdict {
	tolerance = clampTolerance(tolerance)
	verdicts := make([]Verdict, 0, len(sig))
	for i, px := range sig {
		v := Verdict{Index: i, X: px.X, Y: px.Y, Reference: px.Color}
		if img != nil {
			v.Sampled, v.InBounds = sample(img, px)
			v.Matched = v.InBounds && PixelMatches(px.Color, v.Sampled, tolerance)
		}
		verdicts = append(verdicts, v)
	}
	return verdicts
}

// Classifier matches annotated images, looked up by identifier, against
// signatures at a fixed tolerance.
type Classifier struct {
	images    ImageSource
	tolerance int
	logger    *slog.Logger
}

// New constructs a Classifier.
func New(images ImageSource, tolerance int, logger *slog.Logger) *Classifier {
	return &Classifier{
		images:    images,
		tolerance: clampTolerance(tolerance),
		logger:    logging.NewComponentLogger(logger, "classifier"),
	}
}

// Tolerance returns the per-channel tolerance in use.
func (c *Classifier) Tolerance() int { return c.tolerance }

// ClassifyImage reports whether the image identified by id matches sig.
// Images that are missing or cannot be decoded count as a failed match.
func (c *Classifier) ClassifyImage(id string, sig signature.Signature) bool {
	img, err := c.images.Open(id)
	if err != nil {
		c.logger.Debug("image unavailable; counting as no match",
			logging.String(logging.FieldImageID, id),
			logging.Error(err))
		return false
	}
	return Classify(img, sig, c.tolerance)
}

// EvaluateImage opens the image identified by id and returns per-pixel
// verdicts. Unlike ClassifyImage it reports open failures, since a caller inspecting pixels
// has nothing to show without the image.
func (c *Classifier) EvaluateImage(id string, sig signature.Signature) ([]Verdict, error) {
	img, err := c.images.Open(id)
	if err != nil {
		return nil, err
	}
	return Evaluate(img, sig, c.tolerance), nil
}

// MatchLabels returns every label in sigs whose signature matches the image,
// sorted by label. An unreadable image matches nothing.
func (c *Classifier) MatchLabels(id string, sigs SignatureSource) []string {
	img, err := c.images.Open(id)
	if err != nil {
		c.logger.Debug("image unavailable; no labels match",
			logging.String(logging.FieldImageID, id),
			logging.Error(err))
		return nil
	}
	var matches []string
	for _, label := range sigs.Labels() {
		sig, ok := sigs.Signature(label)
		if !ok {
			continue
		}
		if Classify(img, sig, c.tolerance) {
			matches = append(matches, label)
		}
	}
	return matches
}
