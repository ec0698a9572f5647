package classifier_test

import (
	"errors"
	"image"
	"path/filepath"
	"reflect"
	"testing"

	"pagesig/internal/classifier"
	"pagesig/internal/imagestore"
	"pagesig/internal/signature"
	"pagesig/internal/testsupport"
)

func frame(shot testsupport.Screenshot) classifier.Image {
	return imagestore.NewFrame(shot.Image(), false)
}

func TestPixelMatchesIsMaxChannelDistance(t *testing.T) {
	ref := signature.Color{R: 100, G: 100, B: 100}
	cases := []struct {
		sample    signature.Color
		tolerance int
		want      bool
	}{
		{signature.Color{R: 100, G: 100, B: 100}, 0, true},
		{signature.Color{R: 101, G: 100, B: 100}, 0, false},
		{signature.Color{R: 110, G: 95, B: 90}, 10, true},
		{signature.Color{R: 110, G: 95, B: 89}, 10, false},
		{signature.Color{R: 0, G: 255, B: 100}, 155, true},
		{signature.Color{R: 0, G: 255, B: 100}, 154, false},
	}
	for _, tc := range cases {
		if got := classifier.PixelMatches(ref, tc.sample, tc.tolerance); got != tc.want {
			t.Errorf("PixelMatches(%v, %v, %d) = %v, want %v", ref, tc.sample, tc.tolerance, got, tc.want)
		}
	}
}

func TestClassifySinglePixelScenarios(t *testing.T) {
	sig := signature.Signature{{X: 10, Y: 10, Color: signature.Color{}}}
	img := frame(testsupport.Screenshot{
		Width: 20, Height: 20,
		Pixels: map[image.Point]signature.Color{{X: 10, Y: 10}: {R: 3, G: 2, B: 1}},
	})

	if !classifier.Classify(img, sig, 5) {
		t.Fatal("expected match at tolerance 5")
	}
	if classifier.Classify(img, sig, 2) {
		t.Fatal("expected no match at tolerance 2")
	}
}

func TestClassifyEmptySignatureAlwaysMatches(t *testing.T) {
	img := frame(testsupport.Screenshot{Width: 1, Height: 1})
	if !classifier.Classify(img, signature.Signature{}, 0) {
		t.Fatal("empty signature must match")
	}
	if !classifier.Classify(img, nil, 0) {
		t.Fatal("nil signature must match")
	}
	if classifier.Classify(nil, signature.Signature{}, 0) {
		t.Fatal("missing image must never match")
	}
}

func TestClassifyRequiresEveryPixel(t *testing.T) {
	white := signature.Color{R: 255, G: 255, B: 255}
	img := frame(testsupport.Screenshot{Width: 4, Height: 4, Fill: white})

	sig := signature.Signature{
		{X: 0, Y: 0, Color: white},
		{X: 3, Y: 3, Color: white},
	}
	if !classifier.Classify(img, sig, 0) {
		t.Fatal("expected all-white signature to match")
	}

	sig = append(sig, signature.ReferencePixel{X: 1, Y: 1, Color: signature.Color{}})
	if classifier.Classify(img, sig, 254) {
		t.Fatal("one failing pixel must fail the whole signature")
	}
}

func TestClassifyOutOfBoundsFails(t *testing.T) {
	img := frame(testsupport.Screenshot{Width: 4, Height: 4})
	for _, px := range []signature.ReferencePixel{{X: 4, Y: 0}, {X: 0, Y: 4}, {X: 100, Y: 100}} {
		if classifier.Classify(img, signature.Signature{px}, 255) {
			t.Fatalf("pixel %+v is outside a 4x4 image and must fail", px)
		}
	}
}

func TestClassifyNegativeToleranceActsAsZero(t *testing.T) {
	img := frame(testsupport.Screenshot{Width: 1, Height: 1})
	if !classifier.Classify(img, signature.Signature{{}}, -5) {
		t.Fatal("exact colour should match with tolerance clamped to 0")
	}
}

func TestEvaluateReportsEveryPixelInOrder(t *testing.T) {
	img := frame(testsupport.Screenshot{
		Width: 5, Height: 5,
		Fill:  signature.Color{R: 10, G: 20, B: 30},
	})
	sig := signature.Signature{
		{X: 0, Y: 0, Color: signature.Color{R: 10, G: 20, B: 30}},
		{X: 9, Y: 9, Color: signature.Color{R: 10, G: 20, B: 30}},
		{X: 4, Y: 4, Color: signature.Color{R: 50, G: 20, B: 30}},
	}

	verdicts := classifier.Evaluate(img, sig, 5)
	if len(verdicts) != 3 {
		t.Fatalf("expected 3 verdicts, got %d", len(verdicts))
	}
	for i, v := range verdicts {
		if v.Index != i {
			t.Fatalf("verdict %d has index %d", i, v.Index)
		}
	}
	if !verdicts[0].Matched || !verdicts[0].InBounds {
		t.Fatalf("expected first pixel to match, got %+v", verdicts[0])
	}
	if verdicts[1].InBounds || verdicts[1].Matched {
		t.Fatalf("expected second pixel out of bounds, got %+v", verdicts[1])
	}
	if !verdicts[2].InBounds || verdicts[2].Matched {
		t.Fatalf("expected third pixel to miss, got %+v", verdicts[2])
	}
	if verdicts[2].Sampled != (signature.Color{R: 10, G: 20, B: 30}) {
		t.Fatalf("unexpected sampled colour %v", verdicts[2].Sampled)
	}
}

type mapSource map[string]classifier.Image

func (m mapSource) Open(id string) (classifier.Image, error) {
	img, ok := m[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return img, nil
}

type fixedSignatures map[string]signature.Signature

func (f fixedSignatures) Labels() []string {
	return []string{"Battle", "Home", "Open"}
}

func (f fixedSignatures) Signature(label string) (signature.Signature, bool) {
	sig, ok := f[label]
	return sig, ok
}

func TestClassifierTreatsUnreadableImagesAsNoMatch(t *testing.T) {
	c := classifier.New(mapSource{}, 10, nil)
	if c.ClassifyImage("missing.png", signature.Signature{}) {
		t.Fatal("missing image must not match, even for an empty signature")
	}
	if _, err := c.EvaluateImage("missing.png", nil); err == nil {
		t.Fatal("EvaluateImage should report open failures")
	}
	if labels := c.MatchLabels("missing.png", fixedSignatures{}); len(labels) != 0 {
		t.Fatalf("expected no labels, got %v", labels)
	}
}

func TestClassifierMatchLabels(t *testing.T) {
	red := signature.Color{R: 200}
	source := mapSource{"shot.png": frame(testsupport.Screenshot{Width: 2, Height: 2, Fill: red})}
	sigs := fixedSignatures{
		"Battle": {{X: 0, Y: 0, Color: signature.Color{B: 200}}},
		"Home":   {{X: 1, Y: 1, Color: red}},
		"Open":   {},
	}

	c := classifier.New(source, 0, nil)
	got := c.MatchLabels("shot.png", sigs)
	if !reflect.DeepEqual(got, []string{"Home", "Open"}) {
		t.Fatalf("unexpected matches %v", got)
	}
}

func TestClassifierReadsImagesFromDisk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blue := signature.Color{B: 180}
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.ImagesDir, "shot.png"), testsupport.Screenshot{
		Width: 3, Height: 3, Fill: blue,
	})

	c := classifier.New(testsupport.MustOpenImages(t, cfg), cfg.Classifier.Tolerance, nil)
	if !c.ClassifyImage("shot.png", signature.Signature{{X: 2, Y: 2, Color: signature.Color{B: 170}}}) {
		t.Fatal("expected match within default tolerance")
	}
	if c.Tolerance() != 20 {
		t.Fatalf("unexpected tolerance %d", c.Tolerance())
	}
}

func TestClassifierUsesConfiguredTolerance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTolerance(5))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.ImagesDir, "shot.png"), testsupport.Screenshot{
		Width: 3, Height: 3, Fill: signature.Color{B: 180},
	})

	c := classifier.New(testsupport.MustOpenImages(t, cfg), cfg.Classifier.Tolerance, nil)
	if c.ClassifyImage("shot.png", signature.Signature{{X: 2, Y: 2, Color: signature.Color{B: 170}}}) {
		t.Fatal("expected a blue difference of 10 to fail at tolerance 5")
	}
}
