package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

func twoRowImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	// Top row red, bottom row blue.
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{0, 0, 255, 255})
	return img
}

func TestImageSampleFlip(t *testing.T) {
	im := FromImage(twoRowImage())

	red := vec3.T{1, 0, 0}
	blue := vec3.T{0, 0, 1}

	if got := im.Sample(vec2.T{0.25, 0.9}); got != red {
		t.Errorf("flipped sample near v=1; got %v, want %v", got, red)
	}
	if got := im.Sample(vec2.T{0.25, 0.1}); got != blue {
		t.Errorf("flipped sample near v=0; got %v, want %v", got, blue)
	}

	im.FlipV = false
	if got := im.Sample(vec2.T{0.25, 0.1}); got != red {
		t.Errorf("unflipped sample near v=0; got %v, want %v", got, red)
	}
}

func TestImageSampleWraps(t *testing.T) {
	im := FromImage(twoRowImage())

	if got, want := im.Sample(vec2.T{1.25, 1.9}), im.Sample(vec2.T{0.25, 0.9}); got != want {
		t.Errorf("wrapped sample; got %v, want %v", got, want)
	}
	if got, want := im.Sample(vec2.T{-0.75, -0.1}), im.Sample(vec2.T{0.25, 0.9}); got != want {
		t.Errorf("negative wrapped sample; got %v, want %v", got, want)
	}
	// Exactly 1.0 wraps to 0.
	if got, want := im.Sample(vec2.T{1, 1}), im.Sample(vec2.T{0, 0}); got != want {
		t.Errorf("sample at 1.0; got %v, want %v", got, want)
	}
}

func TestLoad(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, twoRowImage()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tex.png")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	im, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if w, h := im.Bounds(); w != 2 || h != 2 {
		t.Errorf("Bounds; got %dx%d, want 2x2", w, h)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Errorf("Load of missing file should fail")
	}
}

func TestCheckerboard(t *testing.T) {
	c := &Checkerboard{Period: 1, Even: vec3.T{0, 0, 0}, Odd: vec3.T{1, 1, 1}}

	if got := c.Sample(vec2.T{0.25, 0.25}); got != c.Even {
		t.Errorf("(0.25, 0.25); got %v, want even", got)
	}
	if got := c.Sample(vec2.T{0.75, 0.25}); got != c.Odd {
		t.Errorf("(0.75, 0.25); got %v, want odd", got)
	}
	if got := c.Sample(vec2.T{0.75, 0.75}); got != c.Even {
		t.Errorf("(0.75, 0.75); got %v, want even", got)
	}
}

func TestTableLookup(t *testing.T) {
	table := Table{"red": Solid{1, 0, 0}}

	if s, ok := table.Lookup("white"); s != nil || !ok {
		t.Errorf("Lookup(white); got (%v, %v), want (nil, true)", s, ok)
	}
	if s, ok := table.Lookup("nope"); s != nil || ok {
		t.Errorf("Lookup(nope); got (%v, %v), want (nil, false)", s, ok)
	}
	s, ok := table.Lookup("red")
	if !ok {
		t.Fatalf("Lookup(red) not found")
	}
	if got := SampleOrWhite(s, vec2.T{}); got != (vec3.T{1, 0, 0}) {
		t.Errorf("SampleOrWhite(red); got %v", got)
	}
	if got := SampleOrWhite(nil, vec2.T{}); got != White {
		t.Errorf("SampleOrWhite(nil); got %v, want white", got)
	}
}
