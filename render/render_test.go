package render

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"whitted/affinetransform"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/scene"
	"whitted/vmath/vec3"
	"whitted/xfstack"
)

// ballScene is a red sphere of radius 3 ten units down -z, lit from the eye.
func ballScene() *scene.Scene {
	return &scene.Scene{
		Root: &scene.Group{
			NodeName: "world",
			Transform: affinetransform.Compose(
				affinetransform.Translate(vec3.T{0, 0, -10}),
				affinetransform.Scale(3),
			),
			Members: []scene.Node{
				&scene.Leaf{NodeName: "ball", Kind: geometry.KindSphere, Material: material.Opaque(vec3.T{1, 0, 0})},
			},
			GroupLights: []light.Light{light.Point(vec3.T{0, 0, 10.0 / 3})},
		},
	}
}

func testOptions() Options {
	return Options{
		Rows:       16,
		Cols:       16,
		FOVDegrees: 60,
		Bound:      2,
	}
}

func TestRenderImageSmoke(t *testing.T) {
	stack := xfstack.New(affinetransform.Identity())

	im, err := RenderImage(context.Background(), ballScene(), testOptions(), stack)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if im.RowSize != 16 || im.ColSize != 16 {
		t.Fatalf("got %dx%d raster, want 16x16", im.RowSize, im.ColSize)
	}

	center := im.At(8, 8)
	if !(center[0] > 0.5) || center[1] > center[0] || center[2] > center[0] {
		t.Errorf("center pixel; got %v, want mostly red", center)
	}

	if diff := cmp.Diff(im.At(0, 0), vec3.T{0, 0, 0}); diff != "" {
		t.Errorf("corner pixel; diff (-got +want)\n%s", diff)
	}
}

func TestRenderImageIndependentOfWorkers(t *testing.T) {
	stack := xfstack.New(affinetransform.Identity())

	opts := testOptions()
	opts.Workers = 1
	want, err := RenderImage(context.Background(), ballScene(), opts, stack)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, tc := range []struct {
		workers, rowsPerChunk int
	}{
		{workers: 4},
		{workers: 3, rowsPerChunk: 5},
		{workers: 16, rowsPerChunk: 1},
	} {
		opts := testOptions()
		opts.Workers = tc.workers
		opts.RowsPerChunk = tc.rowsPerChunk

		got, err := RenderImage(context.Background(), ballScene(), opts, stack)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("workers=%d rowsPerChunk=%d; diff (-got +want)\n%s", tc.workers, tc.rowsPerChunk, diff)
		}
	}
}

func TestRenderImageProgress(t *testing.T) {
	stack := xfstack.New(affinetransform.Identity())

	calls := 0
	last := 0
	opts := testOptions()
	opts.Workers = 4
	opts.Progress = func(done, total int) {
		calls++
		if total != 16 {
			t.Errorf("progress total; got %d, want 16", total)
		}
		if done != last+1 {
			t.Errorf("progress done; got %d, want %d", done, last+1)
		}
		last = done
	}

	if _, err := RenderImage(context.Background(), ballScene(), opts, stack); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 16 {
		t.Errorf("progress calls; got %d, want 16", calls)
	}
}

func TestRenderImageCancelled(t *testing.T) {
	stack := xfstack.New(affinetransform.Identity())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RenderImage(ctx, ballScene(), testOptions(), stack)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got error %v, want %v", err, context.Canceled)
	}
}

func TestTerminalProgressNotATerminal(t *testing.T) {
	// -1 is never a terminal, so nothing may be written.
	f := TerminalProgress(failingWriter{t}, -1)
	f(1, 2)
	f(2, 2)
}

type failingWriter struct {
	t *testing.T
}

func (w failingWriter) Write(p []byte) (int, error) {
	w.t.Errorf("unexpected write %q", p)
	return len(p), nil
}
