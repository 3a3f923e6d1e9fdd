// Package render drives a full image: it splits the raster into row chunks and
// traces one primary ray per pixel on a bounded pool of workers.
package render

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"whitted/camera"
	"whitted/light"
	"whitted/raster"
	"whitted/rendermetrics"
	"whitted/scene"
	"whitted/tracer"
	"whitted/xfstack"
)

// ProgressFunction is called with the number of finished rows and the total.
// Calls are serialized.
type ProgressFunction func(done, total int)

type Options struct {
	Rows       int
	Cols       int
	FOVDegrees float64
	Bound      int

	// Workers caps the number of chunks rendered at once.  Zero means one per
	// CPU.
	Workers int
	// RowsPerChunk is the height of one unit of work.  Zero splits the image
	// evenly across the workers.
	RowsPerChunk int

	// SceneName tags metrics.
	SceneName string
	Metrics   *rendermetrics.Recorder
	Progress  ProgressFunction
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) rowsPerChunk() int {
	if o.RowsPerChunk > 0 {
		return o.RowsPerChunk
	}
	n := (o.Rows + o.workers() - 1) / o.workers()
	if n < 1 {
		n = 1
	}
	return n
}

type ChunkWorker struct {
	ctx     context.Context
	tracer  *tracer.Tracer
	pinhole camera.Pinhole
	stack   xfstack.Stack
	lights  []light.Instance

	// Dimensions of the whole image, not just this chunk.
	imgRows int
	imgCols int

	rowSrc int
	rowLim int

	// dst is this worker's private cut of the output.
	dst *raster.Image

	rowDone func()
}

func (w *ChunkWorker) Render() error {
	for cr := w.rowSrc; cr < w.rowLim; cr++ {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		for cc := 0; cc < w.imgCols; cc++ {
			r := w.pinhole.ImageToRay(cr, w.imgRows, cc, w.imgCols)
			w.dst.Set(cr-w.rowSrc, cc, w.tracer.Trace(w.stack, r, w.lights))
		}
		w.rowDone()
	}
	return nil
}

// RenderImage traces s through cameraStack, whose top is the world-to-view
// transform.  The only error it returns is the context's.
func RenderImage(ctx context.Context, s *scene.Scene, opts Options, cameraStack xfstack.Stack) (*raster.Image, error) {
	tr := otel.Tracer("whitted/render")
	var span trace.Span
	ctx, span = tr.Start(ctx, "RenderImage")
	defer span.End()
	span.SetAttributes(
		attribute.Int("rows", opts.Rows),
		attribute.Int("cols", opts.Cols),
		attribute.Int("bound", opts.Bound),
	)

	start := time.Now()
	img := raster.New(opts.Rows, opts.Cols)

	// Light placement does not depend on the pixel, so gather it once.
	lights := s.Lights(cameraStack)

	// mu guards img, rowsDone and the progress callback.
	mu := sync.Mutex{}
	rowsDone := 0

	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(opts.workers()))

	chunk := opts.rowsPerChunk()
	var acquireErr error
	for rowSrc := 0; rowSrc < opts.Rows; rowSrc += chunk {
		rowLim := rowSrc + chunk
		if rowLim > opts.Rows {
			rowLim = opts.Rows
		}

		if err := sem.Acquire(egCtx, 1); err != nil {
			acquireErr = err
			break
		}

		worker := &ChunkWorker{
			ctx:     egCtx,
			tracer:  tracer.New(s, opts.Bound),
			pinhole: camera.Pinhole{FOVDegrees: opts.FOVDegrees},
			stack:   cameraStack,
			lights:  lights,
			imgRows: opts.Rows,
			imgCols: opts.Cols,
			rowSrc:  rowSrc,
			rowLim:  rowLim,
			rowDone: func() {
				opts.Metrics.RowDone(ctx, opts.SceneName)

				mu.Lock()
				defer mu.Unlock()
				rowsDone++
				if opts.Progress != nil {
					opts.Progress(rowsDone, opts.Rows)
				}
			},
		}
		worker.dst = img.Cut(rowSrc, rowLim, 0, opts.Cols)

		eg.Go(func() error {
			defer sem.Release(1)
			err := worker.Render()
			opts.Metrics.RayCasts(ctx, opts.SceneName, worker.tracer.Casts)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			img.Paste(worker.dst, worker.rowSrc, 0)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if acquireErr != nil {
		return nil, acquireErr
	}

	opts.Metrics.RenderFinished(ctx, opts.SceneName, time.Since(start))
	return img, nil
}

// TerminalProgress prints a throttled progress line to w when fd is a
// terminal, and does nothing otherwise.
func TerminalProgress(w io.Writer, fd int) ProgressFunction {
	if !term.IsTerminal(fd) {
		return func(int, int) {}
	}

	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
	return func(done, total int) {
		if done != total && !limiter.Allow() {
			return
		}
		fmt.Fprintf(w, "\r%d/%d %d%%", done, total, 100*done/total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}
