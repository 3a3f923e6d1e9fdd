// Package rendermetrics records opencensus measurements about renders.
//
// A nil *Recorder is valid and records nothing.
package rendermetrics

import (
	"context"
	"fmt"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var sceneKey = tag.MustNewKey("scene")

type Recorder struct {
	rowsRendered *stats.Int64Measure
	rayCasts     *stats.Int64Measure
	renderTime   *stats.Float64Measure

	views []*view.View
}

func New() *Recorder {
	r := &Recorder{}

	r.rowsRendered = stats.Int64("whitted/rows_rendered", "Image rows finished", stats.UnitDimensionless)
	r.rayCasts = stats.Int64("whitted/ray_casts", "Rays cast against the scene graph", stats.UnitDimensionless)
	r.renderTime = stats.Float64("whitted/render_time", "Wall time of a full render", stats.UnitMilliseconds)

	r.views = []*view.View{
		{
			Name:        "whitted/rows_rendered",
			Description: "Counter of image rows that have been rendered",
			TagKeys:     []tag.Key{sceneKey},
			Measure:     r.rowsRendered,
			Aggregation: view.Count(),
		},
		{
			Name:        "whitted/ray_casts",
			Description: "Total rays cast, including shadow and secondary rays",
			TagKeys:     []tag.Key{sceneKey},
			Measure:     r.rayCasts,
			Aggregation: view.Sum(),
		},
		{
			Name:        "whitted/render_time",
			Description: "Distribution of render wall times",
			TagKeys:     []tag.Key{sceneKey},
			Measure:     r.renderTime,
			Aggregation: view.Distribution(100, 500, 1000, 5000, 10000, 60000, 300000),
		},
	}

	return r
}

func (r *Recorder) RegisterMetrics() error {
	if r == nil {
		return nil
	}
	if err := view.Register(r.views...); err != nil {
		return fmt.Errorf("while registering render views: %w", err)
	}
	return nil
}

func (r *Recorder) record(ctx context.Context, scene string, m stats.Measurement) {
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Insert(sceneKey, scene)),
		stats.WithMeasurements(m))
}

func (r *Recorder) RowDone(ctx context.Context, scene string) {
	if r == nil {
		return
	}
	r.record(ctx, scene, r.rowsRendered.M(1))
}

func (r *Recorder) RayCasts(ctx context.Context, scene string, n int64) {
	if r == nil || n == 0 {
		return
	}
	r.record(ctx, scene, r.rayCasts.M(n))
}

func (r *Recorder) RenderFinished(ctx context.Context, scene string, d time.Duration) {
	if r == nil {
		return
	}
	r.record(ctx, scene, r.renderTime.M(float64(d)/float64(time.Millisecond)))
}
