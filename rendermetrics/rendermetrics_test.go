package rendermetrics

import (
	"context"
	"testing"
	"time"

	"go.opencensus.io/stats/view"
)

func TestRecorder(t *testing.T) {
	r := New()
	if err := r.RegisterMetrics(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ctx := context.Background()
	r.RowDone(ctx, "metrics-test")
	r.RowDone(ctx, "metrics-test")
	r.RayCasts(ctx, "metrics-test", 40)
	r.RenderFinished(ctx, "metrics-test", 2*time.Second)

	rows, err := view.RetrieveData("whitted/rows_rendered")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := countFor(rows, "metrics-test"); got != 2 {
		t.Errorf("rows_rendered count; got %d, want 2", got)
	}

	casts, err := view.RetrieveData("whitted/ray_casts")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := sumFor(casts, "metrics-test"); got != 40 {
		t.Errorf("ray_casts sum; got %v, want 40", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	if err := r.RegisterMetrics(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	r.RowDone(context.Background(), "x")
	r.RayCasts(context.Background(), "x", 3)
	r.RenderFinished(context.Background(), "x", time.Second)
}

func countFor(rows []*view.Row, scene string) int64 {
	for _, row := range rows {
		if hasScene(row, scene) {
			if d, ok := row.Data.(*view.CountData); ok {
				return d.Value
			}
		}
	}
	return 0
}

func sumFor(rows []*view.Row, scene string) float64 {
	for _, row := range rows {
		if hasScene(row, scene) {
			if d, ok := row.Data.(*view.SumData); ok {
				return d.Value
			}
		}
	}
	return 0
}

func hasScene(row *view.Row, scene string) bool {
	for _, tg := range row.Tags {
		if tg.Key == sceneKey && tg.Value == scene {
			return true
		}
	}
	return false
}
