// Package output names finished images and delivers their bytes somewhere.
package output

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FilenameFor formats the name of the index'th image.
func FilenameFor(index int) string {
	return fmt.Sprintf("image%03d.png", index)
}

// Counter hands out increasing image names, starting at image001.png.  The
// zero value is ready to use and safe for concurrent use.
type Counter struct {
	mu   sync.Mutex
	last int
}

// StartingAfter returns a counter whose next name is index+1.
func StartingAfter(index int) *Counter {
	return &Counter{last: index}
}

func (c *Counter) Next() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return FilenameFor(c.last)
}

// Sink stores a named blob.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// DirSink writes into a local directory, creating it on first use.
type DirSink struct {
	Dir string
}

func (s *DirSink) Write(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("while creating output directory: %w", err)
	}
	p := filepath.Join(s.Dir, name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("while writing %q: %w", p, err)
	}
	return nil
}

// GCSSink writes objects under prefix in a GCS bucket.
type GCSSink struct {
	gcs    *storage.Client
	bucket string
	prefix string
}

func NewGCSSink(gcs *storage.Client, bucket, prefix string) *GCSSink {
	return &GCSSink{
		gcs:    gcs,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *GCSSink) Write(ctx context.Context, name string, data []byte) error {
	tracer := otel.Tracer("whitted/output")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GCSSink.Write")
	defer span.End()

	objName := path.Join(s.prefix, name)
	span.SetAttributes(attribute.String("object", objName), attribute.Int64("bytes", int64(len(data))))

	w := s.gcs.Bucket(s.bucket).Object(objName).NewWriter(ctx)
	w.ChunkSize = 0
	w.ContentType = contentType(name)

	if _, err := w.Write(data); err != nil {
		w.Close()
		err := fmt.Errorf("while writing object: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := w.Close(); err != nil {
		err := fmt.Errorf("while closing object writer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
