// renderer ray traces a YAML scene description into numbered PNG images.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/profiler"
	"cloud.google.com/go/storage"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	googleopt "google.golang.org/api/option"

	"whitted/camera"
	"whitted/output"
	"whitted/raster"
	"whitted/render"
	"whitted/rendercache"
	"whitted/rendermetrics"
	"whitted/scene"
	"whitted/scenepack"
	"whitted/tracer"
	"whitted/vmath/vec3"
	"whitted/xfstack"
)

// vec3Flag parses "x,y,z".
type vec3Flag struct {
	v   vec3.T
	set bool
}

func (f *vec3Flag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%g,%g,%g", f.v[0], f.v[1], f.v[2])
}

func (f *vec3Flag) Set(s string) error {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("want x,y,z; got %q", s)
	}
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("while parsing component %d: %w", i, err)
		}
		f.v[i] = x
	}
	f.set = true
	return nil
}

var (
	sceneFile    = flag.String("scene", "", "Scene description (YAML)")
	outputDir    = flag.String("output-dir", ".", "Local directory for output images")
	outputBucket = flag.String("output-bucket", "", "If set, write output images to this GCS bucket instead of --output-dir")
	outputPrefix = flag.String("output-prefix", "", "Object name prefix within --output-bucket")
	startIndex   = flag.Int("start-index", 0, "Images are numbered starting after this index")
	count        = flag.Int("count", 1, "Number of images to render")
	rawOutput    = flag.Bool("raw-output", false, "Also write the float raster next to each PNG")

	rows    = flag.Int("rows", 480, "Output image rows")
	cols    = flag.Int("cols", 640, "Output image columns")
	fov     = flag.Float64("fov", 0, "Vertical field of view in degrees.  Zero uses the scene's camera")
	bound   = flag.Int("bound", tracer.DefaultBound, "Maximum number of reflection and refraction bounces")
	workers = flag.Int("workers", 0, "Concurrent row chunks.  Zero means one per CPU")

	eye    vec3Flag
	center vec3Flag
	up     vec3Flag

	cacheDir = flag.String("cache-dir", "", "If set, reuse finished renders stored in this directory")

	monitoring           = flag.Bool("monitoring", false, "Enable monitoring?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 0.01, "What ratio of traces should be exported?")
	enableProfiling      = flag.Bool("enable-profiling", false, "Enable Cloud Profiler")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile = flag.String("mem-profile", "", "write memory profile to `file`")
)

func init() {
	flag.Var(&eye, "eye", "Override the camera eye position (x,y,z)")
	flag.Var(&center, "center", "Override the camera look-at point (x,y,z)")
	flag.Var(&up, "up", "Override the camera up vector (x,y,z)")
}

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	glog.Infof("flags:")
	glog.Infof("scene: %q", *sceneFile)
	glog.Infof("output-dir: %q", *outputDir)
	glog.Infof("output-bucket: %q", *outputBucket)
	glog.Infof("rows x cols: %d x %d", *rows, *cols)
	glog.Infof("bound: %d", *bound)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Exitf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Exitf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := do(); err != nil {
		glog.Errorf("Error: %v", err)
		glog.Flush()
		os.Exit(1)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			glog.Exitf("Could not create memory profile: %v", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			glog.Exitf("Could not write memory profile: %v", err)
		}
	}
}

func do() error {
	if *sceneFile == "" {
		return fmt.Errorf("--scene is required")
	}
	if *rows <= 0 || *cols <= 0 {
		return fmt.Errorf("--rows and --cols must be positive; got %d x %d", *rows, *cols)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *enableProfiling {
		if err := profiler.Start(profiler.Config{
			Service:        "whitted-renderer",
			ServiceVersion: "0.0.1",
			ProjectID:      *monitoringProject,
		}); err != nil {
			return fmt.Errorf("while initializing profiler: %w", err)
		}
	}

	var metrics *rendermetrics.Recorder
	if *monitoring {
		traceOpts := []cloudtrace.Option{}
		if *monitoringProject != "" {
			traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		}
		_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
		if err != nil {
			return fmt.Errorf("while installing Cloud Trace pipeline: %w", err)
		}
		defer traceShutdown()

		exporter, err := stackdriver.NewExporter(stackdriver.Options{
			ProjectID:         *monitoringProject,
			MetricPrefix:      "whitted",
			ReportingInterval: 60 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("while initializing metrics exporter: %w", err)
		}
		if err := exporter.StartMetricsExporter(); err != nil {
			return fmt.Errorf("while starting metrics exporter: %w", err)
		}
		defer exporter.Flush()
		defer exporter.StopMetricsExporter()

		metrics = rendermetrics.New()
		if err := metrics.RegisterMetrics(); err != nil {
			return fmt.Errorf("while registering metrics: %w", err)
		}
	}

	sceneBytes, err := os.ReadFile(*sceneFile)
	if err != nil {
		return fmt.Errorf("while reading scene description: %w", err)
	}
	s, err := scenepack.Parse(sceneBytes, filepath.Dir(*sceneFile))
	if err != nil {
		return fmt.Errorf("while loading scene %s: %w", *sceneFile, err)
	}

	view := resolveView(s)
	glog.Infof("camera: eye=%v center=%v up=%v fov=%v", view.Eye, view.Center, view.Up, view.FOVDegrees)

	sink, err := newSink(ctx)
	if err != nil {
		return err
	}

	var cache *rendercache.Cache
	if *cacheDir != "" {
		cache, err = rendercache.Open(*cacheDir)
		if err != nil {
			return fmt.Errorf("while opening render cache: %w", err)
		}
		defer cache.Close()
	}
	textureFiles, err := scenepack.TextureFiles(sceneBytes, filepath.Dir(*sceneFile))
	if err != nil {
		return fmt.Errorf("while listing texture files: %w", err)
	}
	cacheKey := rendercache.Key(sceneBytes, rendercache.DigestFiles(textureFiles), *rows, *cols, *bound, view)

	opts := render.Options{
		Rows:       *rows,
		Cols:       *cols,
		FOVDegrees: view.FOVDegrees,
		Bound:      *bound,
		Workers:    *workers,
		SceneName:  filepath.Base(*sceneFile),
		Metrics:    metrics,
		Progress:   render.TerminalProgress(os.Stderr, int(os.Stderr.Fd())),
	}
	cameraStack := xfstack.New(view.WorldToView())

	counter := output.StartingAfter(*startIndex)
	for i := 0; i < *count; i++ {
		im, err := renderOrReuse(ctx, cache, cacheKey, s, opts, cameraStack)
		if err != nil {
			return err
		}

		name := counter.Next()
		if err := writeImage(ctx, sink, name, im); err != nil {
			return err
		}
		glog.Infof("Wrote %s", name)
	}

	return nil
}

// resolveView starts from the scene's camera (or the default one) and applies
// command-line overrides.
func resolveView(s *scene.Scene) camera.View {
	view := camera.DefaultView()
	if s.View != nil {
		view = *s.View
	}
	if eye.set {
		view.Eye = eye.v
	}
	if center.set {
		view.Center = center.v
	}
	if up.set {
		view.Up = up.v
	}
	if *fov != 0 {
		view.FOVDegrees = *fov
	}
	return view
}

func newSink(ctx context.Context) (output.Sink, error) {
	if *outputBucket == "" {
		return &output.DirSink{Dir: *outputDir}, nil
	}

	gcs, err := storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
	if err != nil {
		return nil, fmt.Errorf("while creating GCS client: %w", err)
	}
	return output.NewGCSSink(gcs, *outputBucket, *outputPrefix), nil
}

func renderOrReuse(ctx context.Context, cache *rendercache.Cache, key []byte, s *scene.Scene, opts render.Options, cameraStack xfstack.Stack) (*raster.Image, error) {
	if cache != nil {
		im, found, err := cache.Get(key)
		if err != nil {
			glog.Warningf("Ignoring render cache: %v", err)
		} else if found {
			glog.Infof("Reusing cached render")
			return im, nil
		}
	}

	start := time.Now()
	im, err := render.RenderImage(ctx, s, opts, cameraStack)
	if err != nil {
		return nil, fmt.Errorf("while rendering: %w", err)
	}
	glog.Infof("Rendered in %v", time.Since(start))

	if cache != nil {
		if err := cache.Put(key, im); err != nil {
			glog.Warningf("Failed to store render in cache: %v", err)
		}
	}
	return im, nil
}

func writeImage(ctx context.Context, sink output.Sink, name string, im *raster.Image) error {
	pngBytes := &bytes.Buffer{}
	if err := raster.EncodePNG(im, pngBytes); err != nil {
		return err
	}
	if err := sink.Write(ctx, name, pngBytes.Bytes()); err != nil {
		return fmt.Errorf("while writing %s: %w", name, err)
	}

	if *rawOutput {
		rawBytes := &bytes.Buffer{}
		if err := raster.WriteRaw(im, rawBytes); err != nil {
			return err
		}
		rawName := strings.TrimSuffix(name, filepath.Ext(name)) + ".raw"
		if err := sink.Write(ctx, rawName, rawBytes.Bytes()); err != nil {
			return fmt.Errorf("while writing %s: %w", rawName, err)
		}
	}
	return nil
}
