package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/pkg/geometry"
	"github.com/df07/go-raycore/pkg/loaders"
	"github.com/df07/go-raycore/pkg/material"
	"github.com/df07/go-raycore/pkg/renderer"
	"github.com/df07/go-raycore/pkg/scene"
)

// errUnknownFormat is returned for output files with an unsupported extension
var errUnknownFormat = errors.New("unknown image format")

// options holds the parsed command line
type options struct {
	scene      string
	integrator string
	partition  string
	output     string
	mesh       string
	meshScale  float64
	samples    int
	depth      int
	width      int
	height     int
	threads    int
	tileSize   int
	seed       uint64
	rrDepth    int
	area       int
	adaptive   int
	threshold  float64
	gamma      float64
	debug      bool
	list       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args, renders the selected scene and writes the image
func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}

	if opts.list {
		for _, info := range scene.Builtins() {
			fmt.Fprintf(stdout, "  %-10s %s\n", info.ID, info.Description)
		}
		return nil
	}

	logger := core.NewWriterLogger(stdout, os.Stderr, "raycore", opts.debug)

	sc, err := createScene(opts.scene)
	if err != nil {
		return err
	}
	if opts.mesh != "" {
		if sc, err = addMesh(sc, opts.mesh, opts.meshScale); err != nil {
			return err
		}
	}
	logger.Infof("Scene %q: %d primitives, %d lights, %d area light triangles",
		sc.Name(), sc.PrimitiveCount(), len(sc.Lights()), len(sc.AreaLights()))
	for _, m := range sc.Meshes() {
		stats := m.BVHStats()
		logger.Debugf("mesh %q: %d triangles (%d degenerate skipped), BVH %d nodes, %d leaves, depth %d",
			m.Name, m.Len(), m.Skipped(), stats.TotalNodes, stats.LeafNodes, stats.MaxDepth)
	}
	cfg, err := buildConfig(opts, sc)
	if err != nil {
		return err
	}

	r := renderer.NewRenderer(logger)
	r.OnPartition = func(p renderer.PartitionResult) {
		if p.Completed%max(1, p.Total/10) == 0 || p.Completed == p.Total {
			logger.Infof("progress: %d/%d partitions", p.Completed, p.Total)
		}
	}

	result, err := r.Render(ctx, sc, cfg)
	if err != nil {
		return err
	}

	filename := opts.output
	if filename == "" {
		filename = filepath.Join("output", opts.scene, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
	}
	if err := saveImage(filename, result.Framebuffer.ToRGBA(cfg.Gamma)); err != nil {
		return err
	}

	logger.Infof("Samples per pixel: %.1f (range %d - %d)",
		result.Stats.AverageSamples, result.Stats.MinSamples, result.Stats.MaxSamplesUsed)
	logger.Infof("Render %s saved as %s", result.Status, filename)
	return nil
}

// parseFlags parses the command line. Zero width, height or threads keep
// the scene's resolution and the machine's CPU count.
func parseFlags(args []string, output io.Writer) (options, error) {
	defaults := renderer.DefaultConfig()
	var opts options

	fs := flag.NewFlagSet("raycore", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.scene, "scene", "default", "Scene name: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.integrator, "integrator", defaults.Integrator.String(), "Integrator: ray-trace or path-trace")
	fs.StringVar(&opts.partition, "partition", defaults.Partition.String(), "Work partitioning: tiles or rows")
	fs.StringVar(&opts.mesh, "mesh", "", "PLY mesh file to add to the scene")
	fs.Float64Var(&opts.meshScale, "mesh-scale", 1, "Uniform scale applied to the -mesh file")
	fs.StringVar(&opts.output, "out", "", "Output file (.png, .bmp, .tif); default output/<scene>/render_<timestamp>.png")
	fs.IntVar(&opts.samples, "spp", defaults.SamplesPerPixel, "Samples per pixel")
	fs.IntVar(&opts.depth, "depth", defaults.MaxDepth, "Maximum recursion/path depth")
	fs.IntVar(&opts.width, "width", 0, "Image width (0 = scene default)")
	fs.IntVar(&opts.height, "height", 0, "Image height (0 = scene default)")
	fs.IntVar(&opts.threads, "threads", 0, "Worker threads (0 = logical CPU count)")
	fs.IntVar(&opts.tileSize, "tile", defaults.TileSize, "Tile size in pixels")
	fs.Uint64Var(&opts.seed, "seed", defaults.Seed, "Random seed")
	fs.IntVar(&opts.rrDepth, "rr", defaults.RRDepth, "Bounces before Russian roulette (path tracer)")
	fs.IntVar(&opts.area, "area-samples", defaults.AreaSamples, "Area light samples per edge (ray tracer)")
	fs.IntVar(&opts.adaptive, "adaptive", 0, "Adaptive sampling depth (0 = stratified sampling)")
	fs.Float64Var(&opts.threshold, "threshold", defaults.AdaptiveThreshold, "Adaptive sampling color threshold")
	fs.Float64Var(&opts.gamma, "gamma", defaults.Gamma, "Output gamma")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.list, "list", false, "List available scenes")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// createScene builds a built-in scene by name
func createScene(name string) (*scene.Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty scene name", scene.ErrUnknownScene)
	}
	return scene.ByName(name)
}

// addMesh returns a copy of sc with the PLY mesh at path added
func addMesh(sc *scene.Scene, path string, scale float64) (*scene.Scene, error) {
	if !(scale > 0) {
		return nil, fmt.Errorf("mesh scale must be positive, got %g", scale)
	}
	mat := material.NewGlossy(core.Gray(0.6), core.Gray(0.2), 64)
	mesh, err := loaders.LoadPLYMesh(path, mat, &geometry.Transform{Scale: core.NewVec3(scale, scale, scale)})
	if err != nil {
		return nil, err
	}
	return scene.New(scene.Description{
		Name:       sc.Name(),
		Camera:     sc.Camera(),
		Lights:     sc.Lights(),
		Primitives: sc.Primitives(),
		Meshes:     append(slices.Clone(sc.Meshes()), mesh),
		Background: sc.Background(),
	}), nil
}

// buildConfig turns the command line into a render config, filling the
// resolution from the scene camera when not given
func buildConfig(opts options, sc *scene.Scene) (renderer.Config, error) {
	cfg := renderer.DefaultConfig()

	kind, err := renderer.ParseIntegrator(opts.integrator)
	if err != nil {
		return cfg, err
	}
	partition, err := renderer.ParsePartition(opts.partition)
	if err != nil {
		return cfg, err
	}

	cfg.Integrator = kind
	cfg.Partition = partition
	cfg.SamplesPerPixel = opts.samples
	cfg.MaxDepth = opts.depth
	cfg.TileSize = opts.tileSize
	cfg.Seed = opts.seed
	cfg.RRDepth = opts.rrDepth
	cfg.AreaSamples = opts.area
	cfg.AdaptiveDepth = opts.adaptive
	cfg.AdaptiveThreshold = opts.threshold
	cfg.Gamma = opts.gamma

	cfg.Width, cfg.Height = sc.Camera().Width(), sc.Camera().Height()
	if opts.width > 0 {
		cfg.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Height = opts.height
	}
	if opts.threads > 0 {
		cfg.Threads = opts.threads
	}

	return cfg, cfg.Validate()
}

// saveImage encodes img according to the file extension, creating the
// parent directory if needed
func saveImage(filename string, img image.Image) error {
	var encode func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		encode = png.Encode
	case ".bmp":
		encode = bmp.Encode
	case ".tif", ".tiff":
		encode = func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, filepath.Ext(filename))
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return file.Close()
}
