package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/wbrown/img2pbn"
	"github.com/wbrown/img2pbn/export"
	"github.com/wbrown/img2pbn/imageutil"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", "",
		"Path to the output template (required; .svg or .png)")
	clusterCount := flag.Int("k", 16,
		"Number of palette colors to cluster")
	space := flag.String("space", "rgb",
		"Color space for distances (rgb, hsl, lab)")
	seed := flag.Int64("seed", 1,
		"Random seed for reproducible clustering")
	threshold := flag.Float64("threshold", 0.001,
		"K-means convergence threshold")
	minFacet := flag.Int("min-facet", 20,
		"Minimum facet size in pixels; smaller facets are merged away")
	order := flag.String("order", "largeToSmall",
		"Facet removal order (largeToSmall, smallToLarge)")
	maxFacets := flag.Int("max-facets", 0,
		"Maximum number of facets, 0 for unlimited")
	smoothing := flag.Int("smoothing", 2,
		"Border smoothing iterations, 0 disables")
	paletteName := flag.String("palette", "",
		"Fixed palette: embedded name (primary12, pastel16) or JSON file")
	dominant := flag.Int("dominant", 0,
		"Derive a fixed palette of N dominant colors from the image")
	targetWidth := flag.Int("width", 0,
		"Resize the input to this width before processing, 0 keeps it")
	blur := flag.Int("blur", 0,
		"Gaussian pre-blur passes to suppress noise")
	scale := flag.Float64("scale", 1.0,
		"Output scale factor")
	fill := flag.Bool("fill", false,
		"Fill facets with their palette colors")
	labels := flag.Bool("labels", true,
		"Draw palette numbers inside facets")
	verbose := flag.Bool("v", false,
		"Enable verbose logging")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(*verbose),
	}))
	if *verbose {
		img2pbn.SetLogger(log)
	}

	if *inputFile == "" || *outputFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(log, *inputFile, *outputFile, options{
		clusterCount: *clusterCount,
		space:        *space,
		seed:         *seed,
		threshold:    *threshold,
		minFacet:     *minFacet,
		order:        *order,
		maxFacets:    *maxFacets,
		smoothing:    *smoothing,
		paletteName:  *paletteName,
		dominant:     *dominant,
		targetWidth:  *targetWidth,
		blur:         *blur,
		scale:        *scale,
		fill:         *fill,
		labels:       *labels,
	}); err != nil {
		log.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	clusterCount int
	space        string
	seed         int64
	threshold    float64
	minFacet     int
	order        string
	maxFacets    int
	smoothing    int
	paletteName  string
	dominant     int
	targetWidth  int
	blur         int
	scale        float64
	fill         bool
	labels       bool
}

func run(log *slog.Logger, inputFile, outputFile string, o options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	img, err := imageutil.LoadImage(inputFile)
	if err != nil {
		return err
	}
	log.Info("image loaded", "path", inputFile,
		"width", img.Width(), "height", img.Height())

	if o.targetWidth > 0 {
		img = imageutil.ResizeToWidth(img, o.targetWidth)
	}
	if o.blur > 0 {
		img = imageutil.GaussianBlur(img, o.blur)
	}

	opts := img2pbn.DefaultOptions()
	opts.ClusterCount = o.clusterCount
	opts.RandomSeed = o.seed
	opts.ConvergenceThreshold = o.threshold
	opts.MinFacetSize = o.minFacet
	opts.MaxFacetCount = o.maxFacets
	opts.SmoothingIterations = o.smoothing

	opts.ColorSpace, err = img2pbn.ParseColorSpace(o.space)
	if err != nil {
		return err
	}
	opts.RemovalOrder, err = img2pbn.ParseRemovalOrder(o.order)
	if err != nil {
		return err
	}

	switch {
	case o.paletteName != "":
		opts.FixedPalette, err = img2pbn.LoadPalette(o.paletteName)
	case o.dominant > 0:
		opts.FixedPalette, err = img2pbn.DominantPalette(img.RGBA, o.dominant)
	}
	if err != nil {
		return err
	}

	lastStage := img2pbn.Stage(-1)
	opts.Progress = func(stage img2pbn.Stage, fraction float64) {
		if stage != lastStage || fraction >= 1.0 {
			log.Debug("progress", "stage", stage.String(),
				"fraction", fmt.Sprintf("%.2f", fraction))
			lastStage = stage
		}
	}

	result, err := img2pbn.Process(ctx, img, opts)
	if err != nil {
		return err
	}
	log.Info("template computed",
		"facets", result.LiveCount(), "colors", len(result.Palette))

	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".svg":
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		return export.WriteSVG(f, result, export.SVGOptions{
			Scale:      o.scale,
			FillColors: o.fill,
			ShowLabels: o.labels,
		})
	case ".png":
		out, err := export.RenderPNG(result, export.PNGOptions{
			Scale:      int(o.scale + 0.5),
			FillColors: o.fill,
			Outline:    true,
			ShowLabels: o.labels,
		})
		if err != nil {
			return err
		}
		return imageutil.SavePNG(out, outputFile)
	}
	return fmt.Errorf("unsupported output format %q (use .svg or .png)", filepath.Ext(outputFile))
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
