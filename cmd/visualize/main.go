package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/Brownie44l1/saliency/internal/imageio"
	"github.com/Brownie44l1/saliency/internal/model"
	"github.com/Brownie44l1/saliency/internal/pipeline"
)

const usageText = `Usage: visualize [flags] <backbone.onnx> <head.onnx> <examples.json> <images-dir> <results-dir>

Writes base, x_0, x_1 and attribution PNGs for every example in the list.

Flags:
`

type options struct {
	metadataPath  string
	explainerPath string
	libraryPath   string
	legacyNames   bool
	quiet         bool

	backbonePath string
	headPath     string
	examplesPath string
	inputDir     string
	outputDir    string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "visualize: %v\n", err)
		return 2
	}

	if err := visualize(opts); err != nil {
		log.Printf("Visualization failed: %v", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("visualize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}
	fs.StringVarP(&opts.metadataPath, "metadata", "m", "", "model metadata file (YAML or JSON)")
	fs.StringVarP(&opts.explainerPath, "explainer", "e", "", "exported attribution graph (overrides metadata)")
	fs.StringVar(&opts.libraryPath, "ort-lib", "", "path to the onnxruntime shared library")
	fs.BoolVar(&opts.legacyNames, "legacy-names", false, "write the combined map with the historical \"attriution\" suffix")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress per-example logging")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 5 {
		fs.Usage()
		return opts, fmt.Errorf("expected 5 arguments, got %d", fs.NArg())
	}

	opts.backbonePath = fs.Arg(0)
	opts.headPath = fs.Arg(1)
	opts.examplesPath = fs.Arg(2)
	opts.inputDir = fs.Arg(3)
	opts.outputDir = fs.Arg(4)
	return opts, nil
}

func visualize(opts options) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	if opts.quiet {
		logger = log.New(io.Discard, "", 0)
	}

	meta, err := model.LoadMetadata(opts.metadataPath)
	if err != nil {
		return err
	}

	examples, err := pipeline.LoadExamples(opts.examplesPath)
	if err != nil {
		return err
	}

	logger.Printf("Loading backbone from: %s", opts.backbonePath)
	logger.Printf("Loading head from: %s", opts.headPath)

	host, err := model.NewHost(model.HostConfig{
		BackbonePath:  opts.backbonePath,
		HeadPath:      opts.headPath,
		ExplainerPath: opts.explainerPath,
		LibraryPath:   opts.libraryPath,
		Metadata:      meta,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize model host: %w", err)
	}
	defer host.Close()

	logger.Printf("Classes: %v", meta.Classes)
	logger.Printf("Examples: %d", len(examples))

	runner := &pipeline.Runner{
		Model:       host,
		Loader:      imageio.Loader{Size: meta.ImageSize, Scale: meta.InputScale},
		InputDir:    opts.inputDir,
		OutputDir:   opts.outputDir,
		LegacyNames: opts.legacyNames,
		Logger:      logger,
	}
	return runner.Run(examples)
}
