package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lucasjlepore/gait-analyzer/pipeline"
)

func main() {
	var (
		input      = flag.String("input", "", "Path to a Visual3D export archive (.zip) or directory")
		outDir     = flag.String("out", "", "Output directory")
		configPath = flag.String("config", "", "Optional TOML/YAML configuration (defaults to the built-in CGM layout)")
		format     = flag.String("format", "parquet", "Waveform and phase table format: parquet|csv")
		overwrite  = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --input export.zip --out outdir [--config gait.toml] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*input) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gait_analyze failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	result, err := pipeline.Run(pipeline.Options{
		InputPath:  *input,
		OutDir:     *outDir,
		ConfigPath: *configPath,
		Format:     *format,
		Overwrite:  *overwrite,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "gait_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("gait_analyze complete\n")
	fmt.Printf("Output dir:          %s\n", result.OutputDir)
	fmt.Printf("manifest.json:       %s\n", result.ManifestPath)
	fmt.Printf("waveforms:           %s\n", result.WaveformsPath)
	fmt.Printf("phase stats:         %s\n", result.PhaseStatsPath)
	fmt.Printf("phase stats json:    %s\n", result.PhaseStatsJSONPath)
	fmt.Printf("report:              %s\n", result.ReportPath)
	fmt.Printf("parameters:          %s\n", strings.Join(result.Parameters, ", "))
	for _, w := range result.Warnings {
		fmt.Printf("warning:             %s\n", w)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
