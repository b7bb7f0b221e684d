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
		inputA     = flag.String("a", "", "First session archive or directory")
		inputB     = flag.String("b", "", "Second session archive or directory")
		outDir     = flag.String("out", "", "Output directory")
		configPath = flag.String("config", "", "Optional TOML/YAML configuration")
		overwrite  = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --a first.zip --b second.zip --out outdir [--config gait.toml]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*inputA) == "" || strings.TrimSpace(*inputB) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	config := zap.NewProductionConfig()
	if *debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gait_compare failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	result, err := pipeline.RunCompare(pipeline.CompareOptions{
		InputA:     *inputA,
		InputB:     *inputB,
		OutDir:     *outDir,
		ConfigPath: *configPath,
		Overwrite:  *overwrite,
		Logger:     logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "gait_compare failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("gait_compare complete\n")
	fmt.Printf("Output dir:          %s\n", result.OutputDir)
	fmt.Printf("comparison.json:     %s\n", result.ComparisonJSONPath)
	fmt.Printf("comparison.csv:      %s\n", result.ComparisonCSVPath)
	fmt.Printf("shared parameters:   %s\n", strings.Join(result.Parameters, ", "))
	for _, w := range result.Warnings {
		fmt.Printf("warning:             %s\n", w)
	}
}
