package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/pipeline"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional TOML/YAML configuration")
		jsonOut    = flag.Bool("json", false, "Emit the default phase tables as JSON")
		showGrid   = flag.Bool("grid", false, "Append the summary grid to the text output")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <export archive or directory>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := gaitnotes.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = gaitnotes.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
			os.Exit(1)
		}
	}
	_, d, err := pipeline.LoadDataset(flag.Arg(0), cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		out := make(map[string]any, len(d.Parameters()))
		for _, name := range d.Parameters() {
			out[name], _ = d.SeedStats(name)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Print(gaitnotes.BuildReportNotes(d, nil))
	if *showGrid {
		fmt.Println()
		fmt.Println("Summary Grid")
		for _, row := range d.Grid() {
			for i, name := range row {
				if name == "" {
					row[i] = "-"
				}
			}
			fmt.Printf("- %s\n", joinCells(row))
		}
	}
}

func joinCells(row []string) string {
	out := ""
	for i, c := range row {
		if i > 0 {
			out += " | "
		}
		out += fmt.Sprintf("%-26s", c)
	}
	return out
}
