package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
)

// RunCompare loads two sessions and writes their shared parameters side by side.
func RunCompare(opts CompareOptions) (*CompareResult, error) {
	if strings.TrimSpace(opts.InputA) == "" || strings.TrimSpace(opts.InputB) == "" {
		return nil, fmt.Errorf("two inputs are required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	logger := loggerOrNop(opts.Logger)
	cfg, err := resolveConfig(opts.Config, opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	var (
		a, b     *gaitnotes.Dataset
		inA, inB *Inputs
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		inA, a, err = LoadDataset(opts.InputA, cfg, logger.With(zap.String("slot", "1")))
		return err
	})
	g.Go(func() error {
		var err error
		inB, b, err = LoadDataset(opts.InputB, cfg, logger.With(zap.String("slot", "2")))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp := gaitnotes.Compare(a, b)
	titleA, _ := a.Title()
	titleB, _ := b.Title()
	file := ComparisonFile{
		TitleA:  titleA,
		TitleB:  titleB,
		SourceA: inA.Source,
		SourceB: inB.Source,
	}
	for _, e := range cmp.Entries {
		file.Parameters = append(file.Parameters, ComparisonParameter{
			Parameter: e.Name,
			Stats:     e.Stats,
			StatsB:    e.StatsB,
		})
	}

	var warnings []string
	for _, name := range a.Parameters() {
		if _, ok := cmp.Entry(name); !ok {
			warnings = append(warnings, fmt.Sprintf("%s missing from %s", name, inB.Source))
		}
	}
	for _, name := range b.Parameters() {
		if _, ok := cmp.Entry(name); !ok {
			warnings = append(warnings, fmt.Sprintf("%s missing from %s", name, inA.Source))
		}
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}
	jsonPath := filepath.Join(opts.OutDir, ComparisonJSONFileName)
	if err := writeJSON(jsonPath, file); err != nil {
		return nil, fmt.Errorf("write %s: %w", ComparisonJSONFileName, err)
	}
	csvPath := filepath.Join(opts.OutDir, ComparisonCSVFileName)
	if err := writeFileWith(csvPath, func(w io.Writer) error { return encodeComparisonCSV(w, cmp) }); err != nil {
		return nil, fmt.Errorf("write %s: %w", ComparisonCSVFileName, err)
	}

	logger.Info("gait_compare complete",
		zap.String("out", opts.OutDir),
		zap.Int("shared", len(cmp.Entries)),
		zap.Int("warnings", len(warnings)),
	)
	return &CompareResult{
		OutputDir:          opts.OutDir,
		ComparisonJSONPath: jsonPath,
		ComparisonCSVPath:  csvPath,
		Parameters:         cmp.Names(),
		Warnings:           warnings,
	}, nil
}

// LoadDataset reads an archive or directory and assembles its dataset.
func LoadDataset(p string, cfg gaitnotes.Config, logger *zap.Logger) (*Inputs, *gaitnotes.Dataset, error) {
	in, err := ReadInput(p, logger)
	if err != nil {
		return nil, nil, err
	}
	d, err := gaitnotes.Load(in.Files, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset from %s: %w", in.Source, err)
	}
	return in, d, nil
}

// encodeComparisonCSV writes one row per cycle sample and parameter with the
// four mean columns of the comparison table.
func encodeComparisonCSV(out io.Writer, cmp *gaitnotes.Comparison) error {
	w := csv.NewWriter(out)
	var header []string
	for _, e := range cmp.Entries {
		t := e.Table()
		if header == nil {
			header = append([]string{"parameter"}, t.Names()...)
			if err := w.Write(header); err != nil {
				return err
			}
		}
		for i := 0; i < t.Len(); i++ {
			row := []string{e.Name}
			for j, c := range t.Columns {
				if i >= len(c.Values) {
					row = append(row, "")
					continue
				}
				if j == 0 {
					row = append(row, strconv.Itoa(int(c.Values[i])))
					continue
				}
				row = append(row, formatFloat(c.Values[i]))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	if header == nil {
		if err := w.Write([]string{"parameter", "Gait cycle"}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
