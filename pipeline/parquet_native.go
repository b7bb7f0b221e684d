//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const parquetSupported = true

type waveformParquetRow struct {
	Parameter string  `parquet:"name=parameter, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Side      string  `parquet:"name=side, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Series    string  `parquet:"name=series, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Cycle     int32   `parquet:"name=cycle, type=INT32"`
	Value     float64 `parquet:"name=value, type=DOUBLE"`
}

type phaseStatsParquetRow struct {
	Parameter string  `parquet:"name=parameter, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Phase     string  `parquet:"name=phase, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Start     float64 `parquet:"name=pct_start, type=DOUBLE"`
	End       float64 `parquet:"name=pct_end, type=DOUBLE"`
	LMax      float64 `parquet:"name=l_max, type=DOUBLE"`
	LMin      float64 `parquet:"name=l_min, type=DOUBLE"`
	LROM      float64 `parquet:"name=l_rom, type=DOUBLE"`
	RMax      float64 `parquet:"name=r_max, type=DOUBLE"`
	RMin      float64 `parquet:"name=r_min, type=DOUBLE"`
	RROM      float64 `parquet:"name=r_rom, type=DOUBLE"`
	DMax      float64 `parquet:"name=d_max, type=DOUBLE"`
	DMin      float64 `parquet:"name=d_min, type=DOUBLE"`
	DROM      float64 `parquet:"name=d_rom, type=DOUBLE"`
}

func waveformRows(samples []WaveformSample) []any {
	rows := make([]any, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, waveformParquetRow{
			Parameter: s.Parameter,
			Side:      s.Side,
			Series:    s.Series,
			Cycle:     int32(s.Cycle),
			Value:     valueOrNaN(s.Value),
		})
	}
	return rows
}

func phaseStatsRows(stats PhaseStatsFile) []any {
	var rows []any
	for _, p := range stats.Parameters {
		for _, r := range p.Rows {
			rows = append(rows, phaseStatsParquetRow{
				Parameter: p.Parameter,
				Phase:     r.Name,
				Start:     r.Start,
				End:       r.End,
				LMax:      r.Left.Max.Value,
				LMin:      r.Left.Min.Value,
				LROM:      r.Left.ROM,
				RMax:      r.Right.Max.Value,
				RMin:      r.Right.Min.Value,
				RROM:      r.Right.ROM,
				DMax:      r.DMax,
				DMin:      r.DMin,
				DROM:      r.DROM,
			})
		}
	}
	return rows
}

func writeParquet(fw source.ParquetFile, schema any, rows []any) error {
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}

func writeParquetFile(path string, schema any, rows []any) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := writeParquet(fw, schema, rows); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func marshalParquet(schema any, rows []any) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := writeParquet(fw, schema, rows); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func writeWaveformsParquet(path string, samples []WaveformSample) error {
	return writeParquetFile(path, new(waveformParquetRow), waveformRows(samples))
}

func writePhaseStatsParquet(path string, stats PhaseStatsFile) error {
	return writeParquetFile(path, new(phaseStatsParquetRow), phaseStatsRows(stats))
}

func marshalWaveformsParquet(samples []WaveformSample) ([]byte, error) {
	return marshalParquet(new(waveformParquetRow), waveformRows(samples))
}

func marshalPhaseStatsParquet(stats PhaseStatsFile) ([]byte, error) {
	return marshalParquet(new(phaseStatsParquetRow), phaseStatsRows(stats))
}
