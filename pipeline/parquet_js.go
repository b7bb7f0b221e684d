//go:build js

package pipeline

import "errors"

const parquetSupported = false

var errParquetUnavailable = errors.New("parquet output is not available in js builds")

func writeWaveformsParquet(string, []WaveformSample) error { return errParquetUnavailable }

func writePhaseStatsParquet(string, PhaseStatsFile) error { return errParquetUnavailable }

func marshalWaveformsParquet([]WaveformSample) ([]byte, error) { return nil, errParquetUnavailable }

func marshalPhaseStatsParquet(PhaseStatsFile) ([]byte, error) { return nil, errParquetUnavailable }
