package pipeline

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// tsv joins rows into a tab-delimited export.
func tsv(rows ...[]string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteString("\n")
	}
	return b.String()
}

// waveformExport renders two gait trials at f(c)-1 and f(c)+1 plus a static trial.
func waveformExport(f func(c int) float64) string {
	rows := [][]string{{"", "Gait 01.c3d", "Gait 02.c3d", "Static.c3d"}}
	for i := 0; i < 4; i++ {
		rows = append(rows, []string{"x", "ANGLES", "PROCESSED", "X"})
	}
	for c := 0; c < 101; c++ {
		v := f(c)
		rows = append(rows, []string{
			strconv.Itoa(c + 1),
			strconv.FormatFloat(v-1, 'f', -1, 64),
			strconv.FormatFloat(v+1, 'f', -1, 64),
			"500",
		})
	}
	return tsv(rows...)
}

func normExport() string {
	rows := [][]string{{"", "Mean", "SD"}}
	for i := 0; i < 4; i++ {
		rows = append(rows, []string{"x", "ANGLES", "NORM"})
	}
	for c := 0; c < 101; c++ {
		rows = append(rows, []string{strconv.Itoa(c + 1), strconv.Itoa(c / 2), "3"})
	}
	return tsv(rows...)
}

func keyValueExport(keys, values []string) string {
	pad := func(cells []string) []string { return append([]string{"1"}, cells...) }
	blank := make([]string, len(keys))
	for i := range blank {
		blank[i] = "-"
	}
	return tsv(
		pad(make([]string, len(keys))),
		pad(keys),
		pad(blank),
		pad(blank),
		pad(blank),
		pad(values),
	)
}

// sessionExports returns a session holding the pelvic tilt and knee exports
// of the default configuration. Left curves ramp by gain, right curves sit 5 lower.
func sessionExports(first string, gain float64) map[string]string {
	files := map[string]string{
		"Info.txt": keyValueExport(
			[]string{"First Name", "Last Name", "Creation date", "Folder Name"},
			[]string{first, "Doe", "2024-05-02", `C:\gait\S1_Barefoot`},
		),
		"Temporal Distance.txt": keyValueExport(
			[]string{"Speed", "Cadence"},
			[]string{"1.2", "110"},
		),
		"GPS.txt": keyValueExport(
			[]string{"Overall_GPS_mean_MEAN", "Left_GPS_mean_MEAN", "Right_GPS_mean_MEAN"},
			[]string{"7.1", "6.8", "7.4"},
		),
	}
	for _, stem := range []string{"Pelvic Tilt", "Knee Flexion"} {
		files["Left "+stem+".txt"] = waveformExport(func(c int) float64 { return gain * float64(c) })
		files["Right "+stem+".txt"] = waveformExport(func(c int) float64 { return gain*float64(c) - 5 })
		files["Norm "+stem+".txt"] = normExport()
	}
	return files
}

// zipExports builds an archive with every file placed under prefix.
func zipExports(t *testing.T, prefix string, files map[string]string, extra map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if prefix != "" {
		_, err := zw.Create(prefix)
		require.NoError(t, err)
	}
	write := func(name, body string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	for name, body := range files {
		write(prefix+name, body)
	}
	for name, body := range extra {
		write(name, body)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeArchive(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}
