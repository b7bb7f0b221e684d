package pipeline

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lucasjlepore/gait-analyzer/v3d"
)

// ExportDir is the archive folder that, when present, holds the only exports read.
const ExportDir = "Export/"

// Inputs is a batch of exports keyed by base file name.
type Inputs struct {
	Source string
	Files  map[string]*v3d.RawTable
	// Skipped lists members that could not be read as tab-delimited tables.
	Skipped []string
}

// ReadInput reads a zip archive or a directory of exports.
func ReadInput(p string, logger *zap.Logger) (*Inputs, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return ReadDir(p, logger)
	}
	return ReadArchive(p, logger)
}

// ReadArchive reads a zip archive from disk.
func ReadArchive(p string, logger *zap.Logger) (*Inputs, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return ReadArchiveBytes(filepath.Base(p), data, logger)
}

// ReadArchiveBytes reads every file member of a zip archive. When any member
// sits under Export/ at the archive root, only those members are read.
// Folders are skipped and each table is keyed by its base name.
func ReadArchiveBytes(name string, data []byte, logger *zap.Logger) (*Inputs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", name, err)
	}

	var members []*zip.File
	exportOnly := false
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		members = append(members, f)
		if strings.HasPrefix(f.Name, ExportDir) {
			exportOnly = true
		}
	}
	if exportOnly {
		kept := members[:0]
		for _, f := range members {
			if strings.HasPrefix(f.Name, ExportDir) {
				kept = append(kept, f)
			}
		}
		members = kept
	}

	in := &Inputs{Source: name, Files: make(map[string]*v3d.RawTable, len(members))}
	for _, f := range members {
		base := path.Base(f.Name)
		t, err := readMember(f, base)
		if err != nil {
			logger.Warn("skipping archive member", zap.String("member", f.Name), zap.Error(err))
			in.Skipped = append(in.Skipped, f.Name)
			continue
		}
		in.Files[base] = t
	}
	logger.Debug("archive read",
		zap.String("archive", name),
		zap.Bool("export_only", exportOnly),
		zap.Int("tables", len(in.Files)),
		zap.Int("skipped", len(in.Skipped)),
	)
	return in, nil
}

func readMember(f *zip.File, base string) (*v3d.RawTable, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return v3d.ReadTable(base, io.LimitReader(rc, maxMemberBytes))
}

// maxMemberBytes bounds a single decompressed export.
const maxMemberBytes = 64 << 20

// ReadDir reads every regular file in dir, preferring an Export subfolder when present.
func ReadDir(dir string, logger *zap.Logger) (*Inputs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	root := dir
	if st, err := os.Stat(filepath.Join(dir, strings.TrimSuffix(ExportDir, "/"))); err == nil && st.IsDir() {
		root = filepath.Join(dir, strings.TrimSuffix(ExportDir, "/"))
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	in := &Inputs{Source: filepath.Base(dir), Files: make(map[string]*v3d.RawTable, len(names))}
	for _, n := range names {
		t, err := v3d.ReadTableFile(filepath.Join(root, n))
		if err != nil {
			logger.Warn("skipping file", zap.String("file", n), zap.Error(err))
			in.Skipped = append(in.Skipped, n)
			continue
		}
		in.Files[n] = t
	}
	return in, nil
}
