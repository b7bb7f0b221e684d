//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	gaitnotes "github.com/lucasjlepore/gait-analyzer"
	"github.com/lucasjlepore/gait-analyzer/pipeline"
)

func main() {
	js.Global().Set("analyzeGait", js.FuncOf(analyzeGait))
	select {}
}

func analyzeGait(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: archiveBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("export archive bytes are required")
	}

	archive := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(archive, fileArg); n == 0 {
		return failure("failed to read archive bytes from JS input")
	}

	opts := pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "export.zip"),
		ArchiveData:    archive,
		Format:         getString(optsArg, "format", "csv"),
	}
	if text := getString(optsArg, "config", ""); text != "" {
		cfg, err := gaitnotes.ParseConfig([]byte(text), getString(optsArg, "config_format", "toml"))
		if err != nil {
			return failure(err.Error())
		}
		opts.Config = &cfg
	}
	result, err := pipeline.RunBytes(opts)
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":         true,
		"zip":        payload,
		"warnings":   stringsToAny(result.Warnings),
		"files":      stringsToAny(fileNames),
		"parameters": stringsToAny(result.Parameters),
		"report":     string(result.Files[pipeline.ReportFileName]),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{"ok": false, "error": msg}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
