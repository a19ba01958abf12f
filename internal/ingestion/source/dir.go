package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

// ProgressEvery is how many records of a file pass between progress logs.
const ProgressEvery = 50

type dirSource struct {
	root  string
	log   *logger.Logger
	files []string
	fi    int

	pending []json.RawMessage
	served  int
	file    string
}

// Dir reads every *.json file directly under root in name order. Hidden
// files are skipped. Each file may be a JSON object whose values are
// records, a single record, a JSON array of records, or JSON lines.
// Files that cannot be read or parsed are logged and skipped.
func Dir(root string, baseLog *logger.Logger) (Source, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read source dir %q: %w", root, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}
		files = append(files, filepath.Join(root, name))
	}
	sort.Strings(files)
	return &dirSource{
		root:  root,
		log:   baseLog.With("component", "DirSource", "dir", root),
		files: files,
	}, nil
}

func (d *dirSource) Name() string { return d.root }

func (d *dirSource) Next(ctx context.Context) (json.RawMessage, error) {
	for len(d.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.file != "" {
			d.log.Info("file done", "file", d.file, "records", d.served)
			d.file = ""
		}
		if d.fi >= len(d.files) {
			return nil, io.EOF
		}
		path := d.files[d.fi]
		d.fi++
		recs, err := readFile(path)
		if err != nil {
			d.log.Error("source file skipped", "file", path, "error", err)
			continue
		}
		d.log.Info("reading file", "file", path, "records", len(recs))
		d.pending, d.served, d.file = recs, 0, path
	}
	rec := d.pending[0]
	d.pending = d.pending[1:]
	d.served++
	if d.served%ProgressEvery == 0 {
		d.log.Info("progress", "file", d.file, "records", d.served)
	}
	return rec, nil
}

func readFile(path string) ([]json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse splits one file's bytes into raw records.
func Parse(b []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, fmt.Errorf("json array: %w", err)
		}
		return arr, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			// Several objects back to back: JSON lines.
			return parseLines(trimmed)
		}
		if looksLikeRecord(obj) {
			return []json.RawMessage{trimmed}, nil
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]json.RawMessage, 0, len(keys))
		for _, k := range keys {
			out = append(out, obj[k])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unrecognised file layout")
	}
}

func looksLikeRecord(obj map[string]json.RawMessage) bool {
	_, hasID := obj["id"]
	_, hasIDStr := obj["id_str"]
	_, hasCreated := obj["created_at"]
	return (hasID || hasIDStr) && hasCreated
}

func parseLines(b []byte) ([]json.RawMessage, error) {
	var out []json.RawMessage
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		rec := make(json.RawMessage, len(line))
		copy(rec, line)
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("json lines: %w", err)
	}
	return out, nil
}
