// Package store reads and writes career documents on the local filesystem.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/tabular"
)

// dateLayout renders dd-mm-yy.
const dateLayout = "02-01-06"

// FS persists documents. Output files go to Dir, or beside the source
// document when Dir is empty.
type FS struct {
	Dir string
}

// Listing is the result of scanning a directory for inputs.
type Listing struct {
	Documents []string `json:"documents"`
	Tables    []string `json:"tables"`
}

// ReadDocument loads and parses a JSON document, keeping its key order.
func (s *FS) ReadDocument(path string) (*catalog.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc, err := catalog.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// WriteDocument writes doc as indented JSON under the dated output name
// derived from sourcePath and returns the path written. The file is
// replaced atomically.
func (s *FS) WriteDocument(doc *catalog.Document, sourcePath string, now time.Time) (string, error) {
	data, err := doc.MarshalIndent()
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	dir := s.Dir
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(dir, OutputName(sourcePath, now))

	tmp, err := os.CreateTemp(dir, ".careersync-*.json")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, out); err != nil {
		return "", fmt.Errorf("rename output: %w", err)
	}
	return out, nil
}

// OutputName returns "<base>-dd-mm-yy.json" for a source document path.
func OutputName(sourcePath string, now time.Time) string {
	base := filepath.Base(sourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "-" + now.Format(dateLayout) + ".json"
}

// Discover lists candidate documents (JSON files with "career" in the name)
// and readable tables in dir. Subdirectories are not scanned.
func Discover(dir string) (*Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	l := &Listing{Documents: []string{}, Tables: []string{}}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".json") && strings.Contains(strings.ToLower(name), "career"):
			l.Documents = append(l.Documents, filepath.Join(dir, name))
		case tabular.IsSupportedExtension(name):
			l.Tables = append(l.Tables, filepath.Join(dir, name))
		}
	}
	sort.Strings(l.Documents)
	sort.Strings(l.Tables)
	return l, nil
}
