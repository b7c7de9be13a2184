package api

import (
	"net/http"
	"path/filepath"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/store"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":         s.orchestrator.Stats(),
		"queue_depth":  s.orchestrator.QueueDepth(),
		"tracked_jobs": s.orchestrator.TrackedJobs(),
	})
}

// tableFile is a discovered listing with the section its name implies.
type tableFile struct {
	Path    string              `json:"path"`
	Section catalog.SectionKind `json:"section,omitempty"`
}

// handleListFiles lists the documents and listings in the watch directory,
// or beside the configured document.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	dir := s.cfg.WatchDir
	if dir == "" && s.cfg.DocumentPath != "" {
		dir = filepath.Dir(s.cfg.DocumentPath)
	}
	if dir == "" {
		jsonError(w, "no directory configured", http.StatusServiceUnavailable)
		return
	}

	listing, err := store.Discover(dir)
	if err != nil {
		jsonError(w, "failed to list files: "+err.Error(), http.StatusInternalServerError)
		return
	}

	tables := make([]tableFile, 0, len(listing.Tables))
	for _, path := range listing.Tables {
		kind, _ := catalog.DetectSectionKind(path)
		tables = append(tables, tableFile{Path: path, Section: kind})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dir":       dir,
		"documents": listing.Documents,
		"tables":    tables,
	})
}
