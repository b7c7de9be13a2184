package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/pipeline"
	"github.com/dgallion1/careersync/internal/store"
	"github.com/dgallion1/careersync/internal/tabular"
)

// replaceForm holds the text fields of a replacement upload.
type replaceForm struct {
	Section    string `form:"section" validate:"omitempty,oneof=pregrado postgrado undergraduate graduate"`
	CodePolicy string `form:"code_policy" validate:"omitempty,oneof=last first"`
}

// upload is one file from a multipart form.
type upload struct {
	Name string
	Data []byte
}

// parseUploadForm reads the multipart form shared by replace, analyze and
// job submission. A failure has already been written to w.
func (s *Server) parseUploadForm(w http.ResponseWriter, r *http.Request, files int) (*replaceForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*int64(files)+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	form := &replaceForm{
		Section:    strings.ToLower(strings.TrimSpace(r.FormValue("section"))),
		CodePolicy: strings.ToLower(strings.TrimSpace(r.FormValue("code_policy"))),
	}
	if err := s.validate.Validate(form); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return form, true
}

// readUpload reads a form file, enforcing the upload limit.
func (s *Server) readUpload(r *http.Request, field string) (*upload, int, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("%s is required: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to read %s", field)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%s exceeds max size (%d bytes)", field, s.cfg.MaxUploadBytes)
	}
	return &upload{Name: sanitizeFilename(header.Filename), Data: data}, 0, nil
}

// readTableUpload reads the "table" field and checks its extension.
func (s *Server) readTableUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	table, code, err := s.readUpload(r, "table")
	if err != nil {
		jsonError(w, err.Error(), code)
		return nil, false
	}
	if !tabular.IsSupportedExtension(table.Name) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(table.Name)), http.StatusBadRequest)
		return nil, false
	}
	return table, true
}

// resolveSection returns the requested section, or the one named by the
// table file.
func resolveSection(form *replaceForm, tableName string) (catalog.SectionKind, error) {
	if form.Section != "" {
		return catalog.ParseSectionKind(form.Section)
	}
	return catalog.DetectSectionKind(tableName)
}

func (s *Server) codePolicy(form *replaceForm) catalog.CodePolicy {
	if form.CodePolicy != "" {
		return catalog.CodePolicy(form.CodePolicy)
	}
	return catalog.CodePolicy(s.cfg.CodePolicy)
}

// handleReplace rebuilds one section synchronously and returns the whole
// updated document.
func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseUploadForm(w, r, 2)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	document, code, err := s.readUpload(r, "document")
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	table, ok := s.readTableUpload(w, r)
	if !ok {
		return
	}

	kind, err := resolveSection(form, table.Name)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := catalog.ParseDocument(document.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	parsed, err := tabular.ReadFile(bytes.NewReader(table.Data), table.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, report, err := catalog.Replace(doc, parsed.Records(), kind, catalog.WithCodePolicy(s.codePolicy(form)))
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := updated.MarshalIndent()
	if err != nil {
		jsonError(w, "failed to encode document", http.StatusInternalServerError)
		return
	}

	s.log.Info("section replaced",
		"document", document.Name,
		"table", table.Name,
		"section", kind,
		"summary", report.Summary,
	)

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", store.OutputName(document.Name, time.Now())))
	h.Set("X-Careersync-Section", report.Key)
	h.Set("X-Careersync-Records", strconv.Itoa(report.Records))
	h.Set("X-Careersync-Regimes", strconv.Itoa(report.Stats.Regimes))
	h.Set("X-Careersync-Campuses", strconv.Itoa(report.Stats.Campuses))
	h.Set("X-Careersync-Programs", strconv.Itoa(report.Stats.Programs))
	h.Set("X-Careersync-Conflicts", strconv.Itoa(len(report.Summary.Conflicts)))
	w.WriteHeader(http.StatusOK)
	w.Write(append(out, '\n'))
}

// handleAnalyze validates a listing and reports the codes it would assign,
// without touching any document.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseUploadForm(w, r, 1)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	table, ok := s.readTableUpload(w, r)
	if !ok {
		return
	}
	parsed, err := tabular.ReadFile(bytes.NewReader(table.Data), table.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := catalog.NormalizeAndValidate(parsed.Records())
	if err != nil {
		writeError(w, err)
		return
	}
	_, summary := catalog.Analyze(records, s.codePolicy(form))

	resp := map[string]any{
		"table":   table.Name,
		"records": len(records),
		"summary": summary,
	}
	if kind, err := resolveSection(form, table.Name); err == nil {
		resp["section"] = kind
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var schemaErr *catalog.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   schemaErr.Error(),
			"missing": schemaErr.Missing,
		})
	case errors.Is(err, catalog.ErrEmptyInput),
		errors.Is(err, catalog.ErrUnknownSection):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		// Unreadable documents and tables: ErrInvalidDocument, ErrNoTable,
		// ErrEmptySource and format parse errors.
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	}
}

// newJobRequest builds a pipeline request from an upload pair.
func newJobRequest(document, table *upload, kind catalog.SectionKind, policy catalog.CodePolicy) pipeline.Request {
	return pipeline.Request{
		Document:   pipeline.Source{Name: document.Name, Data: document.Data},
		Table:      pipeline.Source{Name: table.Name, Data: table.Data},
		Section:    kind,
		CodePolicy: policy,
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
