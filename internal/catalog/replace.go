package catalog

import "fmt"

// Report summarizes one section replacement.
type Report struct {
	Section SectionKind `json:"section"`
	Key     string      `json:"key"`
	Records int         `json:"records"`
	Stats   Stats       `json:"stats"`
	Summary Summary     `json:"summary"`
}

// Replace validates raw, rebuilds the section for kind and splices it into
// doc. Nothing is built when validation fails.
func Replace(doc *Document, raw []RawRecord, kind SectionKind, opts ...Option) (*Document, *Report, error) {
	if !kind.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSection, kind)
	}
	records, err := NormalizeAndValidate(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("validate %s records: %w", kind, err)
	}

	o := newOptions(opts)
	m, summary := Analyze(records, o.policy)
	h := assemble(records, kind, m)

	out, err := SpliceSection(doc, kind, h)
	if err != nil {
		return nil, nil, err
	}
	return out, &Report{
		Section: kind,
		Key:     kind.Key(),
		Records: len(records),
		Stats:   h.Stats(),
		Summary: summary,
	}, nil
}
