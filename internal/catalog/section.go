package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SectionKind selects which top-level section of the document is rebuilt.
type SectionKind string

const (
	Undergraduate SectionKind = "pregrado"
	Graduate      SectionKind = "postgrado"
)

var sectionIDs = map[SectionKind]string{
	Undergraduate: "0",
	Graduate:      "1",
}

var sectionAliases = map[string]SectionKind{
	"pregrado":      Undergraduate,
	"undergraduate": Undergraduate,
	"postgrado":     Graduate,
	"graduate":      Graduate,
}

// sectionKeys holds the document key of each section. It is filled once at
// init and only read afterwards; a cases.Caser is stateful and cannot be
// shared between goroutines.
var sectionKeys = func() map[SectionKind]string {
	caser := cases.Title(language.Spanish)
	keys := make(map[SectionKind]string, len(sectionIDs))
	for k := range sectionIDs {
		keys[k] = caser.String(string(k))
	}
	return keys
}()

// ParseSectionKind accepts the Spanish or English section name, any case.
func ParseSectionKind(s string) (SectionKind, error) {
	kind, ok := sectionAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
	}
	return kind, nil
}

// DetectSectionKind infers the section from a listing's filename.
func DetectSectionKind(filename string) (SectionKind, error) {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, string(Undergraduate)):
		return Undergraduate, nil
	case strings.Contains(name, string(Graduate)):
		return Graduate, nil
	}
	return "", fmt.Errorf("%w: cannot detect from %q", ErrUnknownSection, filename)
}

// Valid reports whether k is one of the two known sections.
func (k SectionKind) Valid() bool {
	_, ok := sectionIDs[k]
	return ok
}

// ID is the identifier stored inside the section ("0" or "1").
func (k SectionKind) ID() string {
	return sectionIDs[k]
}

// Key is the document key holding the section: "Pregrado" or "Postgrado".
func (k SectionKind) Key() string {
	return sectionKeys[k]
}

func (k SectionKind) String() string {
	return string(k)
}
