// Package catalog turns a flat listing of academic programs into the nested
// regime → location → campus → program hierarchy of a careers document and
// splices it into that document. It performs no I/O.
package catalog

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Column headers of the program listing.
const (
	ColProgramID   = "Codigo Banner"
	ColProgramName = "Carrera"
	ColProgramCode = "Código Carrera"
	ColLocation    = "Sede"
	ColCampus      = "Campus"
	ColCampusCode  = "Código Campus"
	ColRegime      = "Régimen"
	ColRegimeCode  = "Código Régimen"
)

// RequiredColumns lists every column a listing must carry, in report order.
var RequiredColumns = []string{
	ColProgramID,
	ColProgramName,
	ColProgramCode,
	ColLocation,
	ColCampus,
	ColCampusCode,
	ColRegime,
	ColRegimeCode,
}

// RawRecord is one untyped row keyed by column header.
type RawRecord map[string]string

// Record is a normalized program row.
type Record struct {
	ProgramID   string `json:"program_id"`
	ProgramName string `json:"program_name"`
	ProgramCode string `json:"program_code"`
	Location    string `json:"location"`
	Campus      string `json:"campus"`
	CampusCode  string `json:"campus_code"`
	Regime      string `json:"regime"`
	RegimeCode  string `json:"regime_code"`
}

// NormalizeAndValidate checks the schema of the first row and converts every
// row into a Record. Validation is all-or-nothing: on error no records are
// returned.
func NormalizeAndValidate(raw []RawRecord) ([]Record, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}
	if err := ValidateSchema(raw[0]); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw))
	for _, row := range raw {
		records = append(records, Normalize(row))
	}
	return records, nil
}

// ValidateSchema reports which required columns are absent from row.
func ValidateSchema(row RawRecord) error {
	present := make(map[string]bool, len(row))
	for key := range row {
		present[cleanHeader(key)] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Normalize trims and NFC-normalizes each field. Absent fields become "".
func Normalize(row RawRecord) Record {
	fields := make(map[string]string, len(row))
	for key, value := range row {
		fields[cleanHeader(key)] = cleanValue(value)
	}
	return Record{
		ProgramID:   fields[ColProgramID],
		ProgramName: fields[ColProgramName],
		ProgramCode: fields[ColProgramCode],
		Location:    fields[ColLocation],
		Campus:      fields[ColCampus],
		CampusCode:  fields[ColCampusCode],
		Regime:      fields[ColRegime],
		RegimeCode:  fields[ColRegimeCode],
	}
}

// cleanHeader strips a leading byte order mark and surrounding whitespace.
func cleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return norm.NFC.String(strings.TrimSpace(h))
}

func cleanValue(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}
