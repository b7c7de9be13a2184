package catalog

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rawRow(id, name, location, campus, campusCode, regime, regimeCode string) RawRecord {
	return RawRecord{
		ColProgramID:   id,
		ColProgramName: name,
		ColProgramCode: "C" + id,
		ColLocation:    location,
		ColCampus:      campus,
		ColCampusCode:  campusCode,
		ColRegime:      regime,
		ColRegimeCode:  regimeCode,
	}
}

func TestNormalizeAndValidate_TrimsFields(t *testing.T) {
	raw := []RawRecord{rawRow(" 101 ", "  Bio\t", "Santiago ", " Main", "A", "Diurno", " 1 ")}
	records, err := NormalizeAndValidate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Record{{
		ProgramID:   "101",
		ProgramName: "Bio",
		ProgramCode: "C 101",
		Location:    "Santiago",
		Campus:      "Main",
		CampusCode:  "A",
		Regime:      "Diurno",
		RegimeCode:  "1",
	}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeAndValidate_MissingProgramName(t *testing.T) {
	row := rawRow("101", "Bio", "Santiago", "Main", "A", "Diurno", "1")
	delete(row, ColProgramName)

	records, err := NormalizeAndValidate([]RawRecord{row})
	if records != nil {
		t.Errorf("expected no records on failure, got %d", len(records))
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if diff := cmp.Diff([]string{ColProgramName}, schemaErr.Missing); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeAndValidate_ReportsEveryMissingFieldInOrder(t *testing.T) {
	row := RawRecord{ColProgramName: "Bio", ColCampus: "Main"}
	_, err := NormalizeAndValidate([]RawRecord{row})

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	want := []string{ColProgramID, ColProgramCode, ColLocation, ColCampusCode, ColRegime, ColRegimeCode}
	if diff := cmp.Diff(want, schemaErr.Missing); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
	if got := schemaErr.Error(); got != "missing required fields: Codigo Banner, Código Carrera, Sede, Código Campus, Régimen, Código Régimen" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestNormalizeAndValidate_SchemaCheckedOnFirstRowOnly(t *testing.T) {
	first := rawRow("101", "Bio", "Santiago", "Main", "A", "Diurno", "1")
	second := RawRecord{ColProgramID: "102", ColProgramName: "Art"}

	records, err := NormalizeAndValidate([]RawRecord{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Location != "" || records[1].Regime != "" {
		t.Errorf("expected absent fields to be empty, got %+v", records[1])
	}
}

func TestNormalizeAndValidate_EmptyInput(t *testing.T) {
	_, err := NormalizeAndValidate(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestNormalize_HeaderWithBOMAndSpaces(t *testing.T) {
	row := rawRow("101", "Bio", "Santiago", "Main", "A", "Diurno", "1")
	delete(row, ColProgramID)
	row["\ufeff Codigo Banner "] = "101"

	if err := ValidateSchema(row); err != nil {
		t.Fatalf("expected BOM-prefixed header to validate, got %v", err)
	}
	if got := Normalize(row).ProgramID; got != "101" {
		t.Errorf("expected program id %q, got %q", "101", got)
	}
}

func TestNormalize_ComposesDecomposedAccents(t *testing.T) {
	// "Concepción" spelled with a combining acute accent.
	row := rawRow("101", "Bio", "Concepcio\u0301n", "Main", "A", "Diurno", "1")
	if got := Normalize(row).Location; got != "Concepción" {
		t.Errorf("expected composed %q, got %q", "Concepción", got)
	}
}
