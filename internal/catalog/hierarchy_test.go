package catalog

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild_TwoLocationScenario(t *testing.T) {
	records := []Record{
		rec("101", "Bio", "Santiago", "Main", "A", "Diurno", "1"),
		rec("102", "Art", "Online", "Virtual", "B", "Diurno", "1"),
	}
	h := Build(records, Undergraduate)

	want := &Hierarchy{
		Section: Undergraduate,
		ID:      "0",
		Regimes: []Regime{{
			Name: "Diurno",
			ID:   "1",
			Locations: []Location{
				{Name: "Online", Key: "Online", ID: "3", Campuses: []Campus{
					{Name: "Virtual", ID: "B", Programs: []Program{{ID: "102", Name: "Art"}}},
				}},
				{Name: "Santiago", Key: "Santiago", ID: "0", Campuses: []Campus{
					{Name: "Main", ID: "A", Programs: []Program{{ID: "101", Name: "Bio"}}},
				}},
			},
		}},
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("hierarchy mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_GraduateRenamesOnline(t *testing.T) {
	records := []Record{rec("201", "MBA", "Online", "Virtual", "V", "Executive", "3")}

	grad := Build(records, Graduate)
	if got := grad.Regimes[0].Locations[0].Key; got != "OnLine" {
		t.Errorf("expected graduate key %q, got %q", "OnLine", got)
	}
	if got := grad.Regimes[0].Locations[0].ID; got != "3" {
		t.Errorf("expected location id %q, got %q", "3", got)
	}
	if grad.ID != "1" {
		t.Errorf("expected graduate section id %q, got %q", "1", grad.ID)
	}

	under := Build(records, Undergraduate)
	if got := under.Regimes[0].Locations[0].Key; got != "Online" {
		t.Errorf("expected undergraduate key %q, got %q", "Online", got)
	}
}

func TestBuild_RenameIsCaseSensitive(t *testing.T) {
	records := []Record{rec("201", "MBA", "online", "Virtual", "V", "Executive", "3")}
	h := Build(records, Graduate)
	if got := h.Regimes[0].Locations[0].Key; got != "online" {
		t.Errorf("expected %q to be left alone, got %q", "online", got)
	}
}

func TestBuild_Ordering(t *testing.T) {
	records := []Record{
		rec("1", "Zoología", "Viña del Mar", "Sur", "S", "Vespertino", "10"),
		rec("2", "Derecho", "Santiago", "Providencia", "P", "Diurno", "2"),
		rec("3", "Arquitectura", "Santiago", "Providencia", "P", "Diurno", "2"),
		rec("4", "Medicina", "Concepción", "Centro", "C", "Diurno", "2"),
		rec("5", "Enfermería", "Santiago", "La Florida", "F", "Diurno", "2"),
		rec("6", "Auditoría", "Santiago", "Centro", "C", "Advance", "ADV"),
	}
	h := Build(records, Undergraduate)

	regimes := names(h.Regimes, func(r Regime) string { return r.Name })
	if diff := cmp.Diff([]string{"Diurno", "Vespertino", "Advance"}, regimes); diff != "" {
		t.Errorf("regime order mismatch (-want +got):\n%s", diff)
	}

	diurno := h.Regimes[0]
	locations := names(diurno.Locations, func(l Location) string { return l.Name })
	if diff := cmp.Diff([]string{"Concepción", "Santiago"}, locations); diff != "" {
		t.Errorf("location order mismatch (-want +got):\n%s", diff)
	}

	santiago := diurno.Locations[1]
	campuses := names(santiago.Campuses, func(c Campus) string { return c.Name })
	if diff := cmp.Diff([]string{"La Florida", "Providencia"}, campuses); diff != "" {
		t.Errorf("campus order mismatch (-want +got):\n%s", diff)
	}

	programs := names(santiago.Campuses[1].Programs, func(p Program) string { return p.Name })
	if diff := cmp.Diff([]string{"Arquitectura", "Derecho"}, programs); diff != "" {
		t.Errorf("program order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_OrderingAndPruningOnLargerInput(t *testing.T) {
	var records []Record
	locs := []string{"Santiago", "Online", "Temuco", "Concepción"}
	regs := [][2]string{{"Diurno", "1"}, {"Vespertino", "2"}, {"Ejecutivo", "12"}, {"Especial", "E"}}
	for i := range 64 {
		reg := regs[i%len(regs)]
		loc := locs[(i/3)%len(locs)]
		campus := loc + " " + string(rune('A'+i%5))
		records = append(records, rec(
			strings.Repeat("9", i%4+1), string(rune('z'-i%26))+"program",
			loc, campus, campus, reg[0], reg[1],
		))
	}
	h := Build(records, Graduate)

	var prev *NamedCode
	for _, r := range h.Regimes {
		cur := NamedCode{Name: r.Name, Code: r.ID}
		if prev != nil && compareRegimes(*prev, cur) >= 0 {
			t.Errorf("regime %v emitted after %v", cur, *prev)
		}
		prev = &cur

		if len(r.Locations) == 0 {
			t.Errorf("regime %q has no locations", r.Name)
		}
		if !slices.IsSortedFunc(r.Locations, func(a, b Location) int { return strings.Compare(a.Name, b.Name) }) {
			t.Errorf("locations of %q not sorted", r.Name)
		}
		for _, l := range r.Locations {
			if len(l.Campuses) == 0 {
				t.Errorf("location %q has no campuses", l.Name)
			}
			if !slices.IsSortedFunc(l.Campuses, func(a, b Campus) int { return strings.Compare(a.Name, b.Name) }) {
				t.Errorf("campuses of %q not sorted", l.Name)
			}
			for _, c := range l.Campuses {
				if len(c.Programs) == 0 {
					t.Errorf("campus %q has no programs", c.Name)
				}
				if !slices.IsSortedFunc(c.Programs, func(a, b Program) int { return strings.Compare(a.Name, b.Name) }) {
					t.Errorf("programs of %q not sorted", c.Name)
				}
			}
		}
	}
	if got := h.Stats().Programs; got != len(records) {
		t.Errorf("expected %d programs, got %d", len(records), got)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	records := []Record{
		rec("1", "B", "Temuco", "T", "T", "Diurno", "1"),
		rec("2", "A", "Arica", "R", "R", "Vespertino", "2"),
		rec("3", "C", "Santiago", "S", "S", "Especial", "E"),
		rec("4", "D", "Santiago", "S", "S", "Otro", "O"),
	}
	first, err := json.Marshal(Build(records, Undergraduate))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for range 20 {
		again, err := json.Marshal(Build(records, Undergraduate))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("output differs between runs:\n%s\n%s", first, again)
		}
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	h := Build(nil, Undergraduate)
	if h.Regimes == nil || len(h.Regimes) != 0 {
		t.Errorf("expected empty non-nil regimes, got %#v", h.Regimes)
	}
	b, err := marshalJSON(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"id":"0","regimes":[]}` {
		t.Errorf("unexpected json %s", b)
	}
}

func TestHierarchy_JSONShape(t *testing.T) {
	records := []Record{
		rec("101", "Diseño & Arte", "Santiago", "Main", "A", "Diurno", "1"),
	}
	b, err := marshalJSON(Build(records, Undergraduate))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"0","regimes":[{"Diurno":{"id":"1","locations":[{"Santiago":{"id":"0","campus":[{"Main":{"id":"A","careers":[{"id":"101","name":"Diseño & Arte"}]}}]}}]}}]}`
	if string(b) != want {
		t.Errorf("unexpected json\nwant %s\ngot  %s", want, b)
	}
}

func TestHierarchy_Stats(t *testing.T) {
	records := []Record{
		rec("1", "A", "Santiago", "Main", "M", "Diurno", "1"),
		rec("2", "B", "Santiago", "Main", "M", "Diurno", "1"),
		rec("3", "C", "Santiago", "Main", "M", "Vespertino", "2"),
		rec("4", "D", "Online", "Virtual", "V", "Vespertino", "2"),
	}
	got := Build(records, Undergraduate).Stats()
	want := Stats{Regimes: 2, Locations: 3, Campuses: 3, Programs: 4}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, name(item))
	}
	return out
}
