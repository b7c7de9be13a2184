package catalog

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Hierarchy is one rebuilt section: regimes → locations → campuses → programs.
type Hierarchy struct {
	Section SectionKind
	ID      string
	Regimes []Regime
}

// Regime is a modality entry keyed by regime name.
type Regime struct {
	Name      string
	ID        string
	Locations []Location
}

// Location is keyed by Key, which differs from Name only where a display
// rename applies.
type Location struct {
	Name     string
	Key      string
	ID       string
	Campuses []Campus
}

// Campus holds the programs offered at one site.
type Campus struct {
	Name     string
	ID       string
	Programs []Program
}

// Program is a leaf career entry.
type Program struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stats counts the entries of a hierarchy.
type Stats struct {
	Regimes   int `json:"regimes"`
	Locations int `json:"locations"`
	Campuses  int `json:"campuses"`
	Programs  int `json:"programs"`
}

// Option configures Build and Replace.
type Option func(*options)

type options struct {
	policy CodePolicy
}

// WithCodePolicy selects first-seen or last-seen code resolution.
func WithCodePolicy(p CodePolicy) Option {
	return func(o *options) {
		if p != "" {
			o.policy = p
		}
	}
}

func newOptions(opts []Option) options {
	o := options{policy: LastSeen}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build groups records into the section hierarchy for kind. An empty record
// set yields a hierarchy with no regimes.
func Build(records []Record, kind SectionKind, opts ...Option) *Hierarchy {
	o := newOptions(opts)
	m, _ := Analyze(records, o.policy)
	return assemble(records, kind, m)
}

func assemble(records []Record, kind SectionKind, m Mappings) *Hierarchy {
	h := &Hierarchy{
		Section: kind,
		ID:      kind.ID(),
		Regimes: []Regime{},
	}

	byRegime := lo.GroupBy(records, func(r Record) string { return r.Regime })
	regimeOrder := namedCodes(m.Regimes, lo.Keys(byRegime))
	slices.SortFunc(regimeOrder, compareRegimes)

	for _, rc := range regimeOrder {
		regime := Regime{Name: rc.Name, ID: rc.Code, Locations: []Location{}}

		byLocation := lo.GroupBy(byRegime[rc.Name], func(r Record) string { return r.Location })
		for _, locName := range sortedKeys(byLocation) {
			loc := Location{
				Name:     locName,
				Key:      LocationDisplayKey(kind, locName),
				ID:       m.Locations[locName],
				Campuses: []Campus{},
			}

			byCampus := lo.GroupBy(byLocation[locName], func(r Record) string { return r.Campus })
			for _, campusName := range sortedKeys(byCampus) {
				programs := lo.Map(byCampus[campusName], func(r Record, _ int) Program {
					return Program{ID: r.ProgramID, Name: r.ProgramName}
				})
				if len(programs) == 0 {
					continue
				}
				slices.SortStableFunc(programs, func(a, b Program) int {
					return strings.Compare(a.Name, b.Name)
				})
				loc.Campuses = append(loc.Campuses, Campus{
					Name:     campusName,
					ID:       m.Campuses[campusName],
					Programs: programs,
				})
			}

			if len(loc.Campuses) > 0 {
				regime.Locations = append(regime.Locations, loc)
			}
		}

		if len(regime.Locations) > 0 {
			h.Regimes = append(h.Regimes, regime)
		}
	}
	return h
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

// Stats counts regimes, location entries, campus entries and programs.
func (h *Hierarchy) Stats() Stats {
	var s Stats
	s.Regimes = len(h.Regimes)
	for _, r := range h.Regimes {
		s.Locations += len(r.Locations)
		for _, l := range r.Locations {
			s.Campuses += len(l.Campuses)
			for _, c := range l.Campuses {
				s.Programs += len(c.Programs)
			}
		}
	}
	return s
}

func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	return marshalJSON(struct {
		ID      string   `json:"id"`
		Regimes []Regime `json:"regimes"`
	}{ID: h.ID, Regimes: orEmpty(h.Regimes)})
}

func (r Regime) MarshalJSON() ([]byte, error) {
	return marshalJSON(map[string]any{
		r.Name: struct {
			ID        string     `json:"id"`
			Locations []Location `json:"locations"`
		}{ID: r.ID, Locations: orEmpty(r.Locations)},
	})
}

func (l Location) MarshalJSON() ([]byte, error) {
	key := l.Key
	if key == "" {
		key = l.Name
	}
	return marshalJSON(map[string]any{
		key: struct {
			ID       string   `json:"id"`
			Campuses []Campus `json:"campus"`
		}{ID: l.ID, Campuses: orEmpty(l.Campuses)},
	})
}

func (c Campus) MarshalJSON() ([]byte, error) {
	return marshalJSON(map[string]any{
		c.Name: struct {
			ID       string    `json:"id"`
			Programs []Program `json:"careers"`
		}{ID: c.ID, Programs: orEmpty(c.Programs)},
	})
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// marshalJSON encodes v without HTML escaping, so names such as
// "Diseño & Arte" are written as-is.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
