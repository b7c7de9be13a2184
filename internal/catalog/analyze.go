package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// CodePolicy decides which code wins when a regime or campus name appears
// with different codes across rows.
type CodePolicy string

const (
	LastSeen  CodePolicy = "last"
	FirstSeen CodePolicy = "first"
)

// ParseCodePolicy accepts "last" or "first"; empty means LastSeen.
func ParseCodePolicy(s string) (CodePolicy, error) {
	switch CodePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LastSeen:
		return LastSeen, nil
	case FirstSeen:
		return FirstSeen, nil
	}
	return "", fmt.Errorf("unknown code policy %q (want %q or %q)", s, LastSeen, FirstSeen)
}

// Mappings holds the code of every distinct regime, location and campus.
type Mappings struct {
	Regimes   map[string]string
	Locations map[string]string
	Campuses  map[string]string
}

// NamedCode pairs a name with its assigned code.
type NamedCode struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// CodeConflict records a name seen with more than one code.
type CodeConflict struct {
	Field string   `json:"field"`
	Name  string   `json:"name"`
	Codes []string `json:"codes"`
	Used  string   `json:"used"`
}

// Summary describes the distinct values found in a record set.
type Summary struct {
	Regimes   []NamedCode    `json:"regimes"`
	Locations []NamedCode    `json:"locations"`
	Campuses  []NamedCode    `json:"campuses"`
	Conflicts []CodeConflict `json:"conflicts"`
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("regimes", len(s.Regimes)),
		slog.Int("locations", len(s.Locations)),
		slog.Int("campuses", len(s.Campuses)),
		slog.Int("conflicts", len(s.Conflicts)),
	)
}

// Analyze scans records once and assigns codes to every regime, location
// and campus. Location codes are rebuilt from scratch on every call.
func Analyze(records []Record, policy CodePolicy) (Mappings, Summary) {
	regimes := newCodeTracker("regime", policy)
	campuses := newCodeTracker("campus", policy)
	for _, r := range records {
		regimes.observe(r.Regime, r.RegimeCode)
		campuses.observe(r.Campus, r.CampusCode)
	}

	seenLocations := lo.Uniq(lo.Map(records, func(r Record, _ int) string {
		return r.Location
	}))

	m := Mappings{
		Regimes:   regimes.codes,
		Locations: locationCodes(seenLocations),
		Campuses:  campuses.codes,
	}

	summary := Summary{
		Regimes:   namedCodes(m.Regimes, lo.Keys(m.Regimes)),
		Locations: namedCodes(m.Locations, seenLocations),
		Campuses:  namedCodes(m.Campuses, lo.Keys(m.Campuses)),
		Conflicts: append(regimes.conflicts(), campuses.conflicts()...),
	}
	slices.SortFunc(summary.Regimes, compareRegimes)
	slices.SortFunc(summary.Locations, compareNames)
	slices.SortFunc(summary.Campuses, compareNames)

	return m, summary
}

func namedCodes(codes map[string]string, names []string) []NamedCode {
	out := make([]NamedCode, 0, len(names))
	for _, name := range names {
		out = append(out, NamedCode{Name: name, Code: codes[name]})
	}
	return out
}

func compareNames(a, b NamedCode) int {
	return strings.Compare(a.Name, b.Name)
}

// compareRegimes orders numeric codes ascending, then every non-numeric
// code after them. Ties fall back to the name so the order is total.
func compareRegimes(a, b NamedCode) int {
	aNum, bNum := isDigits(a.Code), isDigits(b.Code)
	switch {
	case aNum && !bNum:
		return -1
	case !aNum && bNum:
		return 1
	case aNum && bNum:
		if c := compareNumeric(a.Code, b.Code); c != 0 {
			return c
		}
	default:
		if c := strings.Compare(a.Code, b.Code); c != 0 {
			return c
		}
	}
	return strings.Compare(a.Name, b.Name)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// compareNumeric compares two digit strings of any length by value.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

type codeTracker struct {
	field  string
	policy CodePolicy
	codes  map[string]string
	seen   map[string][]string
	order  []string
}

func newCodeTracker(field string, policy CodePolicy) *codeTracker {
	return &codeTracker{
		field:  field,
		policy: policy,
		codes:  make(map[string]string),
		seen:   make(map[string][]string),
	}
}

func (t *codeTracker) observe(name, code string) {
	prev, ok := t.seen[name]
	if !ok {
		t.order = append(t.order, name)
	}
	if !slices.Contains(prev, code) {
		t.seen[name] = append(prev, code)
	}
	if !ok || t.policy != FirstSeen {
		t.codes[name] = code
	}
}

func (t *codeTracker) conflicts() []CodeConflict {
	out := []CodeConflict{}
	for _, name := range t.order {
		if codes := t.seen[name]; len(codes) > 1 {
			out = append(out, CodeConflict{
				Field: t.field,
				Name:  name,
				Codes: codes,
				Used:  t.codes[name],
			})
		}
	}
	return out
}
