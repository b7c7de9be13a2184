package catalog

import "strconv"

// firstDynamicLocationCode is the code given to the first location not in
// wellKnownLocations.
const firstDynamicLocationCode = 4

// wellKnownLocations have fixed codes in every generated document.
var wellKnownLocations = map[string]string{
	"Santiago":     "0",
	"Concepción":   "1",
	"Viña del Mar": "2",
	"Online":       "3",
	"OnLine":       "3",
}

type renameKey struct {
	section  SectionKind
	location string
}

// locationDisplayKeys overrides the key a location is emitted under. The
// graduate section of the published document spells the online site "OnLine".
var locationDisplayKeys = map[renameKey]string{
	{section: Graduate, location: "Online"}: "OnLine",
}

// LocationDisplayKey returns the document key for a location in a section.
func LocationDisplayKey(kind SectionKind, location string) string {
	if key, ok := locationDisplayKeys[renameKey{section: kind, location: location}]; ok {
		return key
	}
	return location
}

// locationCodes seeds the well-known codes and numbers the remaining names in
// the order they were first seen.
func locationCodes(seen []string) map[string]string {
	codes := make(map[string]string, len(wellKnownLocations)+len(seen))
	for name, code := range wellKnownLocations {
		codes[name] = code
	}
	next := firstDynamicLocationCode
	for _, name := range seen {
		if _, ok := codes[name]; ok {
			continue
		}
		codes[name] = strconv.Itoa(next)
		next++
	}
	return codes
}
