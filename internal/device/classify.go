package device

import (
	"strings"
)

// thermalVocabulary is the single source of truth for name-based thermal
// detection: generic terms plus vendor model prefixes (Epson TM, Star TSP,
// Bixolon SRP, Rongta RP, Zjiang ZJ, Xprinter XP).
var thermalVocabulary = []string{
	"thermal",
	"receipt",
	"ticket",
	"pos",
	"80mm",
	"58mm",
	"tm-",
	"tsp",
	"srp-",
	"rp-",
	"zj-",
	"xp-",
}

// Classify reports whether a device looks like a thermal printer. The match
// is a case-insensitive substring check against the vocabulary; devices seen
// on the raw USB or serial buses passed a printer-class filter at enumeration
// and count as thermal regardless of name, as do raw network endpoints.
// This is a heuristic: operator overrides win over it (see Registry).
func Classify(name string, transport Transport) bool {
	switch transport {
	case TransportUsb, TransportSerial, TransportNetwork:
		return true
	}
	lower := strings.ToLower(name)
	for _, word := range thermalVocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// OverrideThermal and OverrideStandard are the values an operator override
// may take; anything else is ignored.
const (
	OverrideThermal  = "thermal"
	OverrideStandard = "standard"
)

// Overrides maps a device name to a forced classification
type Overrides map[string]string

// apply resolves the final classification for one device
func (o Overrides) apply(name string, heuristic bool) bool {
	switch o[name] {
	case OverrideThermal:
		return true
	case OverrideStandard:
		return false
	}
	return heuristic
}
