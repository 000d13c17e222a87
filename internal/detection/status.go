package detection

import "strings"

// ConservationStatus is an IUCN-style extinction risk category
type ConservationStatus string

const (
	StatusLeastConcern         ConservationStatus = "least-concern"
	StatusNearThreatened       ConservationStatus = "near-threatened"
	StatusVulnerable           ConservationStatus = "vulnerable"
	StatusEndangered           ConservationStatus = "endangered"
	StatusCriticallyEndangered ConservationStatus = "critically-endangered"
	StatusDataDeficient        ConservationStatus = "data-deficient"
	StatusUnknown              ConservationStatus = "unknown"
)

// statusAliases maps IUCN codes and long names to statuses
var statusAliases = map[string]ConservationStatus{
	"lc":                    StatusLeastConcern,
	"least concern":         StatusLeastConcern,
	"least-concern":         StatusLeastConcern,
	"nt":                    StatusNearThreatened,
	"near threatened":       StatusNearThreatened,
	"near-threatened":       StatusNearThreatened,
	"vu":                    StatusVulnerable,
	"vulnerable":            StatusVulnerable,
	"en":                    StatusEndangered,
	"endangered":            StatusEndangered,
	"cr":                    StatusCriticallyEndangered,
	"critically endangered": StatusCriticallyEndangered,
	"critically-endangered": StatusCriticallyEndangered,
	"dd":                    StatusDataDeficient,
	"data deficient":        StatusDataDeficient,
	"data-deficient":        StatusDataDeficient,
}

// ParseConservationStatus accepts IUCN codes (LC, NT, VU, EN, CR, DD) or
// their long names, case-insensitively. Anything else is StatusUnknown.
func ParseConservationStatus(s string) ConservationStatus {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", " ")
	if status, ok := statusAliases[key]; ok {
		return status
	}
	return StatusUnknown
}

// Code returns the two letter IUCN code, or "NE" (not evaluated) for unknown.
func (s ConservationStatus) Code() string {
	switch s {
	case StatusLeastConcern:
		return "LC"
	case StatusNearThreatened:
		return "NT"
	case StatusVulnerable:
		return "VU"
	case StatusEndangered:
		return "EN"
	case StatusCriticallyEndangered:
		return "CR"
	case StatusDataDeficient:
		return "DD"
	default:
		return "NE"
	}
}

// DefaultEndangered reports whether the status implies the endangered flag
func (s ConservationStatus) DefaultEndangered() bool {
	return s == StatusEndangered || s == StatusCriticallyEndangered
}

// DefaultProtected reports whether the status implies the protected flag
func (s ConservationStatus) DefaultProtected() bool {
	return s == StatusVulnerable || s.DefaultEndangered()
}
