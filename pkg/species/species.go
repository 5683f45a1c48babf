// Package species holds the closed set of species biology profiles consumed
// by the cycle calculator and the plan date engine: default cycle lengths,
// gestation bounds, placement ages, and seasonal breeding windows with
// hemisphere variants. The data is reference material deployed with the
// system, not user-editable.
package species

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Species is a closed enumeration of the supported species. Access goes
// through exhaustive switches so a missing case is a compile-time review
// item, not a silent fallback.
type Species int

// Supported species. Generic is the documented fallback produced only by
// Parse for unknown codes.
const (
	Generic Species = iota
	Dog
	Cat
	Horse
	Goat
	Sheep
	Rabbit
)

// GenericCycleDays is the default cycle length assumed for unknown species.
const GenericCycleDays = 180

// Hemisphere selects the seasonal window variant.
type Hemisphere string

// Hemisphere values. Southern windows sit roughly six months offset from
// the northern ones.
const (
	North Hemisphere = "north"
	South Hemisphere = "south"
)

// Profile groups the per-species biology constants.
type Profile struct {
	// CycleDays is the default inter-heat interval used when no statistics
	// or override are available.
	CycleDays int
	// Seasonal marks species whose fertility concentrates in part of the year.
	Seasonal bool
	// GestationMin/GestationTypical/GestationMax bound the plausible interval
	// between a breeding actual date and a birth actual date, in days.
	GestationMin     int
	GestationTypical int
	GestationMax     int
	// PlacementAgeDays is the customary offspring age at first placement.
	PlacementAgeDays int
}

// String returns the lower-case species code.
func (s Species) String() string {
	switch s {
	case Dog:
		return "dog"
	case Cat:
		return "cat"
	case Horse:
		return "horse"
	case Goat:
		return "goat"
	case Sheep:
		return "sheep"
	case Rabbit:
		return "rabbit"
	case Generic:
		return "generic"
	}
	return fmt.Sprintf("species(%d)", int(s))
}

// Parse resolves a case-insensitive species code. Unknown codes resolve to
// Generic with ok=false so callers can distinguish a deliberate generic from
// a typo while still getting usable defaults.
func Parse(code string) (Species, bool) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "dog":
		return Dog, true
	case "cat":
		return Cat, true
	case "horse":
		return Horse, true
	case "goat":
		return Goat, true
	case "sheep":
		return Sheep, true
	case "rabbit":
		return Rabbit, true
	case "generic":
		return Generic, true
	}
	return Generic, false
}

// MarshalJSON serialises the species as its string code.
func (s Species) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a string code, falling back to Generic for unknown values.
func (s *Species) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, _ := Parse(code)
	*s = parsed
	return nil
}

// Profile returns the biology constants for the species.
func (s Species) Profile() Profile {
	switch s {
	case Dog:
		return Profile{CycleDays: 180, Seasonal: false, GestationMin: 57, GestationTypical: 63, GestationMax: 68, PlacementAgeDays: 56}
	case Cat:
		return Profile{CycleDays: 21, Seasonal: true, GestationMin: 61, GestationTypical: 65, GestationMax: 70, PlacementAgeDays: 84}
	case Horse:
		return Profile{CycleDays: 21, Seasonal: true, GestationMin: 320, GestationTypical: 340, GestationMax: 370, PlacementAgeDays: 180}
	case Goat:
		return Profile{CycleDays: 21, Seasonal: true, GestationMin: 145, GestationTypical: 150, GestationMax: 155, PlacementAgeDays: 84}
	case Sheep:
		return Profile{CycleDays: 17, Seasonal: true, GestationMin: 144, GestationTypical: 147, GestationMax: 152, PlacementAgeDays: 84}
	case Rabbit:
		return Profile{CycleDays: 16, Seasonal: false, GestationMin: 28, GestationTypical: 31, GestationMax: 33, PlacementAgeDays: 56}
	case Generic:
		return Profile{CycleDays: GenericCycleDays, Seasonal: false, GestationMin: 57, GestationTypical: 63, GestationMax: 70, PlacementAgeDays: 56}
	}
	return Profile{CycleDays: GenericCycleDays, Seasonal: false, GestationMin: 57, GestationTypical: 63, GestationMax: 70, PlacementAgeDays: 56}
}

// DefaultCycleDays returns the species default inter-heat interval.
func DefaultCycleDays(s Species) int {
	return s.Profile().CycleDays
}

// IsSeasonalBreeder reports whether the species concentrates fertility
// seasonally.
func IsSeasonalBreeder(s Species) bool {
	return s.Profile().Seasonal
}

// Window describes a seasonal breeding window for one hemisphere.
type Window struct {
	Label      string       `json:"label"`
	PeakMonths []time.Month `json:"peak_months"`
}

// Contains reports whether the month falls inside the window.
func (w Window) Contains(m time.Month) bool {
	for _, month := range w.PeakMonths {
		if month == m {
			return true
		}
	}
	return false
}

// SeasonalWindow returns the hemisphere-adjusted breeding window for a
// seasonal breeder, or ok=false for non-seasonal species.
func SeasonalWindow(s Species, h Hemisphere) (Window, bool) {
	var w Window
	switch s {
	case Cat, Horse:
		// Long-day breeders cycle as daylight lengthens.
		w = Window{Label: "long-day breeder", PeakMonths: monthRange(time.April, time.September)}
	case Goat, Sheep:
		// Short-day breeders cycle as daylight shortens.
		w = Window{Label: "short-day breeder", PeakMonths: monthRange(time.September, time.February)}
	case Dog, Rabbit, Generic:
		return Window{}, false
	default:
		return Window{}, false
	}
	if h == South {
		w.PeakMonths = shiftMonths(w.PeakMonths, 6)
	}
	return w, true
}

// monthRange expands an inclusive month span, wrapping across the year end.
func monthRange(from, to time.Month) []time.Month {
	var out []time.Month
	m := from
	for {
		out = append(out, m)
		if m == to {
			return out
		}
		m = m%12 + 1
	}
}

func shiftMonths(months []time.Month, offset int) []time.Month {
	out := make([]time.Month, len(months))
	for i, m := range months {
		out[i] = time.Month((int(m)-1+offset)%12 + 1)
	}
	return out
}
