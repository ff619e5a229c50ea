// Package naming maps race-specific skeleton layouts to bone names.
package naming

import "fmt"

// Race identifies a playable body type as stored in the host's customize data.
type Race uint8

// Known races.
const (
	RaceUnknown  Race = 0
	RaceHyur     Race = 1
	RaceElezen   Race = 2
	RaceLalafell Race = 3
	RaceMiqote   Race = 4
	RaceRoegadyn Race = 5
	RaceAuRa     Race = 6
	RaceHrothgar Race = 7
	RaceViera    Race = 8
)

// String returns a human-readable race name.
func (r Race) String() string {
	switch r {
	case RaceHyur:
		return "Hyur"
	case RaceElezen:
		return "Elezen"
	case RaceLalafell:
		return "Lalafell"
	case RaceMiqote:
		return "Miqote"
	case RaceRoegadyn:
		return "Roegadyn"
	case RaceAuRa:
		return "AuRa"
	case RaceHrothgar:
		return "Hrothgar"
	case RaceViera:
		return "Viera"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(r))
	}
}

// Region selects which partial skeleton a name list describes.
type Region int

// Regions with race-specific name tables. Partial skeleton 0 is the body,
// partial 1 the head.
const (
	RegionBody Region = iota
	RegionHead
)

// String returns the region name.
func (r Region) String() string {
	switch r {
	case RegionBody:
		return "body"
	case RegionHead:
		return "head"
	default:
		return fmt.Sprintf("region(%d)", int(r))
	}
}

// RegionForPartial returns the named region of a partial skeleton index, or
// false when the partial has no race table (hair, accessories).
func RegionForPartial(index int) (Region, bool) {
	switch index {
	case 0:
		return RegionBody, true
	case 1:
		return RegionHead, true
	default:
		return 0, false
	}
}
