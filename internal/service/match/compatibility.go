package match

import (
	"github.com/jwalitptl/petmatch-api/internal/model"
)

// Incompatibility reasons surfaced to the swiping user.
const (
	ReasonMissingData      = "missing pet data"
	ReasonDifferentSpecies = "different species"
	ReasonMissingGender    = "gender not set"
	ReasonSameGender       = "same gender"
)

type Compatibility struct {
	Compatible bool   `json:"compatible"`
	Reason     string `json:"reason,omitempty"`
}

// CheckCompatibility decides whether two pets can match. It is pure and
// symmetric: swapping the arguments never changes the outcome. Checks
// run in a fixed order and the first failure wins.
func CheckCompatibility(a, b *model.Pet) Compatibility {
	if a == nil || b == nil {
		return Compatibility{Reason: ReasonMissingData}
	}
	if a.Species == "" || b.Species == "" {
		return Compatibility{Reason: ReasonMissingData}
	}
	if a.Species != b.Species {
		return Compatibility{Reason: ReasonDifferentSpecies}
	}
	if a.Gender == "" || b.Gender == "" {
		return Compatibility{Reason: ReasonMissingGender}
	}
	if a.Gender == b.Gender {
		return Compatibility{Reason: ReasonSameGender}
	}
	return Compatibility{Compatible: true}
}
