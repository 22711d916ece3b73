package model

import "strings"

// Compound is the tire rubber formulation category.
type Compound string

const (
	CompoundSoft         Compound = "SOFT"
	CompoundMedium       Compound = "MEDIUM"
	CompoundHard         Compound = "HARD"
	CompoundIntermediate Compound = "INTERMEDIATE"
	CompoundWet          Compound = "WET"
	CompoundUnknown      Compound = "UNKNOWN"
)

// ParseCompound maps provider compound names to the known compounds.
// Unrecognized or empty values map to CompoundUnknown.
func ParseCompound(arg string) Compound {
	switch Compound(strings.ToUpper(strings.TrimSpace(arg))) {
	case CompoundSoft:
		return CompoundSoft
	case CompoundMedium:
		return CompoundMedium
	case CompoundHard:
		return CompoundHard
	case CompoundIntermediate:
		return CompoundIntermediate
	case CompoundWet:
		return CompoundWet
	default:
		return CompoundUnknown
	}
}
