package models

// Tier represents the capability class of a worker.
type Tier string

const (
	// TierScout is the cheap, fast tier for lookups and trivial requests.
	TierScout Tier = "scout"
	// TierBuilder is the general-purpose tier for standard implementation work.
	TierBuilder Tier = "builder"
	// TierArchitect is the high-capability tier for planning and complex design.
	TierArchitect Tier = "architect"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierScout, TierBuilder, TierArchitect:
		return true
	default:
		return false
	}
}
