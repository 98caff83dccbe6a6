package models

// Intent classifies what a user request is asking for.
type Intent string

const (
	// IntentConversational indicates greeting or acknowledgment phrasing.
	IntentConversational Intent = "conversational"
	// IntentLookup indicates a quick read/search/list style request.
	IntentLookup Intent = "lookup"
	// IntentImplementation indicates standard implementation work.
	IntentImplementation Intent = "implementation"
	// IntentDebug indicates bug fixing or error investigation.
	IntentDebug Intent = "debug"
	// IntentRefactor indicates restructuring of existing code.
	IntentRefactor Intent = "refactor"
	// IntentArchitecture indicates planning, design, or security work.
	IntentArchitecture Intent = "architecture"
)

// MinComplexity and MaxComplexity bound the analyzer's complexity scale.
const (
	MinComplexity = 1
	MaxComplexity = 10
)

// TaskAnalysis is the routing decision produced during triage.
// It is created once per context and never mutated.
type TaskAnalysis struct {
	// Complexity is the estimated difficulty on a 1-10 scale.
	Complexity int `json:"complexity"`
	// Intent is the classified request intent.
	Intent Intent `json:"intent"`
	// RequiredCapabilities hints at what the executing worker must handle.
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`
	// SuggestedTier is always set, even when planning is recommended, so
	// callers have a safe fallback if planning is skipped or fails.
	SuggestedTier Tier `json:"suggested_tier"`
	// NeedsPlanning indicates the request warrants decomposition by a
	// high-capability worker before delegation.
	NeedsPlanning bool `json:"needs_planning"`
	// Plan is the decomposition produced during triage, if any.
	Plan *Plan `json:"plan,omitempty"`
}
