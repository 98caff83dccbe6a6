package models

// PlannedTask is one decomposed unit of work inside a Plan.
type PlannedTask struct {
	// TaskID identifies the task within its plan. IDs are plan-local.
	TaskID string `json:"taskId"`
	// Description is what the worker assigned to this task should do.
	Description string `json:"description"`
	// SuggestedTier is the worker tier the planner recommends.
	SuggestedTier Tier `json:"suggestedTier"`
	// DependsOn lists task IDs that must have results before this task starts.
	DependsOn []string `json:"dependsOn"`
	// EstimatedComplexity is the planner's 1-10 complexity estimate.
	EstimatedComplexity int `json:"estimatedComplexity"`
}

// Plan is the dependency-annotated decomposition of a request into sub-tasks.
type Plan struct {
	// Tasks is the ordered list of decomposed tasks.
	Tasks []PlannedTask `json:"tasks"`
	// Summary is the planner's one-line description of the overall approach.
	Summary string `json:"summary,omitempty"`
	// ClarifyingQuestions lists questions the planner wants answered.
	ClarifyingQuestions []string `json:"clarifyingQuestions,omitempty"`
	// Refinements logs follow-up planner responses appended by clarification
	// round-trips. Never produced by the planner itself.
	Refinements []string `json:"refinements,omitempty"`
}

// TaskIDs returns the plan-local IDs of all tasks in plan order.
func (p *Plan) TaskIDs() []string {
	ids := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		ids[i] = t.TaskID
	}
	return ids
}
