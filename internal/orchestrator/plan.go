package orchestrator

import (
	"encoding/json"
	"strings"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// defaultComplexity is assigned when the planner omits an estimate and to
// the single task of the fallback plan.
const defaultComplexity = 5

// ParsePlan extracts a Plan from raw planner output. It is total: no
// planner output, however malformed, produces an error. Extraction tries
// three strategies in order and falls back to DefaultPlan when all fail:
//
//  1. the whole response, when it starts with "{"
//  2. the contents of a fenced ```json code block
//  3. the first balanced top-level JSON object found by a brace scan
//
// A parsed plan with no usable tasks, or whose dependencies form a cycle,
// is treated the same as a parse failure.
func ParsePlan(response, fallbackDescription string, fallbackTier models.Tier) *models.Plan {
	for _, candidate := range planCandidates(response) {
		var plan models.Plan
		if err := json.Unmarshal([]byte(candidate), &plan); err != nil {
			continue
		}
		if normalizePlan(&plan, fallbackTier) {
			return &plan
		}
	}

	debugLog("plan: no parseable plan in planner output (%d bytes), using default", len(response))
	return DefaultPlan(fallbackDescription, fallbackTier)
}

// DefaultPlan returns the single-task fallback plan: one task named
// "main" carrying the original request at the analyzer's suggested tier.
func DefaultPlan(description string, tier models.Tier) *models.Plan {
	return &models.Plan{
		Tasks: []models.PlannedTask{{
			TaskID:              "main",
			Description:         description,
			SuggestedTier:       tier,
			DependsOn:           []string{},
			EstimatedComplexity: defaultComplexity,
		}},
	}
}

// planCandidates returns the JSON candidates the three strategies yield,
// in priority order. Candidates may be empty or invalid; the caller
// filters by unmarshaling.
func planCandidates(response string) []string {
	var candidates []string

	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "{") {
		candidates = append(candidates, trimmed)
	}

	if fenced := extractFencedJSON(response); fenced != "" {
		candidates = append(candidates, fenced)
	}

	if obj := extractJSONObject(response); obj != "" {
		candidates = append(candidates, obj)
	}

	return candidates
}

// extractFencedJSON returns the contents of the first ```json fenced
// block, or "" if none is present.
func extractFencedJSON(s string) string {
	lower := strings.ToLower(s)
	start := strings.Index(lower, "```json")
	if start == -1 {
		return ""
	}

	body := s[start+len("```json"):]
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		body = body[nl+1:]
	}

	end := strings.Index(body, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(body[:end])
}

// extractJSONObject scans for the first balanced top-level JSON object.
// The scan is escape-aware: braces inside string literals, including
// escaped quotes and unicode escapes, do not affect nesting depth.
func extractJSONObject(s string) string {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// normalizePlan sanitizes a parsed plan in place and reports whether it
// is usable. Tasks with empty IDs are dropped, missing tiers and
// complexity estimates are backfilled, and dependency references to
// unknown or self task IDs are removed. Plans with no surviving tasks or
// with cyclic dependencies are rejected.
func normalizePlan(plan *models.Plan, fallbackTier models.Tier) bool {
	kept := plan.Tasks[:0]
	for _, t := range plan.Tasks {
		if strings.TrimSpace(t.TaskID) == "" {
			continue
		}
		if !t.SuggestedTier.Valid() {
			t.SuggestedTier = fallbackTier
		}
		if t.EstimatedComplexity <= 0 {
			t.EstimatedComplexity = defaultComplexity
		}
		if t.EstimatedComplexity > models.MaxComplexity {
			t.EstimatedComplexity = models.MaxComplexity
		}
		if t.DependsOn == nil {
			t.DependsOn = []string{}
		}
		kept = append(kept, t)
	}
	plan.Tasks = kept

	if len(plan.Tasks) == 0 {
		return false
	}

	known := make(map[string]bool, len(plan.Tasks))
	for _, t := range plan.Tasks {
		known[t.TaskID] = true
	}
	for i := range plan.Tasks {
		t := &plan.Tasks[i]
		deps := t.DependsOn[:0]
		for _, dep := range t.DependsOn {
			if dep != t.TaskID && known[dep] {
				deps = append(deps, dep)
			}
		}
		t.DependsOn = deps
	}

	return !hasCycle(plan)
}

// hasCycle reports whether the plan's dependency graph contains a cycle.
// A cyclic plan would deadlock the executor, so it is rejected upfront.
func hasCycle(plan *models.Plan) bool {
	deps := make(map[string][]string, len(plan.Tasks))
	for _, t := range plan.Tasks {
		deps[t.TaskID] = t.DependsOn
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(deps))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting:
			return true
		case done:
			return false
		}
		state[id] = visiting
		for _, dep := range deps[id] {
			if visit(dep) {
				return true
			}
		}
		state[id] = done
		return false
	}

	for id := range deps {
		if visit(id) {
			return true
		}
	}
	return false
}
