package orchestrator

import (
	"regexp"
	"strings"

	"github.com/jasonkneen/claudelet/pkg/models"
)

// planningThreshold is the complexity score at or above which triage
// recommends decomposition by a high-capability planner.
const planningThreshold = 8

// TaskAnalyzer scores incoming requests and produces the routing decision
// used by triage: a 1-10 complexity estimate, an intent classification,
// a suggested worker tier, and whether upfront planning is warranted.
//
// Scoring is purely lexical. No model call happens during analysis, which
// keeps triage cheap enough to run on every request.
type TaskAnalyzer struct {
	greetingPatterns []*regexp.Regexp
	lookupPatterns   []*regexp.Regexp
	debugPatterns    []*regexp.Regexp
	refactorPatterns []*regexp.Regexp
	planningPatterns []*regexp.Regexp
	securityPatterns []*regexp.Regexp
}

// NewTaskAnalyzer creates an analyzer with the default pattern sets.
func NewTaskAnalyzer() *TaskAnalyzer {
	return &TaskAnalyzer{
		greetingPatterns: compilePatterns([]string{
			`^\s*(hi|hello|hey|yo|howdy)\b`,
			`^\s*(good\s+(morning|afternoon|evening))\b`,
			`^\s*(thanks|thank\s+you|thx|ty)\b`,
			`^\s*(ok|okay|sure|got\s+it|sounds\s+good|great|nice|cool)\b[\s!.]*$`,
			`^\s*(yes|no|yep|nope)\b[\s!.]*$`,
		}),
		lookupPatterns: compilePatterns([]string{
			`\b(search|find|grep|locate)\b`,
			`\b(read|show|print|display|cat)\b`,
			`\b(list|ls|enumerate)\b`,
			`\b(fetch|get|look\s+up|lookup)\b`,
			`\b(what\s+is|where\s+is|which\s+file)\b`,
		}),
		debugPatterns: compilePatterns([]string{
			`\b(fix|fixing|debug|debugging)\b`,
			`\b(bug|bugs|crash|crashes|panic)\b`,
			`\b(broken|not\s+working|doesn't\s+work|fails|failing)\b`,
			`\b(error|errors|exception|stack\s*trace)\b`,
			`\b(regression|flaky)\b`,
		}),
		refactorPatterns: compilePatterns([]string{
			`\b(refactor|refactoring|restructure|restructuring)\b`,
			`\b(reorganize|reorganise|rewrite|rewriting)\b`,
			`\b(clean\s*up|cleanup|simplify|simplifying)\b`,
			`\b(extract|extracting)\s+(to|into)\b`,
			`\b(rename|renaming)\s+(across|throughout|everywhere)\b`,
		}),
		planningPatterns: compilePatterns([]string{
			`\b(architecture|architect|architectural)\b`,
			`\b(design|redesign)\s+(the|a|an|our)\b`,
			`\b(plan|planning|roadmap)\b`,
			`\b(migrate|migration|port|porting)\b`,
			`\b(end[\s-]*to[\s-]*end|across\s+the\s+(whole\s+)?codebase)\b`,
			`\b(system|platform|infrastructure)\s+(overhaul|rework)\b`,
		}),
		securityPatterns: compilePatterns([]string{
			`\b(security|vulnerability|vulnerabilities)\b`,
			`\b(audit|auditing|harden|hardening)\b`,
			`\b(auth|authentication|authorization)\s+(review|audit)\b`,
			`\b(threat\s+model|penetration)\b`,
		}),
	}
}

// compilePatterns compiles a slice of pattern strings into regexps.
func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if r, err := regexp.Compile("(?i)" + p); err == nil {
			compiled = append(compiled, r)
		}
	}
	return compiled
}

// Analyze scores a request and returns the routing decision.
// The suggested tier is always set, even when NeedsPlanning is true, so
// callers have a safe fallback if planning is skipped or fails.
func (a *TaskAnalyzer) Analyze(content string, taskCtx *models.TaskContext) models.TaskAnalysis {
	lower := strings.ToLower(content)

	greeting := matchCount(lower, a.greetingPatterns) > 0
	lookups := matchCount(lower, a.lookupPatterns)
	debugs := matchCount(lower, a.debugPatterns)
	refactors := matchCount(lower, a.refactorPatterns)
	planning := matchCount(lower, a.planningPatterns)
	security := matchCount(lower, a.securityPatterns)

	// Conversational requests short-circuit everything else. A "thanks,
	// now fix the bug" message is not a greeting, so only treat short
	// messages with no work verbs as conversational.
	if greeting && debugs == 0 && refactors == 0 && planning == 0 && len(strings.Fields(content)) <= 6 {
		return models.TaskAnalysis{
			Complexity:    models.MinComplexity,
			Intent:        models.IntentConversational,
			SuggestedTier: models.TierScout,
		}
	}

	complexity := models.MinComplexity
	intent := models.IntentImplementation
	tier := models.TierBuilder
	var capabilities []string

	switch {
	case planning > 0 || security > 0:
		intent = models.IntentArchitecture
		tier = models.TierArchitect
		complexity = 7 + planning + security
		if security > 0 {
			capabilities = append(capabilities, "security-review")
		}
		if planning > 0 {
			capabilities = append(capabilities, "system-design")
		}
	case refactors > 0:
		intent = models.IntentRefactor
		tier = models.TierBuilder
		complexity = 4 + refactors
		capabilities = append(capabilities, "code-navigation")
	case debugs > 0:
		intent = models.IntentDebug
		tier = models.TierBuilder
		complexity = 3 + debugs
		capabilities = append(capabilities, "error-analysis")
	case lookups > 0:
		// Quick lookup verbs with no other signal stay on the cheap tier.
		intent = models.IntentLookup
		tier = models.TierScout
		complexity = 2
		capabilities = append(capabilities, "code-search")
	default:
		complexity = 3
	}

	complexity += contextComplexity(content, taskCtx)

	if complexity > models.MaxComplexity {
		complexity = models.MaxComplexity
	}
	if complexity < models.MinComplexity {
		complexity = models.MinComplexity
	}

	// Lookups with heavy attached context are no longer cheap.
	if intent == models.IntentLookup && complexity >= 4 {
		tier = models.TierBuilder
	}

	return models.TaskAnalysis{
		Complexity:           complexity,
		Intent:               intent,
		RequiredCapabilities: capabilities,
		SuggestedTier:        tier,
		NeedsPlanning:        complexity >= planningThreshold,
	}
}

// contextComplexity scores the attached context and the shape of the
// request text: file attachments, constraint lists, and multi-step
// phrasing each add a little.
func contextComplexity(content string, taskCtx *models.TaskContext) int {
	add := 0

	if taskCtx != nil {
		if len(taskCtx.Files) > 0 {
			add++
		}
		if len(taskCtx.Files) > 3 {
			add++
		}
		if len(taskCtx.Constraints) > 0 {
			add++
		}
		if len(taskCtx.Constraints) > 2 {
			add++
		}
	}

	// Enumerated steps suggest multi-part work.
	steps := 0
	for _, sep := range []string{"\n-", "\n*", "\n1.", "\n2.", "\n3.", " then ", " and then "} {
		steps += strings.Count(strings.ToLower(content), sep)
	}
	if steps >= 2 {
		add++
	}
	if steps >= 4 {
		add++
	}

	return add
}

// matchCount counts how many patterns match the input.
func matchCount(input string, patterns []*regexp.Regexp) int {
	count := 0
	for _, p := range patterns {
		if p.MatchString(input) {
			count++
		}
	}
	return count
}
