package rubric

import (
	"sort"
	"strings"
)

// Derivation is an edit prompt with the ordered list of corrective fixes
// it was assembled from.
type Derivation struct {
	Prompt string
	Fixes  []string
}

// Derive produces an edit prompt from evaluation output. The mapping is
// deterministic: identical inputs always yield an identical Derivation.
//
// A non-empty override is used verbatim and suppresses all derivation.
// Otherwise every criterion scoring below its threshold contributes its
// directive, ordered by ascending score with ties broken by rubric order,
// followed by directives matched from the notes vocabulary in rule order.
// Duplicate directives are kept once, at their first position. When nothing
// triggers, the generic touch-up prompt is returned with no fixes.
func Derive(rubric *Config, override string, scores map[string]int, notes string) Derivation {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return Derivation{Prompt: trimmed, Fixes: []string{}}
	}

	type deficiency struct {
		score     int
		directive string
	}

	var deficiencies []deficiency
	for _, criterion := range rubric.Criteria {
		score, ok := scores[criterion.Name]
		if ok && score < criterion.Threshold {
			deficiencies = append(deficiencies, deficiency{score, criterion.Directive})
		}
	}

	sort.SliceStable(deficiencies, func(i, j int) bool {
		return deficiencies[i].score < deficiencies[j].score
	})

	fixes := []string{}
	seen := make(map[string]bool)

	for _, d := range deficiencies {
		if !seen[d.directive] {
			seen[d.directive] = true
			fixes = append(fixes, d.directive)
		}
	}

	lowered := strings.ToLower(notes)
	for _, rule := range rubric.Vocabulary {
		if strings.Contains(lowered, strings.ToLower(rule.Keyword)) && !seen[rule.Directive] {
			seen[rule.Directive] = true
			fixes = append(fixes, rule.Directive)
		}
	}

	if len(fixes) == 0 {
		return Derivation{Prompt: rubric.Generic, Fixes: fixes}
	}

	return Derivation{
		Prompt: rubric.Preamble + strings.Join(fixes, "; ") + rubric.Suffix,
		Fixes:  fixes,
	}
}
