// Package skills normalizes skill names and scores how well a candidate's
// skills cover a list of required ones.
package skills

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/resume-matcher/internal/similarity"
)

const (
	partialCredit   = 0.5
	bonusPerSkill   = 0.05
	maxBonus        = 0.2
	maxBonusListed  = 5
	similarSkill    = 0.6
	similarCategory = 0.3
)

var (
	fillerWords = regexp.MustCompile(`\b(programming|language|framework|library|tool)\b`)
	spaces      = regexp.MustCompile(`\s+`)

	byVariant = map[string]string{}
	patterns  []*regexp.Regexp
)

func init() {
	for _, s := range synonyms {
		alternatives := make([]string, 0, len(s.variants))
		for _, v := range s.variants {
			byVariant[v] = s.canonical
			alternatives = append(alternatives, regexp.QuoteMeta(v))
		}
		// \b does not work next to "+" or "#", so boundaries are spelled out.
		patterns = append(patterns, regexp.MustCompile(`(?:^|[^a-z0-9])(?:`+strings.Join(alternatives, "|")+`)(?:[^a-z0-9]|$)`))
	}
}

// Normalize maps a skill to its canonical lowercase form.
func Normalize(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))
	s = fillerWords.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))

	if canonical, ok := byVariant[s]; ok {
		return canonical
	}
	return s
}

// NormalizeAll normalizes and dedups a list, keeping first-seen order.
func NormalizeAll(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := Normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ExtractFromText returns the sorted canonical skills mentioned in text.
func ExtractFromText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var found []string
	for i, re := range patterns {
		if re.MatchString(lower) {
			found = append(found, synonyms[i].canonical)
		}
	}
	sort.Strings(found)
	return found
}

// PartialMatch records a required skill credited through a similar one.
type PartialMatch struct {
	Required string `json:"required"`
	Similar  string `json:"similar"`
}

// Analysis is the outcome of matching required skills against a candidate.
type Analysis struct {
	MatchScore     float64        `json:"match_score"`
	Matched        []string       `json:"matched_skills"`
	Partial        []PartialMatch `json:"partial_matches,omitempty"`
	Missing        []string       `json:"missing_skills"`
	Bonus          []string       `json:"bonus_skills,omitempty"`
	TotalRequired  int            `json:"total_required"`
	ExactMatches   int            `json:"exact_matches"`
	PartialMatches int            `json:"partial_match_count"`
}

// Analyze scores candidate skills against required ones. Exact canonical
// matches earn full credit, similar skills half. Extra skills from the same
// category as a required one add a bonus capped at 0.2.
func Analyze(required, candidateSkills, textSkills []string) *Analysis {
	req := NormalizeAll(required)
	if len(req) == 0 {
		return &Analysis{MatchScore: 1.0}
	}

	has := make(map[string]struct{}, len(candidateSkills)+len(textSkills))
	for _, s := range NormalizeAll(candidateSkills) {
		has[s] = struct{}{}
	}
	for _, s := range textSkills {
		has[Normalize(s)] = struct{}{}
	}
	owned := make([]string, 0, len(has))
	for s := range has {
		owned = append(owned, s)
	}
	sort.Strings(owned)

	a := &Analysis{TotalRequired: len(req)}
	wanted := make(map[string]struct{}, len(req))
	for _, r := range req {
		wanted[r] = struct{}{}
		if _, ok := has[r]; ok {
			a.Matched = append(a.Matched, r)
			continue
		}
		if similar := closest(r, owned); similar != "" {
			a.Partial = append(a.Partial, PartialMatch{Required: r, Similar: similar})
			continue
		}
		a.Missing = append(a.Missing, r)
	}

	var bonus []string
	for _, s := range owned {
		if _, ok := wanted[s]; ok {
			continue
		}
		for _, r := range req {
			if sameCategory(s, r) {
				bonus = append(bonus, s)
				break
			}
		}
	}

	a.ExactMatches = len(a.Matched)
	a.PartialMatches = len(a.Partial)

	score := (float64(a.ExactMatches) + float64(a.PartialMatches)*partialCredit) / float64(len(req))
	score += min(maxBonus, float64(len(bonus))*bonusPerSkill)
	a.MatchScore = min(1.0, score)

	if len(bonus) > maxBonusListed {
		bonus = bonus[:maxBonusListed]
	}
	a.Bonus = bonus

	return a
}

// closest returns the most similar owned skill, or "" when nothing is close
// enough. Skills from the same category need less textual similarity.
func closest(required string, owned []string) string {
	best := ""
	bestScore := 0.0
	for _, s := range owned {
		ratio := similarity.Ratio(required, s)
		qualifies := ratio > similarSkill || (ratio > similarCategory && sameCategory(required, s))
		if qualifies && ratio > bestScore {
			best = s
			bestScore = ratio
		}
	}
	return best
}

func sameCategory(a, b string) bool {
	for _, members := range categories {
		var hasA, hasB bool
		for _, m := range members {
			if m == a {
				hasA = true
			}
			if m == b {
				hasB = true
			}
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}
