// Package ranking orders retrieved candidates for the shortlist.
package ranking

import (
	"math"
	"sort"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
	"github.com/spigell/resume-matcher/internal/skills"
)

const (
	matchWeight      = 0.6
	experienceWeight = 0.3
	maxTechBoost     = 0.1

	// openEndedSpan is added to the minimum to get the experience at which
	// an open-ended range scores 1.0.
	openEndedSpan = 10
)

// techBoosts are high-signal canonical skills and their bonus.
var techBoosts = map[string]float64{
	"react":      0.1,
	"angular":    0.05,
	"vue":        0.05,
	"typescript": 0.05,
	"python":     0.05,
	"java":       0.05,
	"go":         0.05,
	"node":       0.05,
	"kubernetes": 0.05,
	"aws":        0.05,
}

// MatchScore converts a retrieval distance into a relevance score in [0,1].
// Distances above 1 come from unnormalized metrics and are mapped as 2-d.
func MatchScore(distance float64) float64 {
	if math.IsNaN(distance) {
		return 0
	}
	if distance <= 1 {
		return clamp(1 - distance)
	}
	return clamp(2 - distance)
}

// ExperienceScore rates years against the range. Open-ended ranges reward
// more experience up to min+10 years, bounded ranges score the position
// inside the range.
func ExperienceScore(years float64, minExperience, maxExperience int) float64 {
	minExperience = max(0, minExperience)
	if criteria.IsOpenEnded(maxExperience) {
		return clamp(years / float64(minExperience+openEndedSpan))
	}

	span := float64(maxExperience - minExperience)
	if span <= 0 {
		if years >= float64(minExperience) {
			return 1
		}
		return 0
	}
	return clamp((years - float64(minExperience)) / span)
}

// TechBoost sums bonuses for high-signal skills found in the skills field or
// body text, capped at 0.1.
func TechBoost(r *candidate.Record) float64 {
	found := skills.ExtractFromText(r.SearchText())

	var boost float64
	for _, s := range found {
		boost += techBoosts[s]
	}
	return math.Min(maxTechBoost, boost)
}

// CombinedScore is 0.6*match + 0.3*experience + min(0.1, techBoost).
func CombinedScore(r *candidate.Record, minExperience, maxExperience int) float64 {
	score := matchWeight*MatchScore(r.RetrievalDistance) +
		experienceWeight*ExperienceScore(r.Attributes.ExperienceYears, minExperience, maxExperience) +
		TechBoost(r)
	return clamp(score)
}

// WithinRange is the hard shortlist filter on experience.
func WithinRange(years float64, minExperience, maxExperience int) bool {
	if years < float64(minExperience) {
		return false
	}
	return criteria.IsOpenEnded(maxExperience) || years <= float64(maxExperience)
}

// Rank scores copies of the records, sorts them by combined score
// descending (stable) and keeps at most topN. Input records are not modified.
func Rank(records []*candidate.Record, minExperience, maxExperience, topN int) []*candidate.Record {
	if topN <= 0 || len(records) == 0 {
		return nil
	}

	ranked := make([]*candidate.Record, 0, len(records))
	for _, r := range records {
		c := r.Clone()
		c.CombinedScore = CombinedScore(r, minExperience, maxExperience)
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CombinedScore > ranked[j].CombinedScore
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
