package evaluation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
	"github.com/spigell/resume-matcher/internal/textvec"
)

const (
	preferredBonusPerSkill = 0.05
	maxPreferredBonus      = 0.2
	openEndedSpan          = 5
	inRangeBase            = 0.7
)

type SkillsBreakdown struct {
	RequiredMatches  []string `json:"required_matches"`
	RequiredMissing  []string `json:"required_missing"`
	PreferredMatches []string `json:"preferred_matches"`
	RequiredScore    float64  `json:"required_score"`
	PreferredBonus   float64  `json:"preferred_bonus"`
	TotalRequired    int      `json:"total_required"`
	MatchedRequired  int      `json:"matched_required"`
}

type ExperienceBreakdown struct {
	CandidateExperience float64 `json:"candidate_experience"`
	RequiredRange       string  `json:"required_range"`
	WithinRange         bool    `json:"within_range"`
	Explanation         string  `json:"score_explanation"`
}

type CertificationBreakdown struct {
	NoneRequired  bool     `json:"no_certifications_required,omitempty"`
	Matched       []string `json:"matched_certifications,omitempty"`
	Missing       []string `json:"missing_certifications,omitempty"`
	TotalRequired int      `json:"total_required"`
	MatchedCount  int      `json:"matched_count"`
}

type RoleBreakdown struct {
	Required        criteria.RoleLevel `json:"required_level"`
	Apparent        criteria.RoleLevel `json:"apparent_level"`
	ExperienceBased criteria.RoleLevel `json:"experience_based_level"`
	Final           criteria.RoleLevel `json:"final_candidate_level"`
	LevelMatch      bool               `json:"level_match"`
	LevelGap        int                `json:"level_gap"`
}

// SemanticSimilarity is the TF-IDF cosine similarity of the two texts. Any
// vectorization failure yields 0.
func SemanticSimilarity(jobText, candidateText string) float64 {
	s, err := textvec.Similarity(jobText, candidateText)
	if err != nil {
		return 0
	}
	return clamp(s)
}

// SkillsAlignment checks each required skill against the candidate skills
// and body text, then adds up to 0.2 for matched preferred skills.
func SkillsAlignment(c *criteria.JobCriteria, r *candidate.Record) (float64, SkillsBreakdown) {
	text := r.SearchText()

	b := SkillsBreakdown{TotalRequired: len(c.RequiredSkills)}
	for _, s := range c.RequiredSkills {
		if mentions(text, s) {
			b.RequiredMatches = append(b.RequiredMatches, s)
		} else {
			b.RequiredMissing = append(b.RequiredMissing, s)
		}
	}
	for _, s := range c.PreferredSkills {
		if mentions(text, s) {
			b.PreferredMatches = append(b.PreferredMatches, s)
		}
	}
	b.MatchedRequired = len(b.RequiredMatches)

	b.RequiredScore = 1.0
	if b.TotalRequired > 0 {
		b.RequiredScore = float64(b.MatchedRequired) / float64(b.TotalRequired)
	}
	b.PreferredBonus = math.Min(maxPreferredBonus, float64(len(b.PreferredMatches))*preferredBonusPerSkill)

	return clamp(b.RequiredScore + b.PreferredBonus), b
}

// mentions reports whether the skill, or any of its words longer than two
// characters, appears in text.
func mentions(text, skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	if skill == "" {
		return false
	}
	if strings.Contains(text, skill) {
		return true
	}
	for _, w := range strings.Fields(skill) {
		if len(w) > 2 && strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ExperienceMapping scores years against the criteria range. Inside the range
// the score grows from 0.7 toward 1.0 at the top; under-experience loses 0.1
// per missing year from 0.5, over-experience loses 0.05 per year from 1.0
// but never drops under 0.6.
func ExperienceMapping(c *criteria.JobCriteria, years float64) (float64, ExperienceBreakdown) {
	lo := float64(c.MinExperience)
	openEnded := c.OpenEnded()
	hi := float64(c.MaxExperience)

	b := ExperienceBreakdown{
		CandidateExperience: years,
		RequiredRange:       c.ExperienceRange(),
		WithinRange:         years >= lo && (openEnded || years <= hi),
	}

	var score float64
	switch {
	case b.WithinRange && openEnded:
		score = math.Min(1, years/(lo+openEndedSpan))
		b.Explanation = fmt.Sprintf("Perfect fit: %s years within required %s range", formatYears(years), b.RequiredRange)
	case b.WithinRange:
		score = 1.0
		if span := hi - lo; span > 0 {
			score = inRangeBase + (1-inRangeBase)*(years-lo)/span
		}
		b.Explanation = fmt.Sprintf("Perfect fit: %s years within required %s range", formatYears(years), b.RequiredRange)
	case years < lo:
		gap := lo - years
		score = math.Max(0, 0.5-0.1*gap)
		b.Explanation = fmt.Sprintf("Under-experienced: %s years below minimum requirement", formatYears(gap))
	default:
		excess := years - hi
		score = math.Max(0.6, 1-0.05*excess)
		b.Explanation = fmt.Sprintf("Over-experienced: %s years above maximum (may be overqualified)", formatYears(excess))
	}

	return clamp(score), b
}

// CertificationScore is the fraction of required certification clauses found
// verbatim (case-insensitive) in the candidate text.
func CertificationScore(c *criteria.JobCriteria, r *candidate.Record) (float64, CertificationBreakdown) {
	if len(c.RequiredCertifications) == 0 {
		return 1.0, CertificationBreakdown{NoneRequired: true}
	}

	text := strings.ToLower(r.RawText) + " " + r.SkillsText() + " " +
		strings.ToLower(strings.Join(r.Attributes.Certifications, ", "))

	b := CertificationBreakdown{TotalRequired: len(c.RequiredCertifications)}
	for _, cert := range c.RequiredCertifications {
		if strings.Contains(text, strings.ToLower(cert)) {
			b.Matched = append(b.Matched, cert)
		} else {
			b.Missing = append(b.Missing, cert)
		}
	}
	b.MatchedCount = len(b.Matched)

	return float64(b.MatchedCount) / float64(b.TotalRequired), b
}

var levelIndicators = []struct {
	level criteria.RoleLevel
	words []string
}{
	{criteria.LevelJunior, []string{"junior", "entry", "associate", "trainee", "intern"}},
	{criteria.LevelMid, []string{"developer", "engineer", "analyst", "specialist"}},
	{criteria.LevelSenior, []string{"senior", "sr.", "lead", "principal", "expert"}},
	{criteria.LevelLead, []string{"manager", "director", "head", "team lead", "tech lead"}},
}

// RoleFit compares the required level with the higher of the level implied by
// the resume wording and the level implied by years of experience.
func RoleFit(c *criteria.JobCriteria, r *candidate.Record) (float64, RoleBreakdown) {
	b := RoleBreakdown{
		Required:        c.RoleLevel,
		Apparent:        apparentLevel(strings.ToLower(r.RawText)),
		ExperienceBased: levelByYears(r.Attributes.ExperienceYears),
	}
	if b.Required == 0 {
		b.Required = criteria.LevelMid
	}

	b.Final = max(b.Apparent, b.ExperienceBased)
	b.LevelGap = int(b.Final) - int(b.Required)
	if b.LevelGap < 0 {
		b.LevelGap = -b.LevelGap
	}
	b.LevelMatch = b.LevelGap == 0

	switch b.LevelGap {
	case 0:
		return 1.0, b
	case 1:
		return 0.8, b
	case 2:
		return 0.6, b
	default:
		return 0.4, b
	}
}

// apparentLevel picks the level with the most indicator hits. Ties go to the
// lower level.
func apparentLevel(text string) criteria.RoleLevel {
	best, bestCount := criteria.LevelJunior, -1
	for _, li := range levelIndicators {
		count := 0
		for _, w := range li.words {
			if strings.Contains(text, w) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = li.level, count
		}
	}
	return best
}

func levelByYears(years float64) criteria.RoleLevel {
	switch {
	case years >= 7:
		return criteria.LevelLead
	case years >= 4:
		return criteria.LevelSenior
	case years >= 2:
		return criteria.LevelMid
	default:
		return criteria.LevelJunior
	}
}

func formatYears(y float64) string {
	return strconv.FormatFloat(y, 'f', -1, 64)
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(0, math.Min(1, x))
}
