package evaluation

import (
	"fmt"
	"strings"

	"github.com/spigell/resume-matcher/internal/candidate"
)

const (
	strongSkills        = 0.8
	strongExperience    = 0.8
	strongSemantic      = 0.7
	strongCertification = 0.8

	weakSkills        = 0.6
	weakExperience    = 0.5
	weakCertification = 0.5
	weakRoleFit       = 0.6

	maxMissingListed = 3

	recommendSelected = "HIGHLY RECOMMENDED - Meets all key criteria with high confidence"
)

const (
	AxisSemantic      = "semantic_similarity"
	AxisSkills        = "skills_alignment"
	AxisExperience    = "experience_mapping"
	AxisCertification = "certification_score"
	AxisRoleFit       = "role_fit_score"
)

// Justification explains a decision. Every reason is derived from one axis
// score and its breakdown.
type Justification struct {
	CandidateName    string             `json:"candidate_name"`
	Decision         Status             `json:"decision"`
	OverallScore     float64            `json:"overall_score"`
	Threshold        float64            `json:"threshold"`
	DetailedScores   map[string]float64 `json:"detailed_scores"`
	SelectionReasons []string           `json:"selection_reasons,omitempty"`
	RejectionReasons []string           `json:"rejection_reasons,omitempty"`
	Recommendation   string             `json:"recommendation"`
}

func (e *Evaluator) justify(r *candidate.Record, s *ScoreBreakdown) Justification {
	j := Justification{
		CandidateName: r.Name(),
		Decision:      s.Status,
		OverallScore:  s.OverallScore,
		Threshold:     e.Threshold,
		DetailedScores: map[string]float64{
			AxisSemantic:      s.SemanticSimilarity,
			AxisSkills:        s.SkillsAlignment,
			AxisExperience:    s.ExperienceMapping,
			AxisCertification: s.CertificationScore,
			AxisRoleFit:       s.RoleFitScore,
		},
	}

	if s.IsSelected() {
		j.SelectionReasons = strengths(s)
		j.Recommendation = recommendSelected
		return j
	}

	j.RejectionReasons = gaps(s)
	j.Recommendation = fmt.Sprintf("NOT RECOMMENDED - Score %s below %s threshold", percent(s.OverallScore), percent(e.Threshold))
	return j
}

func strengths(s *ScoreBreakdown) []string {
	var out []string
	if s.SkillsAlignment >= strongSkills {
		out = append(out, fmt.Sprintf("Excellent skills match (%d/%d required skills)", s.Skills.MatchedRequired, s.Skills.TotalRequired))
	}
	if s.ExperienceMapping >= strongExperience {
		out = append(out, "Perfect experience fit: "+s.Experience.Explanation)
	}
	if s.SemanticSimilarity >= strongSemantic {
		out = append(out, "Strong semantic alignment with job requirements")
	}
	if s.CertificationScore >= strongCertification && len(s.Certifications.Matched) > 0 {
		out = append(out, "Has required certifications: "+strings.Join(s.Certifications.Matched, ", "))
	}
	return out
}

func gaps(s *ScoreBreakdown) []string {
	var out []string
	if s.SkillsAlignment < weakSkills && len(s.Skills.RequiredMissing) > 0 {
		missing := s.Skills.RequiredMissing
		if len(missing) > maxMissingListed {
			missing = missing[:maxMissingListed]
		}
		out = append(out, "Missing critical skills: "+strings.Join(missing, ", "))
	}
	if s.ExperienceMapping < weakExperience {
		out = append(out, "Experience mismatch: "+s.Experience.Explanation)
	}
	if s.CertificationScore < weakCertification && len(s.Certifications.Missing) > 0 {
		out = append(out, "Missing certifications: "+strings.Join(s.Certifications.Missing, ", "))
	}
	if s.RoleFitScore < weakRoleFit {
		out = append(out, fmt.Sprintf("Role level mismatch: candidate appears %s level, role requires %s", s.Role.Final, s.Role.Required))
	}
	return out
}

func percent(x float64) string {
	return fmt.Sprintf("%.1f%%", x*100)
}
