// Package evaluation rates shortlisted candidates against structured job
// criteria and decides who is selected.
package evaluation

import (
	"errors"
	"fmt"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
)

const DefaultThreshold = 0.60

// Weights of the five axes in the overall score.
type Weights struct {
	Semantic      float64 `mapstructure:"semantic" json:"semantic" validate:"gte=0"`
	Skills        float64 `mapstructure:"skills" json:"skills" validate:"gte=0"`
	Experience    float64 `mapstructure:"experience" json:"experience" validate:"gte=0"`
	Certification float64 `mapstructure:"certification" json:"certification" validate:"gte=0"`
	RoleFit       float64 `mapstructure:"role-fit" json:"role_fit" validate:"gte=0"`
}

func DefaultWeights() Weights {
	return Weights{
		Semantic:      0.20,
		Skills:        0.35,
		Experience:    0.25,
		Certification: 0.10,
		RoleFit:       0.10,
	}
}

func (w Weights) Sum() float64 {
	return w.Semantic + w.Skills + w.Experience + w.Certification + w.RoleFit
}

// ScoreBreakdown is the immutable result of evaluating one candidate.
type ScoreBreakdown struct {
	OverallScore       float64 `json:"overall_score"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
	SkillsAlignment    float64 `json:"skills_alignment"`
	ExperienceMapping  float64 `json:"experience_mapping"`
	CertificationScore float64 `json:"certification_score"`
	RoleFitScore       float64 `json:"role_fit_score"`
	Status             Status  `json:"status"`

	Skills         SkillsBreakdown        `json:"skills_breakdown"`
	Experience     ExperienceBreakdown    `json:"experience_breakdown"`
	Certifications CertificationBreakdown `json:"cert_breakdown"`
	Role           RoleBreakdown          `json:"role_breakdown"`
	Weights        Weights                `json:"weights_used"`

	Justification Justification `json:"justification"`
}

func (s *ScoreBreakdown) IsSelected() bool {
	return s.Status == StatusSelected
}

type Evaluator struct {
	Threshold float64
	Weights   Weights
}

func New() *Evaluator {
	return &Evaluator{Threshold: DefaultThreshold, Weights: DefaultWeights()}
}

func (e *Evaluator) Validate() error {
	if e.Threshold < 0 || e.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0,1], got %.2f", e.Threshold)
	}
	w := e.Weights
	if w.Semantic < 0 || w.Skills < 0 || w.Experience < 0 || w.Certification < 0 || w.RoleFit < 0 {
		return errors.New("weights must not be negative")
	}
	if w.Sum() <= 0 {
		return errors.New("at least one weight must be positive")
	}
	return nil
}

// Evaluate scores one candidate. It never fails: a failing axis degrades to 0.
func (e *Evaluator) Evaluate(r *candidate.Record, jobText string, c *criteria.JobCriteria) *ScoreBreakdown {
	s := &ScoreBreakdown{Weights: e.Weights, Status: StatusPending}

	s.SemanticSimilarity = SemanticSimilarity(jobText, r.RawText)
	s.SkillsAlignment, s.Skills = SkillsAlignment(c, r)
	s.ExperienceMapping, s.Experience = ExperienceMapping(c, r.Attributes.ExperienceYears)
	s.CertificationScore, s.Certifications = CertificationScore(c, r)
	s.RoleFitScore, s.Role = RoleFit(c, r)

	s.OverallScore = e.overall(s)

	s.Status = StatusRejected
	if s.OverallScore >= e.Threshold {
		s.Status = StatusSelected
	}

	s.Justification = e.justify(r, s)
	return s
}

// overall is the weighted sum normalized by the weight total, so custom
// weights that do not add up to one still produce a score in [0,1].
func (e *Evaluator) overall(s *ScoreBreakdown) float64 {
	w := e.Weights
	sum := w.Sum()
	if sum <= 0 {
		return 0
	}

	total := w.Semantic*s.SemanticSimilarity +
		w.Skills*s.SkillsAlignment +
		w.Experience*s.ExperienceMapping +
		w.Certification*s.CertificationScore +
		w.RoleFit*s.RoleFitScore
	return clamp(total / sum)
}
