package evaluation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
)

const frontendJob = `Frontend Developer

Required Skills: React, JavaScript

Looking for 3-5 years of experience building web applications with React.`

func frontendCriteria() *criteria.JobCriteria {
	return &criteria.JobCriteria{
		RequiredSkills: []string{"React", "JavaScript"},
		MinExperience:  3,
		MaxExperience:  5,
		RoleLevel:      criteria.LevelMid,
	}
}

func TestSelectsMatchingCandidate(t *testing.T) {
	t.Parallel()

	r := &candidate.Record{
		DisplayName: "Jane",
		RawText:     "Frontend developer building web applications with React and JavaScript.",
		Attributes:  candidate.Attributes{ExperienceYears: 4, Skills: []string{"React", "JavaScript", "HTML"}},
	}

	s := New().Evaluate(r, frontendJob, frontendCriteria())

	assert.InDelta(t, 1.0, s.SkillsAlignment, 1e-9)
	assert.GreaterOrEqual(t, s.ExperienceMapping, 0.7)
	assert.True(t, s.IsSelected())
	assert.Equal(t, StatusSelected, s.Justification.Decision)
	assert.Contains(t, s.Justification.SelectionReasons, "Excellent skills match (2/2 required skills)")
	assert.Equal(t, recommendSelected, s.Justification.Recommendation)
	assert.Empty(t, s.Justification.RejectionReasons)
}

func TestRejectsMissingSkills(t *testing.T) {
	t.Parallel()

	r := &candidate.Record{
		DisplayName: "Joe",
		RawText:     "Web designer.",
		Attributes:  candidate.Attributes{ExperienceYears: 1, Skills: []string{"HTML", "CSS"}},
	}

	s := New().Evaluate(r, frontendJob, frontendCriteria())

	assert.InDelta(t, 0.0, s.SkillsAlignment, 1e-9)
	assert.LessOrEqual(t, s.ExperienceMapping, 0.3)
	assert.Less(t, s.OverallScore, 0.5)
	assert.False(t, s.IsSelected())
	assert.Equal(t, StatusRejected, s.Status)
	assert.Contains(t, s.Justification.RejectionReasons, "Missing critical skills: React, JavaScript")
	assert.Contains(t, s.Justification.RejectionReasons, "Experience mismatch: Under-experienced: 2 years below minimum requirement")
	assert.Contains(t, s.Justification.Recommendation, "below 60.0% threshold")
}

func TestSkillsAlignment(t *testing.T) {
	t.Parallel()

	c := &criteria.JobCriteria{
		RequiredSkills:  []string{"Go", "Kubernetes", "Apache Kafka", "gRPC"},
		PreferredSkills: []string{"Terraform", "Helm", "Rust", "AWS", "Redis"},
	}
	r := &candidate.Record{
		RawText:    "Backend engineer: Kafka consumers, Kubernetes operators, Terraform, Helm charts, AWS, Redis.",
		Attributes: candidate.Attributes{Skills: []string{"Go"}},
	}

	score, b := SkillsAlignment(c, r)

	assert.Equal(t, []string{"Go", "Kubernetes", "Apache Kafka"}, b.RequiredMatches)
	assert.Equal(t, []string{"gRPC"}, b.RequiredMissing)
	assert.InDelta(t, 0.75, b.RequiredScore, 1e-9)
	assert.InDelta(t, 0.2, b.PreferredBonus, 1e-9)
	assert.InDelta(t, 0.95, score, 1e-9)

	noneRequired, _ := SkillsAlignment(&criteria.JobCriteria{}, r)
	assert.InDelta(t, 1.0, noneRequired, 1e-9)
}

func TestExperienceMapping(t *testing.T) {
	t.Parallel()

	bounded := &criteria.JobCriteria{MinExperience: 3, MaxExperience: 5}
	cases := []struct {
		years float64
		want  float64
	}{
		{3, 0.7},
		{4, 0.85},
		{5, 1.0},
		{1, 0.3},
		{0, 0.2},
		{-20, 0.0},
		{7, 0.9},
		{50, 0.6},
	}
	for _, tc := range cases {
		got, _ := ExperienceMapping(bounded, tc.years)
		assert.InDelta(t, tc.want, got, 1e-9, "years %v", tc.years)
	}

	point := &criteria.JobCriteria{MinExperience: 4, MaxExperience: 4}
	got, _ := ExperienceMapping(point, 4)
	assert.InDelta(t, 1.0, got, 1e-9)

	open := &criteria.JobCriteria{MinExperience: 10, MaxExperience: criteria.Unbounded}
	got, b := ExperienceMapping(open, 25)
	assert.InDelta(t, 1.0, got, 1e-9)
	assert.True(t, b.WithinRange)
	assert.Equal(t, "10+", b.RequiredRange)

	got, _ = ExperienceMapping(open, 12)
	assert.InDelta(t, 0.8, got, 1e-9)
}

func TestCertificationScore(t *testing.T) {
	t.Parallel()

	r := &candidate.Record{
		RawText:    "Holds AWS Certified Developer badge.",
		Attributes: candidate.Attributes{Certifications: []string{"CKA"}},
	}

	score, b := CertificationScore(&criteria.JobCriteria{}, r)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.True(t, b.NoneRequired)

	score, b = CertificationScore(&criteria.JobCriteria{RequiredCertifications: []string{"Certified Developer", "CKA", "PMP"}}, r)
	assert.InDelta(t, 2.0/3.0, score, 1e-9)
	assert.Equal(t, []string{"PMP"}, b.Missing)
}

func TestRoleFit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		required criteria.RoleLevel
		text     string
		years    float64
		want     float64
		final    criteria.RoleLevel
	}{
		{"exact by years", criteria.LevelSenior, "", 5, 1.0, criteria.LevelSenior},
		{"words outrank years", criteria.LevelLead, "engineering manager and director, head of platform", 1, 1.0, criteria.LevelLead},
		{"one level over", criteria.LevelMid, "", 4, 0.8, criteria.LevelSenior},
		{"two levels over", criteria.LevelJunior, "", 5, 0.6, criteria.LevelSenior},
		{"three levels over", criteria.LevelJunior, "", 10, 0.4, criteria.LevelLead},
		{"default required level", 0, "software developer", 2, 1.0, criteria.LevelMid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := &candidate.Record{RawText: tc.text, Attributes: candidate.Attributes{ExperienceYears: tc.years}}
			got, b := RoleFit(&criteria.JobCriteria{RoleLevel: tc.required}, r)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.Equal(t, tc.final, b.Final)
		})
	}
}

func TestSemanticSimilarityFailsSoft(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, SemanticSimilarity("", ""))
	assert.Equal(t, 0.0, SemanticSimilarity("the and", "of a"))
}

func TestScoresStayInBounds(t *testing.T) {
	t.Parallel()

	e := New()
	jobs := []string{"", frontendJob, "Senior manager, 10+ years of experience. PMP certification required."}
	for _, job := range jobs {
		c := criteria.Extract(job)
		for _, years := range []float64{-5, 0, 3, 4, 40, 1000} {
			r := &candidate.Record{RawText: "lead engineer with react", Attributes: candidate.Attributes{ExperienceYears: years}}
			s := e.Evaluate(r, job, c)
			for name, v := range s.Justification.DetailedScores {
				assert.GreaterOrEqual(t, v, 0.0, name)
				assert.LessOrEqual(t, v, 1.0, name)
			}
			assert.GreaterOrEqual(t, s.OverallScore, 0.0)
			assert.LessOrEqual(t, s.OverallScore, 1.0)
			assert.True(t, s.Status.Terminal())
		}
	}
}

func TestHigherSkillsNeverLowersOverall(t *testing.T) {
	t.Parallel()

	e := New()
	c := frontendCriteria()
	base := candidate.Attributes{ExperienceYears: 4}

	weaker := &candidate.Record{RawText: "web work", Attributes: base}
	stronger := &candidate.Record{RawText: "web work", Attributes: base}
	stronger.Attributes.Skills = []string{"React"}

	ws := e.Evaluate(weaker, frontendJob, c)
	ss := e.Evaluate(stronger, frontendJob, c)

	require.Greater(t, ss.SkillsAlignment, ws.SkillsAlignment)
	assert.GreaterOrEqual(t, ss.OverallScore, ws.OverallScore)
}

func TestEvaluateDeterministic(t *testing.T) {
	t.Parallel()

	e := New()
	c := criteria.Extract(frontendJob)
	r := &candidate.Record{RawText: "React developer, JavaScript, 4 years", Attributes: candidate.Attributes{ExperienceYears: 4}}

	first, err := json.Marshal(e.Evaluate(r, frontendJob, c))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(e.Evaluate(r, frontendJob, c))
		require.NoError(t, err)
		assert.JSONEq(t, string(first), string(again))
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, New().Validate())
	assert.Error(t, (&Evaluator{Threshold: 1.5, Weights: DefaultWeights()}).Validate())
	assert.Error(t, (&Evaluator{Threshold: 0.6, Weights: Weights{Skills: -1, Semantic: 2}}).Validate())
	assert.Error(t, (&Evaluator{Threshold: 0.6}).Validate())
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusPending, StatusSelected, StatusRejected} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var back Status
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}
	assert.False(t, StatusPending.Terminal())
	assert.Error(t, new(Status).UnmarshalText([]byte("SELECTED ⭐")))
	assert.Equal(t, "status(9)", fmt.Sprint(Status(9)))
}
