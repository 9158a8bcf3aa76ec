package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/cache"
	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
	"github.com/spigell/resume-matcher/internal/dedup"
)

func pool() *candidate.Candidates {
	return candidate.New(
		&candidate.Record{Identity: "a", DisplayName: "Ann", RawText: "React and JavaScript engineer", Contact: candidate.Contact{Email: "ann@x.io"}, Attributes: candidate.Attributes{ExperienceYears: 4, Skills: []string{"React"}}},
		&candidate.Record{Identity: "a2", DisplayName: "Ann L.", RawText: "different text", Contact: candidate.Contact{Email: "ANN@x.io"}, Attributes: candidate.Attributes{ExperienceYears: 4}},
		&candidate.Record{Identity: "b", DisplayName: "Bob", RawText: "Accountant with payroll experience", Attributes: candidate.Attributes{ExperienceYears: 1}},
		&candidate.Record{Identity: "c", DisplayName: "Cid", RawText: "Vue developer, some JavaScript", Attributes: candidate.Attributes{ExperienceYears: 5}},
		&candidate.Record{Identity: "d", DisplayName: "Dee", RawText: "Staff engineer, Go and Kubernetes", Attributes: candidate.Attributes{ExperienceYears: 12}},
	)
}

func TestRunDefaultPipeline(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	deps := Deps{Logger: zap.New(core)}
	cfg := &Config{
		Dedup:         dedup.DefaultConfig(),
		MinExperience: 3,
		MaxExperience: 5,
	}

	left, steps, err := Run(context.Background(), cfg, deps, Default(), pool())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, left.Identities())
	require.Len(t, steps, 4)
	assert.Equal(t, Step{Name: "dedup", Initial: 5, Dropped: 1, Left: 4}, steps[0])
	assert.Equal(t, Step{Name: "exclude_file", Initial: 4, Dropped: 0, Left: 4}, steps[1])
	assert.Equal(t, Step{Name: "experience_range", Initial: 4, Dropped: 2, Left: 2}, steps[2])
	assert.Equal(t, Step{Name: "skills_match", Initial: 2, Dropped: 0, Left: 2}, steps[3])

	assert.Equal(t, 4, observed.FilterMessage("filter step").Len())
	excluded := observed.FilterMessage("excluding candidates outside experience range").All()
	require.Len(t, excluded, 1)
	assert.Equal(t, []interface{}{"b", "d"}, excluded[0].ContextMap()["excluded_candidates"])
}

func TestRunDisabledFilter(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	steps := Default()
	DisableByName(steps, "dedup", "testing")

	left, done, err := Run(context.Background(), &Config{}, Deps{Logger: zap.New(core)}, steps, pool())
	require.NoError(t, err)

	assert.Equal(t, 5, left.Len())
	assert.Len(t, done, 3)
	assert.Equal(t, 1, observed.FilterMessage("filter disabled").Len())

	statuses := Describe(steps)
	require.Len(t, statuses, 4)
	assert.False(t, statuses[0].Enabled)
	assert.Equal(t, "testing", statuses[0].Reason)
}

func TestRunValidationError(t *testing.T) {
	_, _, err := Run(context.Background(), &Config{MinExperience: 5, MaxExperience: 3}, Deps{}, Default(), pool())
	assert.ErrorContains(t, err, "experience_range")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, &Config{}, Deps{}, Default(), pool())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	excluded := candidate.New(&candidate.Record{Identity: "c"}).ToExcluded(candidate.ExcludeActorUser, "")
	require.NoError(t, excluded.ToFile(path))

	left, _, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, pool())
	require.NoError(t, err)
	assert.Nil(t, left.FindByIdentity("c"))
	assert.Equal(t, 4, left.Len())
}

func TestExcludeFileBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, _, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, pool())
	assert.Error(t, err)
}

func TestSkillsMatchFilter(t *testing.T) {
	store := cache.NewMemory()
	cfg := &Config{RequiredSkills: []string{"React", "JavaScript"}, MinSkillsMatch: 0.9}

	left, steps, err := Run(context.Background(), cfg, Deps{Cache: store}, []Filter{NewSkillsMatch()}, pool())
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, left.Identities())
	assert.Equal(t, 4, steps[0].Dropped)
	require.NotNil(t, left.Items[0].SkillsAnalysis)
	assert.InDelta(t, 1.0, left.Items[0].SkillsAnalysis.MatchScore, 1e-9)
	assert.Equal(t, 5, store.Len())
}

func TestSkillsMatchFilterAnnotatesOnly(t *testing.T) {
	cfg := &Config{RequiredSkills: []string{"Go"}}

	left, steps, err := Run(context.Background(), cfg, Deps{}, []Filter{NewSkillsMatch()}, pool())
	require.NoError(t, err)

	assert.Equal(t, 5, left.Len())
	assert.Equal(t, 0, steps[0].Dropped)
	for _, r := range left.Items {
		assert.NotNil(t, r.SkillsAnalysis, r.Identity)
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*cache.Entry, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, *cache.Entry) error {
	return errors.New("connection refused")
}

func TestSkillsMatchFilterSurvivesCacheErrors(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	cfg := &Config{RequiredSkills: []string{"React"}}

	left, _, err := Run(context.Background(), cfg, Deps{Logger: zap.New(core), Cache: brokenStore{}}, []Filter{NewSkillsMatch()}, pool())
	require.NoError(t, err)

	assert.Equal(t, 5, left.Len())
	assert.Equal(t, 10, observed.Len())
}

func TestExperienceRangeStatus(t *testing.T) {
	f := NewExperienceRange()
	require.NoError(t, f.Validate(&Config{MinExperience: 10, MaxExperience: criteria.Unbounded}))

	status := f.(statusProvider).Status()
	assert.Equal(t, "10", status.Details["min_experience"])
	assert.Equal(t, "unbounded", status.Details["max_experience"])
}
