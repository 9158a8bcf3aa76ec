package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
	"github.com/spigell/resume-matcher/internal/ranking"
)

type experienceRangeFilter struct {
	disabled bool
	reason   string
	min      int
	max      int
}

// NewExperienceRange creates a filter that removes candidates outside the
// requested experience range.
func NewExperienceRange() Filter {
	return &experienceRangeFilter{max: criteria.Unbounded}
}

func (f *experienceRangeFilter) Name() string { return "experience_range" }

func (f *experienceRangeFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *experienceRangeFilter) IsEnabled() bool { return !f.disabled }

func (f *experienceRangeFilter) Validate(cfg *Config) error {
	f.min, f.max = 0, criteria.Unbounded
	if cfg == nil {
		return nil
	}
	f.min = max(0, cfg.MinExperience)
	if !criteria.IsOpenEnded(cfg.MaxExperience) {
		f.max = cfg.MaxExperience
	}
	if f.max < f.min {
		return fmt.Errorf("max experience %d is below min experience %d", f.max, f.min)
	}
	return nil
}

func (f *experienceRangeFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	dropped := c.Keep(func(r *candidate.Record) bool {
		return ranking.WithinRange(r.Attributes.ExperienceYears, f.min, f.max)
	})

	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates outside experience range",
			zap.Int("min_experience", f.min),
			zap.Int("max_experience", f.max),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *experienceRangeFilter) Status() Status {
	details := map[string]string{"min_experience": strconv.Itoa(f.min)}
	if criteria.IsOpenEnded(f.max) {
		details["max_experience"] = "unbounded"
	} else {
		details["max_experience"] = strconv.Itoa(f.max)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
