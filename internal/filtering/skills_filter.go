package filtering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/cache"
	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/skills"
)

type skillsMatchFilter struct {
	disabled bool
	reason   string
	required []string
	minMatch float64
}

// NewSkillsMatch creates a filter that attaches a skills analysis to every
// candidate and drops those below the configured match score.
func NewSkillsMatch() Filter {
	return &skillsMatchFilter{}
}

func (f *skillsMatchFilter) Name() string { return "skills_match" }

func (f *skillsMatchFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *skillsMatchFilter) IsEnabled() bool { return !f.disabled }

func (f *skillsMatchFilter) Validate(cfg *Config) error {
	f.required, f.minMatch = nil, 0
	if cfg == nil {
		return nil
	}
	if cfg.MinSkillsMatch < 0 || cfg.MinSkillsMatch > 1 {
		return fmt.Errorf("min skills match must be within [0,1], got %.2f", cfg.MinSkillsMatch)
	}
	f.required = skills.NormalizeAll(cfg.RequiredSkills)
	f.minMatch = cfg.MinSkillsMatch
	return nil
}

func (f *skillsMatchFilter) Apply(ctx context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	if len(f.required) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	for _, r := range c.Items {
		r.SkillsAnalysis = skills.Analyze(f.required, r.Attributes.Skills, textSkills(ctx, deps, r))
	}

	if f.minMatch <= 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.Keep(func(r *candidate.Record) bool {
		return r.SkillsAnalysis.MatchScore >= f.minMatch
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding candidates below skills match threshold",
			zap.Float64("min_skills_match", f.minMatch),
			zap.Strings("required_skills", f.required),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *skillsMatchFilter) Status() Status {
	details := map[string]string{
		"min_skills_match": fmt.Sprintf("%.2f", f.minMatch),
	}
	if len(f.required) > 0 {
		details["required_skills"] = strings.Join(f.required, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// textSkills reads skills extracted from the body text through the cache.
// Cache failures only cost a recomputation.
func textSkills(ctx context.Context, deps Deps, r *candidate.Record) []string {
	if deps.Cache == nil || r.Identity == "" {
		return skills.ExtractFromText(r.RawText)
	}

	entry, err := deps.Cache.Get(ctx, r.Identity)
	if err == nil {
		return entry.TextSkills
	}
	if !errors.Is(err, cache.ErrMiss) {
		deps.Logger.Warn("reading derived fields from cache failed",
			zap.String(logger.FieldCandidateID, r.Identity),
			zap.Error(err),
		)
	}

	found := skills.ExtractFromText(r.RawText)
	if err := deps.Cache.Set(ctx, r.Identity, &cache.Entry{TextSkills: found}); err != nil {
		deps.Logger.Warn("writing derived fields to cache failed",
			zap.String(logger.FieldCandidateID, r.Identity),
			zap.Error(err),
		)
	}
	return found
}
