package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/dedup"
	"github.com/spigell/resume-matcher/internal/logger"
)

type dedupFilter struct {
	disabled bool
	reason   string
	config   dedup.Config
}

// NewDedup creates a filter that collapses repeated candidates.
func NewDedup() Filter {
	return &dedupFilter{config: dedup.DefaultConfig()}
}

func (f *dedupFilter) Name() string { return "dedup" }

func (f *dedupFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *dedupFilter) IsEnabled() bool { return !f.disabled }

func (f *dedupFilter) Validate(cfg *Config) error {
	f.config = dedup.DefaultConfig()
	if cfg != nil && cfg.Dedup.ContentPrefix > 0 {
		f.config = cfg.Dedup
	}
	return nil
}

func (f *dedupFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	kept, dups := dedup.Find(c.Items, f.config)

	for _, d := range dups {
		deps.Logger.Debug("duplicate candidate dropped",
			zap.String(logger.FieldCandidateID, d.Identity),
			zap.String("duplicate_of", d.DuplicateOf),
			zap.String("rule", string(d.Rule)),
		)
	}

	c.Items = kept
	return c, Step{Initial: initial, Dropped: len(dups), Left: c.Len()}, nil
}

func (f *dedupFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{
			"name_threshold":              fmt.Sprintf("%.2f", f.config.NameThreshold),
			"content_threshold":           fmt.Sprintf("%.2f", f.config.ContentThreshold),
			"identical_content_threshold": fmt.Sprintf("%.2f", f.config.IdenticalContentThreshold),
			"content_prefix":              fmt.Sprintf("%d", f.config.ContentPrefix),
		},
	}
}
