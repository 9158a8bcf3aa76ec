// Package matching exposes the two engine operations: shortlisting
// retrieved candidates for a job and evaluating a shortlist against it.
package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/cache"
	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
	"github.com/spigell/resume-matcher/internal/dedup"
	"github.com/spigell/resume-matcher/internal/evaluation"
	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/metrics"
	"github.com/spigell/resume-matcher/internal/ranking"
	"github.com/spigell/resume-matcher/internal/retrieval"
	"github.com/spigell/resume-matcher/internal/skills"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	StatusNoCandidates = "no candidates found"
	StatusNoneLeft     = "no candidates left after filters"
	StatusOK           = "ok"

	DefaultOverfetch = 2
)

// Options are the engine-wide shortlist settings. Per-request bounds come
// with the ShortlistRequest.
type Options struct {
	Dedup           dedup.Config
	ExcludeFile     string
	MinSkillsMatch  float64
	Overfetch       int
	DisabledFilters []string
}

func DefaultOptions() Options {
	return Options{Dedup: dedup.DefaultConfig(), Overfetch: DefaultOverfetch}
}

type ShortlistRequest struct {
	JobRequirements string
	MinExperience   int
	MaxExperience   int
	TopN            int
}

type ShortlistResult struct {
	Candidates []*candidate.Record   `json:"candidates"`
	Status     string                `json:"status"`
	Steps      []filtering.Step      `json:"steps,omitempty"`
	Criteria   *criteria.JobCriteria `json:"criteria,omitempty"`
	Filters    []filtering.Status    `json:"filters,omitempty"`
}

type Engine struct {
	searcher retrieval.Searcher
	runner   *evaluation.Runner
	store    cache.Store
	opts     Options
	logger   *zap.Logger
}

// New builds an engine. store may be nil, in which case derived fields are
// recomputed on every request.
func New(searcher retrieval.Searcher, runner *evaluation.Runner, store cache.Store, opts Options, log *zap.Logger) *Engine {
	if runner == nil {
		runner = evaluation.NewRunner(nil, 0, log)
	}
	if opts.Overfetch <= 0 {
		opts.Overfetch = DefaultOverfetch
	}
	return &Engine{
		searcher: searcher,
		runner:   runner,
		store:    store,
		opts:     opts,
		logger:   logger.WithFields(log),
	}
}

// Shortlist retrieves candidates for the job requirements, runs them through
// the filter pipeline and returns at most TopN of them ordered by combined
// score. Empty input yields an empty result with a status, not an error.
func (e *Engine) Shortlist(ctx context.Context, req ShortlistRequest) (*ShortlistResult, error) {
	defer metrics.ObserveDuration("shortlist", time.Now())

	query := strings.TrimSpace(req.JobRequirements)
	result := &ShortlistResult{Status: StatusNoCandidates, Criteria: criteria.Extract(query)}
	if query == "" || req.TopN <= 0 {
		return result, nil
	}
	if e.searcher == nil {
		return nil, retrieval.ErrUnavailable
	}

	log := logger.WithProvider(e.logger, e.searcher.Name())
	log.Debug("searching candidates",
		zap.String("query", utils.TruncateForLog(query, 200)),
		zap.Int("top_k", req.TopN*e.opts.Overfetch),
	)

	found, err := e.searcher.Search(ctx, query, req.TopN*e.opts.Overfetch)
	if err != nil {
		return nil, fmt.Errorf("searching candidates: %w", err)
	}
	metrics.RetrievedCandidates.WithLabelValues(e.searcher.Name()).Add(float64(len(found)))
	if len(found) == 0 {
		log.Info("no candidates found")
		return result, nil
	}

	pool := candidate.New()
	for _, r := range found {
		c := r.Clone()
		c.ResolveIdentity()
		pool.Items = append(pool.Items, c)
	}

	steps := filtering.Default()
	for _, name := range e.opts.DisabledFilters {
		filtering.DisableByName(steps, name, "disabled by configuration")
	}

	cfg := &filtering.Config{
		Dedup:          e.opts.Dedup,
		MinExperience:  req.MinExperience,
		MaxExperience:  req.MaxExperience,
		ExcludeFile:    e.opts.ExcludeFile,
		RequiredSkills: requiredSkills(result.Criteria, query),
		MinSkillsMatch: e.opts.MinSkillsMatch,
	}

	left, done, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: log, Cache: e.store}, steps, pool)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}
	result.Steps = done
	result.Filters = filtering.Describe(steps)
	for _, s := range done {
		if s.Name == "dedup" {
			metrics.DuplicatesDropped.Add(float64(s.Dropped))
		}
	}

	if left.Len() == 0 {
		result.Status = StatusNoneLeft
		log.Info("no candidates left after filters", zap.Int("retrieved", len(found)))
		return result, nil
	}

	result.Candidates = ranking.Rank(left.Items, req.MinExperience, req.MaxExperience, req.TopN)
	result.Status = StatusOK

	log.Info("shortlist ready",
		zap.Int("retrieved", len(found)),
		zap.Int("after_filters", left.Len()),
		zap.Int("shortlisted", len(result.Candidates)),
	)
	return result, nil
}

// Evaluate scores every candidate against the job description and splits
// them into selected and rejected.
func (e *Engine) Evaluate(ctx context.Context, records []*candidate.Record, jobText string) (*evaluation.Report, error) {
	defer metrics.ObserveDuration("evaluate", time.Now())

	report, err := e.runner.EvaluateAll(ctx, records, jobText)
	if err != nil {
		return nil, err
	}

	for _, res := range report.Results() {
		metrics.Evaluations.WithLabelValues(res.Score.Status.String()).Inc()
		metrics.OverallScore.Observe(res.Score.OverallScore)
	}
	return report, nil
}

// Match runs Shortlist and evaluates its output against the same text.
func (e *Engine) Match(ctx context.Context, req ShortlistRequest) (*ShortlistResult, *evaluation.Report, error) {
	shortlist, err := e.Shortlist(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	report, err := e.Evaluate(ctx, shortlist.Candidates, req.JobRequirements)
	if err != nil {
		return nil, nil, err
	}
	return shortlist, report, nil
}

// requiredSkills prefers the explicit requirements section and falls back to
// every known skill mentioned in the text.
func requiredSkills(c *criteria.JobCriteria, query string) []string {
	if c != nil && len(c.RequiredSkills) > 0 {
		return c.RequiredSkills
	}
	return skills.ExtractFromText(query)
}
