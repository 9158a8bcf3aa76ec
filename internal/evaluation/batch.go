package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/criteria"
	"github.com/spigell/resume-matcher/internal/logger"
)

const (
	MessageNoCandidates = "no candidates provided for evaluation"
	MessageNoneSelected = "no candidates met threshold"
	MessageOK           = "ok"

	DefaultWorkers = 4
)

type Result struct {
	Candidate *candidate.Record `json:"candidate"`
	Score     *ScoreBreakdown   `json:"score"`
}

type Summary struct {
	TotalEvaluated       int     `json:"total_evaluated"`
	SelectedCount        int     `json:"selected_count"`
	RejectedCount        int     `json:"rejected_count"`
	SelectionRate        float64 `json:"selection_rate"`
	AverageScore         float64 `json:"average_score"`
	AverageSelectedScore float64 `json:"average_selected_score"`
	Threshold            float64 `json:"threshold"`
}

// Report is the outcome of one evaluation run. Selected and Rejected are
// ordered by overall score, highest first.
type Report struct {
	RunID       string                `json:"run_id"`
	EvaluatedAt time.Time             `json:"evaluated_at"`
	Message     string                `json:"message"`
	Criteria    *criteria.JobCriteria `json:"criteria"`
	Selected    []*Result             `json:"selected"`
	Rejected    []*Result             `json:"rejected"`
	Summary     Summary               `json:"summary"`
}

// Results returns selected then rejected results.
func (r *Report) Results() []*Result {
	out := make([]*Result, 0, len(r.Selected)+len(r.Rejected))
	out = append(out, r.Selected...)
	return append(out, r.Rejected...)
}

// Candidates returns the records with the given decision.
func (r *Report) Candidates(status Status) *candidate.Candidates {
	var src []*Result
	switch status {
	case StatusSelected:
		src = r.Selected
	case StatusRejected:
		src = r.Rejected
	}

	records := make([]*candidate.Record, 0, len(src))
	for _, res := range src {
		records = append(records, res.Candidate)
	}
	return candidate.New(records...)
}

// ReportByDecision lists "name (identity): score" lines per decision.
func (r *Report) ReportByDecision() map[string][]string {
	report := make(map[string][]string, 2)
	for _, res := range r.Results() {
		decision := res.Score.Status.String()
		report[decision] = append(report[decision], fmt.Sprintf("%s (%s): %.2f",
			res.Candidate.Name(), res.Candidate.Identity, res.Score.OverallScore))
	}
	return report
}

func (r *Report) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "evaluation_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

type Runner struct {
	Evaluator *Evaluator
	Workers   int
	Logger    *zap.Logger

	now func() time.Time
}

func NewRunner(e *Evaluator, workers int, log *zap.Logger) *Runner {
	if e == nil {
		e = New()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{Evaluator: e, Workers: workers, Logger: logger.WithFields(log), now: time.Now}
}

// EvaluateAll extracts criteria from jobText once and evaluates every
// candidate in parallel. Results are collected by position and sorted after
// all workers finish, so the output never depends on completion order.
// A cancelled context aborts the run without partial output.
func (r *Runner) EvaluateAll(ctx context.Context, records []*candidate.Record, jobText string) (*Report, error) {
	runID := uuid.NewString()
	log := logger.WithRun(r.Logger, runID)

	report := &Report{
		RunID:       runID,
		EvaluatedAt: r.now().UTC(),
		Criteria:    criteria.Extract(jobText),
		Summary:     Summary{Threshold: r.Evaluator.Threshold},
	}

	if len(records) == 0 {
		report.Message = MessageNoCandidates
		return report, nil
	}

	results := make([]*Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			score := r.Evaluator.Evaluate(rec, jobText, report.Criteria)
			results[i] = &Result{Candidate: rec, Score: score}

			logger.WithCandidate(log, rec.Identity, rec.Name()).Debug("candidate evaluated",
				zap.Stringer("decision", score.Status),
				zap.Float64("overall_score", score.OverallScore),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, res := range results {
		if res.Score.IsSelected() {
			report.Selected = append(report.Selected, res)
		} else {
			report.Rejected = append(report.Rejected, res)
		}
	}
	byScore(report.Selected)
	byScore(report.Rejected)

	report.Summary = summarize(results, report.Selected, r.Evaluator.Threshold)
	report.Message = MessageOK
	if len(report.Selected) == 0 {
		report.Message = MessageNoneSelected
	}

	log.Info("evaluation completed",
		zap.Int("total", report.Summary.TotalEvaluated),
		zap.Int("selected", report.Summary.SelectedCount),
		zap.Int("rejected", report.Summary.RejectedCount),
	)

	return report, nil
}

func byScore(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score.OverallScore > results[j].Score.OverallScore
	})
}

func summarize(all, selected []*Result, threshold float64) Summary {
	s := Summary{
		TotalEvaluated: len(all),
		SelectedCount:  len(selected),
		RejectedCount:  len(all) - len(selected),
		Threshold:      threshold,
	}
	if len(all) == 0 {
		return s
	}

	var total float64
	for _, res := range all {
		total += res.Score.OverallScore
	}
	s.AverageScore = total / float64(len(all))
	s.SelectionRate = float64(len(selected)) / float64(len(all))

	if len(selected) > 0 {
		var sel float64
		for _, res := range selected {
			sel += res.Score.OverallScore
		}
		s.AverageSelectedScore = sel / float64(len(selected))
	}
	return s
}
