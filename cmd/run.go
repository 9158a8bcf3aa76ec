package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/evaluation"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptReportByDecision    = "Report by decision"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append rejected to exclude file"

	rejectReason = "below selection threshold"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Shortlist and evaluate candidates, then review the decisions",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	addJobFlags(runCmd)
	runCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation and accept the selected candidates")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, _, engine, cleanup := setup(ctx, cmd)
	defer cleanup()

	req, err := shortlistRequest(cmd)
	if err != nil {
		logger.Fatal("reading the job", zap.Error(err))
	}

	shortlist, report, err := engine.Match(ctx, req)
	if err != nil {
		logger.Fatal("matching failed", zap.Error(err))
	}

	if len(shortlist.Candidates) == 0 {
		logger.Info("exiting", zap.String("reason", shortlist.Status))
		return
	}

	logger.Info("evaluation finished",
		zap.String("run_id", report.RunID),
		zap.String("status", report.Message),
		zap.Int("selected", report.Summary.SelectedCount),
		zap.Int("rejected", report.Summary.RejectedCount),
		zap.Float64("average_score", report.Summary.AverageScore),
	)

	excludeFile := viper.GetString("exclude-file")
	items := []string{PromptYes, PromptNo, PromptReportByDecision, PromptResultsToFile}
	if excludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	prompt := promptui.Select{
		Label: "Accept the selected candidates?",
		Items: items,
	}

	action := PromptYes
	for {
		if cmd.Flag("auto-aprove").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(action, logger, excludeFile, report); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, excludeFile string, report *evaluation.Report) error {
	switch action {
	case PromptYes:
		accept(logger, report)
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByDecision:
		pretty, _ := json.MarshalIndent(report.ReportByDecision(), "", "  ")
		logger.Info(string(pretty), zap.Int("candidates count", len(report.Results())))
		return nil
	case PromptResultsToFile:
		filename, err := report.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendRejected(logger, excludeFile, report)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func accept(logger *zap.Logger, report *evaluation.Report) {
	for _, res := range report.Selected {
		logger.Info("candidate selected",
			zap.String("candidate_id", res.Candidate.Identity),
			zap.String("candidate_name", res.Candidate.Name()),
			zap.Float64("overall_score", res.Score.OverallScore),
			zap.String("recommendation", res.Score.Justification.Recommendation),
			zap.Strings("reasons", res.Score.Justification.SelectionReasons),
		)
	}
	logger.Info("accepted selected candidates", zap.Int("count", len(report.Selected)))
}

func appendRejected(logger *zap.Logger, excludeFile string, report *evaluation.Report) error {
	if excludeFile == "" {
		return errors.New("exclude file is not configured")
	}

	rejected := report.Candidates(evaluation.StatusRejected)
	if rejected.Len() == 0 {
		logger.Info("nothing to exclude", zap.String("reason", "no rejected candidates"))
		return nil
	}

	excluded, err := candidate.GetExcludedCandidatesFromFile(excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(rejected.ToExcluded(candidate.ExcludeActorEvaluator, rejectReason))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", rejected.Len()))
	report.Rejected = nil
	return nil
}
