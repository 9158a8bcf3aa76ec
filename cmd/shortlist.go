package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
)

var shortlistCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Retrieve, filter and rank candidates for a job",
	Run: func(cmd *cobra.Command, _ []string) {
		shortlist(cmd)
	},
}

func init() {
	rootCmd.AddCommand(shortlistCmd)

	addJobFlags(shortlistCmd)
	shortlistCmd.Flags().StringP("output", "o", "text", "output format: text or json")
}

// addJobFlags registers the flags describing the job to match.
func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().String("job-file", "", "file with the job description")
	cmd.Flags().StringP("query", "q", "", "job requirements as text (used when --job-file is not set)")
	cmd.Flags().Int("min-exp", 0, "minimum years of experience")
	cmd.Flags().Int("max-exp", 0, "maximum years of experience (0 means no upper bound)")
	cmd.Flags().IntP("top", "n", 10, "shortlist size")
	cmd.Flags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")
}

func shortlistRequest(cmd *cobra.Command) (matching.ShortlistRequest, error) {
	var req matching.ShortlistRequest

	text, err := jobText(cmd)
	if err != nil {
		return req, err
	}

	flags := cmd.Flags()
	req.JobRequirements = text
	if req.MinExperience, err = flags.GetInt("min-exp"); err != nil {
		return req, err
	}
	if req.MaxExperience, err = flags.GetInt("max-exp"); err != nil {
		return req, err
	}
	if req.TopN, err = flags.GetInt("top"); err != nil {
		return req, err
	}
	return req, nil
}

func jobText(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("job-file")
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading job file: %w", err)
		}
		return string(data), nil
	}

	query, _ := cmd.Flags().GetString("query")
	if strings.TrimSpace(query) == "" {
		return "", errors.New("either --job-file or --query is required")
	}
	return query, nil
}

// setup builds the logger, config and engine shared by the commands.
func setup(ctx context.Context, cmd *cobra.Command) (*zap.Logger, *Config, *matching.Engine, func()) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), zap.String("app", app))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	if flag := cmd.Flags().Lookup("exclude-file"); flag != nil && flag.Changed {
		viper.Set("exclude-file", flag.Value.String())
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-matcher", zap.String("version", version), zap.String("command", cmd.Name()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	engine, cleanup, err := newEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the engine", zap.Error(err))
	}

	return logger, config, engine, cleanup
}

func shortlist(cmd *cobra.Command) {
	ctx := context.Background()

	logger, _, engine, cleanup := setup(ctx, cmd)
	defer cleanup()

	req, err := shortlistRequest(cmd)
	if err != nil {
		logger.Fatal("reading the job", zap.Error(err))
	}

	res, err := engine.Shortlist(ctx, req)
	if err != nil {
		logger.Fatal("shortlisting failed", zap.Error(err))
	}

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Fatal("encoding the shortlist", zap.Error(err))
		}
		return
	}

	if len(res.Candidates) == 0 {
		logger.Info("exiting", zap.String("reason", res.Status))
		return
	}

	for i, c := range res.Candidates {
		logger.Info("shortlisted candidate",
			zap.Int("rank", i+1),
			zap.String("candidate_id", c.Identity),
			zap.String("candidate_name", c.Name()),
			zap.Float64("combined_score", c.CombinedScore),
			zap.Float64("experience_years", c.Attributes.ExperienceYears),
		)
	}
}
