package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-matcher/internal/cache"
	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/evaluation"
	"github.com/spigell/resume-matcher/internal/matching"
)

func configFrom(t *testing.T, yaml string) (*Config, error) {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return decodeConfig(v)
}

func TestConfigDefaults(t *testing.T) {
	config, err := configFrom(t, "retrieval:\n  pool-file: pool.json\n")
	require.NoError(t, err)

	assert.InDelta(t, 0.60, config.Threshold, 1e-9)
	assert.Equal(t, evaluation.DefaultWeights(), config.Weights)
	assert.Equal(t, 4, config.Workers)
	assert.InDelta(t, 0.90, config.Dedup.NameThreshold, 1e-9)
	assert.Equal(t, 500, config.Dedup.ContentPrefix)
	assert.Equal(t, 2, config.Shortlist.Overfetch)
	assert.Equal(t, "file", config.Retrieval.Provider)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Nil(t, config.Redis)
}

func TestConfigOverrides(t *testing.T) {
	config, err := configFrom(t, `
threshold: 0.7
weights:
  role-fit: 0.2
dedup:
  content-threshold: 0.8
shortlist:
  disabled-filters: [skills_match]
retrieval:
  provider: http
  url: http://localhost:9000/search
redis:
  addr: localhost:6379
  ttl: 1h
`)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, config.Threshold, 1e-9)
	assert.InDelta(t, 0.2, config.Weights.RoleFit, 1e-9)
	assert.InDelta(t, 0.35, config.Weights.Skills, 1e-9)
	assert.InDelta(t, 0.8, config.Dedup.ContentThreshold, 1e-9)
	assert.Equal(t, []string{"skills_match"}, config.Shortlist.DisabledFilters)
	require.NotNil(t, config.Redis)
	assert.Equal(t, time.Hour, config.Redis.TTL)
}

func TestConfigValidation(t *testing.T) {
	for name, yaml := range map[string]string{
		"threshold above one": "threshold: 1.5\nretrieval:\n  pool-file: p.json\n",
		"unknown provider":    "retrieval:\n  provider: chroma\n  pool-file: p.json\n",
		"http without url":    "retrieval:\n  provider: http\n",
		"file without pool":   "retrieval:\n  provider: file\n",
		"zero workers":        "workers: 0\nretrieval:\n  pool-file: p.json\n",
		"unknown filter":      "shortlist:\n  disabled-filters: [ai]\nretrieval:\n  pool-file: p.json\n",
		"all weights zero": `
weights: {semantic: 0, skills: 0, experience: 0, certification: 0, role-fit: 0}
retrieval:
  pool-file: p.json
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := configFrom(t, yaml)
			assert.ErrorContains(t, err, "validating config")
		})
	}
}

func writePool(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pool.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "a", "content": "React developer", "metadata": {"experience_years": 4}},
		{"id": "b", "content": "Accountant", "metadata": {"experience_years": 10}}
	]`), 0o644))
	return path
}

func TestNewEngineWithFilePool(t *testing.T) {
	config, err := configFrom(t, "retrieval:\n  pool-file: "+writePool(t)+"\n")
	require.NoError(t, err)

	engine, cleanup, err := newEngine(context.Background(), config, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	res, err := engine.Shortlist(context.Background(), shortlistReq("React developer"))
	require.NoError(t, err)
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "a", res.Candidates[0].Identity)
}

func TestNewSearcherGeminiWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := newSearcher(context.Background(), &RetrievalConfig{Provider: "gemini", PoolFile: writePool(t)}, zap.NewNop())
	assert.ErrorContains(t, err, "gemini api key is not configured")
}

func TestNewCacheDefaultsToMemory(t *testing.T) {
	store, cleanup, err := newCache(context.Background(), nil, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &cache.Memory{}, store)
}

func shortlistReq(query string) matching.ShortlistRequest {
	return matching.ShortlistRequest{JobRequirements: query, TopN: 5}
}

func testReport() *evaluation.Report {
	return &evaluation.Report{
		RunID: "run",
		Selected: []*evaluation.Result{{
			Candidate: &candidate.Record{Identity: "a", DisplayName: "Ann"},
			Score:     &evaluation.ScoreBreakdown{OverallScore: 0.8, Status: evaluation.StatusSelected},
		}},
		Rejected: []*evaluation.Result{{
			Candidate: &candidate.Record{Identity: "b", DisplayName: "Bob"},
			Score:     &evaluation.ScoreBreakdown{OverallScore: 0.3, Status: evaluation.StatusRejected},
		}},
	}
}

func TestHandleAction(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	assert.ErrorIs(t, handleAction(PromptNo, logger, "", testReport()), errExit)
	assert.ErrorIs(t, handleAction(PromptYes, logger, "", testReport()), errExit)
	assert.Equal(t, 1, logs.FilterMessage("candidate selected").Len())

	require.NoError(t, handleAction(PromptReportByDecision, logger, "", testReport()))
	assert.Error(t, handleAction("Maybe", logger, "", testReport()))
	assert.Error(t, handleAction(PromptAppendToExcludeFile, logger, "", testReport()))

	require.NoError(t, handleAction(PromptResultsToFile, logger, "", testReport()))
	dumped := logs.FilterMessage("dumping result to file").All()
	require.Len(t, dumped, 1)
	filename := dumped[0].ContextMap()["filename"].(string)
	t.Cleanup(func() { _ = os.Remove(filename) })
	assert.FileExists(t, filename)
}

func TestAppendRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	report := testReport()

	require.NoError(t, handleAction(PromptAppendToExcludeFile, zap.NewNop(), path, report))
	assert.Empty(t, report.Rejected)

	excluded, err := candidate.GetExcludedCandidatesFromFile(path)
	require.NoError(t, err)
	require.Len(t, excluded.Items, 1)
	assert.Equal(t, "b", excluded.Items[0].Identity)
	assert.Equal(t, candidate.ExcludeActorEvaluator, excluded.Items[0].Actor)

	// a second append has nothing left to add
	require.NoError(t, handleAction(PromptAppendToExcludeFile, zap.NewNop(), path, report))
	excluded, err = candidate.GetExcludedCandidatesFromFile(path)
	require.NoError(t, err)
	assert.Len(t, excluded.Items, 1)
}

func TestJobText(t *testing.T) {
	cmd := shortlistCmd
	t.Cleanup(func() {
		_ = cmd.Flags().Set("query", "")
		_ = cmd.Flags().Set("job-file", "")
	})

	_, err := jobText(cmd)
	assert.Error(t, err)

	require.NoError(t, cmd.Flags().Set("query", "Go developer"))
	text, err := jobText(cmd)
	require.NoError(t, err)
	assert.Equal(t, "Go developer", text)

	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("Required Skills: Go"), 0o644))
	require.NoError(t, cmd.Flags().Set("job-file", path))
	text, err = jobText(cmd)
	require.NoError(t, err)
	assert.Equal(t, "Required Skills: Go", text)
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Equal(t, "resume-matcher version: unknown\n", out.String())
}
