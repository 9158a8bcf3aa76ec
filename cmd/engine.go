package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/cache"
	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/evaluation"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/retrieval"
	"github.com/spigell/resume-matcher/internal/secrets"
)

// newEngine wires the matching engine from config. The returned cleanup
// releases the cache connection.
func newEngine(ctx context.Context, config *Config, logger *zap.Logger) (*matching.Engine, func(), error) {
	searcher, err := newSearcher(ctx, &config.Retrieval, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("building %s retrieval: %w", config.Retrieval.Provider, err)
	}

	store, cleanup, err := newCache(ctx, config.Redis, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("building cache: %w", err)
	}

	evaluator := &evaluation.Evaluator{Threshold: config.Threshold, Weights: config.Weights}
	runner := evaluation.NewRunner(evaluator, config.Workers, logger)

	opts := matching.Options{
		Dedup:           config.Dedup,
		ExcludeFile:     config.ExcludeFile,
		MinSkillsMatch:  config.Shortlist.MinSkillsMatch,
		Overfetch:       config.Shortlist.Overfetch,
		DisabledFilters: config.Shortlist.DisabledFilters,
	}

	return matching.New(searcher, runner, store, opts, logger), cleanup, nil
}

func newSearcher(ctx context.Context, cfg *RetrievalConfig, logger *zap.Logger) (retrieval.Searcher, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	if provider == "http" {
		return retrieval.NewHTTPSearcher(cfg.URL, cfg.MaxRetries, logger), nil
	}

	pool, err := candidate.LoadPool(cfg.PoolFile)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded candidate pool", zap.String("path", cfg.PoolFile), zap.Int("count", pool.Len()))

	switch provider {
	case "file":
		return retrieval.NewFileSearcher(pool, logger), nil
	case "gemini":
		gemini := cfg.Gemini
		if gemini == nil {
			gemini = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
			Value: gemini.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set retrieval.gemini.api-key-file, RESUME_MATCHER_GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
		}

		return retrieval.NewGeminiSearcher(ctx, apiKey, gemini.Model, pool, logger.With(zap.String("model", gemini.Model)))
	default:
		return nil, fmt.Errorf("unsupported retrieval provider: %s", cfg.Provider)
	}
}

// newCache returns a Redis store when configured and an in-memory one otherwise.
func newCache(ctx context.Context, cfg *RedisConfig, logger *zap.Logger) (cache.Store, func(), error) {
	if cfg == nil || strings.TrimSpace(cfg.Addr) == "" {
		return cache.NewMemory(), func() {}, nil
	}

	password, err := secrets.Load(secrets.Source{
		Name:     "redis password",
		File:     cfg.PasswordFile,
		Value:    cfg.Password,
		Optional: true,
	})
	if err != nil {
		return nil, nil, err
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisOptions{Addr: cfg.Addr, Password: password, DB: cfg.DB})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis cache", zap.String("addr", cfg.Addr), zap.Duration("ttl", cfg.TTL))

	return cache.NewRedis(client, cfg.Prefix, cfg.TTL), func() { client.Close() }, nil
}
