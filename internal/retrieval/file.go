package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/textvec"
)

// FileSearcher ranks an in-memory pool with TF-IDF. Distance is 1 - cosine.
type FileSearcher struct {
	pool   *candidate.Candidates
	logger *zap.Logger
}

func NewFileSearcher(pool *candidate.Candidates, log *zap.Logger) *FileSearcher {
	if pool == nil {
		pool = candidate.New()
	}
	s := &FileSearcher{pool: pool}
	s.logger = logger.WithProvider(log, s.Name())
	return s
}

func (s *FileSearcher) Name() string { return "file" }

func (s *FileSearcher) Search(ctx context.Context, query string, topK int) ([]*candidate.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" || s.pool.Len() == 0 {
		return nil, nil
	}

	corpus := make([]string, 0, s.pool.Len()+1)
	corpus = append(corpus, query)
	for _, r := range s.pool.Items {
		corpus = append(corpus, r.SearchText())
	}

	v := textvec.NewVectorizer()
	if err := v.Fit(corpus); err != nil {
		s.logger.Debug("query and pool share no terms", zap.Error(err))
		return nil, nil
	}

	q := v.Transform(query)
	items := make([]scored, 0, s.pool.Len())
	for _, r := range s.pool.Items {
		items = append(items, scored{record: r, distance: 1 - textvec.Cosine(q, v.Transform(r.SearchText()))})
	}

	found := nearest(items, topK)
	s.logger.Debug("searched candidate pool", zap.Int("pool", s.pool.Len()), zap.Int("found", len(found)))
	return found, nil
}
