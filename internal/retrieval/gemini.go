package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/logger"
)

const (
	defaultEmbeddingModel = "text-embedding-004"
	embedBatchSize        = 100

	taskQuery    = "RETRIEVAL_QUERY"
	taskDocument = "RETRIEVAL_DOCUMENT"
)

// embedder turns texts into vectors, one per text in input order.
type embedder interface {
	Embed(ctx context.Context, task string, texts []string) ([][]float32, error)
}

type genaiEmbedder struct {
	client *genai.Client
	model  string
}

func (g *genaiEmbedder) Embed(ctx context.Context, task string, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, t := range texts[start:end] {
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: t}},
			})
		}

		resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{TaskType: task})
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", len(resp.Embeddings), end-start)
		}
		for _, e := range resp.Embeddings {
			if e == nil {
				return nil, errors.New("gemini api returned empty embedding")
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// GeminiSearcher ranks an in-memory pool by embedding similarity. Pool
// embeddings are computed on first search and reused afterwards.
type GeminiSearcher struct {
	pool     *candidate.Candidates
	embedder embedder
	logger   *zap.Logger

	mu      sync.Mutex
	vectors [][]float32
}

func NewGeminiSearcher(ctx context.Context, apiKey, model string, pool *candidate.Candidates, log *zap.Logger) (*GeminiSearcher, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}

	return newGeminiSearcher(&genaiEmbedder{client: client, model: model}, pool, log), nil
}

func newGeminiSearcher(e embedder, pool *candidate.Candidates, log *zap.Logger) *GeminiSearcher {
	if pool == nil {
		pool = candidate.New()
	}
	s := &GeminiSearcher{pool: pool, embedder: e}
	s.logger = logger.WithProvider(log, s.Name())
	return s
}

func (s *GeminiSearcher) Name() string { return "gemini" }

func (s *GeminiSearcher) Search(ctx context.Context, query string, topK int) ([]*candidate.Record, error) {
	if strings.TrimSpace(query) == "" || s.pool.Len() == 0 {
		return nil, nil
	}

	docs, err := s.documentVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	q, err := s.embedder.Embed(ctx, taskQuery, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(q) != 1 {
		return nil, fmt.Errorf("%w: no query embedding", ErrUnavailable)
	}

	items := make([]scored, 0, s.pool.Len())
	for i, r := range s.pool.Items {
		items = append(items, scored{record: r, distance: 1 - cosine(q[0], docs[i])})
	}
	return nearest(items, topK), nil
}

func (s *GeminiSearcher) documentVectors(ctx context.Context) ([][]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vectors != nil {
		return s.vectors, nil
	}

	texts := make([]string, 0, s.pool.Len())
	for _, r := range s.pool.Items {
		texts = append(texts, r.SearchText())
	}

	vectors, err := s.embedder.Embed(ctx, taskDocument, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d documents", len(vectors), len(texts))
	}

	s.logger.Info("embedded candidate pool", zap.Int("documents", len(vectors)))
	s.vectors = vectors
	return vectors, nil
}
