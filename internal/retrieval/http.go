package retrieval

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/candidate"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "resume-matcher"

	defaultHTTPTimeout = 30 * time.Second
	defaultBackoff     = 500 * time.Millisecond
	maxBackoff         = 10 * time.Second
)

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []candidate.Document `json:"results"`
}

// HTTPSearcher queries an external retrieval service. Distances are passed
// through unchanged, whatever scale the service uses.
type HTTPSearcher struct {
	URL        string
	HTTPClient *http.Client
	MaxRetries int
	Backoff    time.Duration

	logger *zap.Logger
}

func NewHTTPSearcher(url string, maxRetries int, log *zap.Logger) *HTTPSearcher {
	s := &HTTPSearcher{
		URL:        strings.TrimSpace(url),
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
		MaxRetries: max(0, maxRetries),
		Backoff:    defaultBackoff,
	}
	s.logger = logger.WithProvider(log, s.Name())
	return s
}

func (s *HTTPSearcher) Name() string { return "http" }

func (s *HTTPSearcher) Search(ctx context.Context, query string, topK int) ([]*candidate.Record, error) {
	if strings.TrimSpace(query) == "" || topK <= 0 {
		return nil, nil
	}

	body, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := utils.WaitFor(ctx, utils.Backoff(s.Backoff, attempt, maxBackoff)); err != nil {
				return nil, err
			}
		}

		docs, err := s.do(ctx, body)
		if err == nil {
			return s.records(docs, topK)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		var perm *permanentError
		if errors.As(err, &perm) {
			break
		}
		s.logger.Warn("retrieval request failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return nil, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (s *HTTPSearcher) records(docs []candidate.Document, topK int) ([]*candidate.Record, error) {
	pool, err := candidate.FromDocuments(docs)
	if err != nil {
		return nil, fmt.Errorf("decoding retrieval results: %w", err)
	}

	items := make([]scored, 0, pool.Len())
	for _, r := range pool.Items {
		items = append(items, scored{record: r, distance: r.RetrievalDistance})
	}
	found := nearest(items, topK)

	s.logger.Debug("got response from retrieval service", zap.Int("found", len(found)))
	return found, nil
}

type permanentError struct {
	status string
}

func (e *permanentError) Error() string {
	return "bad status: " + e.status
}

func (s *HTTPSearcher) do(ctx context.Context, body []byte) ([]candidate.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &permanentError{status: err.Error()}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("User-Agent", userAgent)

	s.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, &permanentError{status: resp.Status}
	}

	var response searchResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, &permanentError{status: "invalid response body: " + err.Error()}
	}

	return response.Results, nil
}
