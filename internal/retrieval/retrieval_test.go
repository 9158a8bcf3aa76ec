package retrieval

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-matcher/internal/candidate"
)

func testPool() *candidate.Candidates {
	return candidate.New(
		&candidate.Record{Identity: "front", RawText: "Frontend developer, React and JavaScript", Attributes: candidate.Attributes{Skills: []string{"React"}}},
		&candidate.Record{Identity: "ops", RawText: "SRE with Kubernetes and Terraform"},
		&candidate.Record{Identity: "acct", RawText: "Accountant, payroll and taxes"},
	)
}

func TestFileSearcher(t *testing.T) {
	pool := testPool()
	s := NewFileSearcher(pool, nil)

	found, err := s.Search(context.Background(), "React frontend developer", 2)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "front", found[0].Identity)
	assert.Less(t, found[0].RetrievalDistance, found[1].RetrievalDistance)
	assert.GreaterOrEqual(t, found[0].RetrievalDistance, 0.0)
	assert.NotSame(t, pool.Items[0], found[0])
	assert.Zero(t, pool.Items[0].RetrievalDistance)
}

func TestFileSearcherEmptyQuery(t *testing.T) {
	found, err := NewFileSearcher(testPool(), nil).Search(context.Background(), "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestHTTPSearcher(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_, _ = gz.Write([]byte(`{"results":[
			{"id":"b","content":"second","distance":1.4,"metadata":{"experience_years":"3"}},
			{"id":"a","content":"first","distance":0.2,"metadata":{"skills":"Go, Docker"}}
		]}`))
	}))
	defer srv.Close()

	found, err := NewHTTPSearcher(srv.URL, 0, nil).Search(context.Background(), "go developer", 5)
	require.NoError(t, err)

	assert.Equal(t, searchRequest{Query: "go developer", TopK: 5}, got)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].Identity)
	assert.InDelta(t, 0.2, found[0].RetrievalDistance, 1e-9)
	assert.Equal(t, []string{"Docker", "Go"}, found[0].Attributes.Skills)
	assert.InDelta(t, 1.4, found[1].RetrievalDistance, 1e-9)
	assert.InDelta(t, 3.0, found[1].Attributes.ExperienceYears, 1e-9)
}

func TestHTTPSearcherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"id":"a","content":"x"}]}`))
	}))
	defer srv.Close()

	s := NewHTTPSearcher(srv.URL, 2, nil)
	s.Backoff = time.Millisecond

	found, err := s.Search(context.Background(), "query", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPSearcherPermanentError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	s := NewHTTPSearcher(srv.URL, 3, nil)
	s.Backoff = time.Millisecond

	_, err := s.Search(context.Background(), "query", 1)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorContains(t, err, "400")
	assert.Equal(t, int32(1), calls.Load())
}

type fakeEmbedder struct {
	calls atomic.Int32
	err   error
}

// Embed maps texts onto three axes: frontend, infrastructure, finance.
func (f *fakeEmbedder) Embed(_ context.Context, _ string, texts []string) ([][]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		t = strings.ToLower(t)
		v := []float32{0.01, 0.01, 0.01}
		if strings.Contains(t, "react") {
			v[0] = 1
		}
		if strings.Contains(t, "kubernetes") {
			v[1] = 1
		}
		if strings.Contains(t, "payroll") {
			v[2] = 1
		}
		out = append(out, v)
	}
	return out, nil
}

func TestGeminiSearcher(t *testing.T) {
	e := &fakeEmbedder{}
	s := newGeminiSearcher(e, testPool(), nil)

	found, err := s.Search(context.Background(), "kubernetes operator", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ops", found[0].Identity)
	assert.Less(t, found[0].RetrievalDistance, 0.1)

	_, err = s.Search(context.Background(), "react", 3)
	require.NoError(t, err)
	// pool embedded once, one call per query
	assert.Equal(t, int32(3), e.calls.Load())
}

func TestGeminiSearcherUnavailable(t *testing.T) {
	s := newGeminiSearcher(&fakeEmbedder{err: errors.New("quota exceeded")}, testPool(), nil)

	_, err := s.Search(context.Background(), "react", 3)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewGeminiSearcherRequiresKey(t *testing.T) {
	_, err := NewGeminiSearcher(context.Background(), " ", "", testPool(), nil)
	assert.Error(t, err)
}
