// Package retrieval adapts similarity-search backends to the matcher. Every
// searcher returns fresh records ordered by ascending distance.
package retrieval

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/spigell/resume-matcher/internal/candidate"
)

var ErrUnavailable = errors.New("retrieval service unavailable")

type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, topK int) ([]*candidate.Record, error)
}

type scored struct {
	record   *candidate.Record
	distance float64
}

// nearest clones the records with their distances and keeps the topK closest.
func nearest(items []scored, topK int) []*candidate.Record {
	sort.SliceStable(items, func(i, j int) bool { return items[i].distance < items[j].distance })
	if topK > 0 && len(items) > topK {
		items = items[:topK]
	}

	out := make([]*candidate.Record, 0, len(items))
	for _, it := range items {
		r := it.record.Clone()
		r.RetrievalDistance = it.distance
		out = append(out, r)
	}
	return out
}

func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
