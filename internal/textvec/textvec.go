// Package textvec builds TF-IDF vectors over a small corpus and compares them
// with cosine similarity. Term order is always sorted so results do not depend
// on map iteration.
package textvec

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

const DefaultMaxFeatures = 1000

var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words or no tokens")

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Vector is an L2-normalized sparse vector indexed by vocabulary position.
type Vector map[int]float64

type Vectorizer struct {
	MaxFeatures int

	vocabulary []string
	index      map[string]int
	idf        []float64
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{MaxFeatures: DefaultMaxFeatures}
}

// Tokens lowercases text, drops stop words and returns unigrams followed by
// bigrams of the remaining words.
func Tokens(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	kept := words[:0]
	for _, w := range words {
		if _, stop := stopWords[w]; !stop {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// Fit learns the vocabulary and smoothed inverse document frequencies.
func (v *Vectorizer) Fit(docs []string) error {
	df := map[string]int{}
	total := map[string]int{}
	for _, doc := range docs {
		seen := map[string]struct{}{}
		for _, term := range Tokens(doc) {
			total[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}
	if len(total) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	limit := v.MaxFeatures
	if limit <= 0 {
		limit = DefaultMaxFeatures
	}
	if len(terms) > limit {
		sort.SliceStable(terms, func(i, j int) bool { return total[terms[i]] > total[terms[j]] })
		terms = terms[:limit]
		sort.Strings(terms)
	}

	n := float64(len(docs))
	v.vocabulary = terms
	v.index = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.index[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return nil
}

// Transform vectorizes text using the fitted vocabulary. Unknown terms are ignored.
func (v *Vectorizer) Transform(text string) Vector {
	counts := map[int]float64{}
	for _, term := range Tokens(text) {
		if i, ok := v.index[term]; ok {
			counts[i]++
		}
	}

	keys := make([]int, 0, len(counts))
	for i := range counts {
		keys = append(keys, i)
	}
	sort.Ints(keys)

	vec := make(Vector, len(counts))
	var norm float64
	for _, i := range keys {
		w := counts[i] * v.idf[i]
		vec[i] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for _, i := range keys {
		vec[i] /= norm
	}
	return vec
}

func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.vocabulary...)
}

// Cosine returns the cosine similarity of two vectors clamped to [0,1].
func Cosine(a, b Vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	keys := make([]int, 0, len(a))
	for i := range a {
		keys = append(keys, i)
	}
	sort.Ints(keys)

	var dot, na, nb float64
	for _, i := range keys {
		dot += a[i] * b[i]
	}
	na = squaredNorm(a)
	nb = squaredNorm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// Similarity fits a vectorizer on both texts and returns their cosine similarity.
func Similarity(a, b string) (float64, error) {
	v := NewVectorizer()
	if err := v.Fit([]string{a, b}); err != nil {
		return 0, err
	}
	return Cosine(v.Transform(a), v.Transform(b)), nil
}

func squaredNorm(v Vector) float64 {
	keys := make([]int, 0, len(v))
	for i := range v {
		keys = append(keys, i)
	}
	sort.Ints(keys)

	var s float64
	for _, i := range keys {
		s += v[i] * v[i]
	}
	return s
}

func clamp(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
