// Package index provides a term-frequency/inverse-document-frequency vector
// space over a fixed document corpus with cosine-similarity ranking.
//
// The index is fit once at construction and read-only afterwards; if the
// corpus changes a new index must be built.
package index

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Hit is one ranked document: its position in the original corpus and its
// cosine similarity to the query, in [0,1].
type Hit struct {
	Index int
	Score float64
}

// Index is an immutable TF-IDF vector space over a document corpus.
// Safe for concurrent readers once constructed.
type Index struct {
	docs    []map[string]float64 // l2-normalized tf-idf vectors
	idf     map[string]float64
	numDocs int
}

// New builds an index over docs. Weighting follows the conventional
// smoothed scheme: idf(t) = ln((1+n)/(1+df(t))) + 1, raw term counts,
// l2-normalized document vectors. A one-document corpus degenerates to
// idf=1 for every term and still ranks correctly.
func New(docs []string) *Index {
	n := len(docs)
	tokenized := make([][]string, n)
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := Tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]bool, len(tokens))
		for _, t := range tokens {
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log(float64(1+n)/float64(1+count)) + 1
	}

	idx := &Index{
		docs:    make([]map[string]float64, n),
		idf:     idf,
		numDocs: n,
	}
	for i, tokens := range tokenized {
		idx.docs[i] = idx.vectorize(tokens)
	}
	return idx
}

// Len returns the corpus size
func (ix *Index) Len() int { return ix.numDocs }

// Similarity returns up to topK documents ranked by descending cosine
// similarity to query. Ties are broken by original corpus order. An empty
// query returns the first topK documents in corpus order with zero scores,
// a fixed deterministic fallback rather than an error.
func (ix *Index) Similarity(query string, topK int) []Hit {
	if topK <= 0 {
		return nil
	}
	if topK > ix.numDocs {
		topK = ix.numDocs
	}

	if strings.TrimSpace(query) == "" {
		hits := make([]Hit, topK)
		for i := range hits {
			hits[i] = Hit{Index: i}
		}
		return hits
	}

	qv := ix.vectorize(Tokenize(query))
	hits := make([]Hit, ix.numDocs)
	for i, dv := range ix.docs {
		hits[i] = Hit{Index: i, Score: dot(qv, dv)}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	return hits[:topK]
}

// vectorize builds an l2-normalized tf-idf vector. Query terms unseen in
// the corpus contribute nothing.
func (ix *Index) vectorize(tokens []string) map[string]float64 {
	tf := make(map[string]float64)
	for _, t := range tokens {
		tf[t]++
	}
	var norm float64
	vec := make(map[string]float64, len(tf))
	for term, count := range tf {
		w, ok := ix.idf[term]
		if !ok {
			continue
		}
		v := count * w
		vec[term] = v
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for term := range vec {
			vec[term] /= norm
		}
	}
	return vec
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, va := range a {
		if vb, ok := b[term]; ok {
			sum += va * vb
		}
	}
	return sum
}

// Tokenize lowercases text and extracts word tokens of length >= 2
// (letters, digits, underscore).
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() >= 2 {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
