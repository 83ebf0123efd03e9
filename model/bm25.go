package model

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Okapi BM25 with the usual parameters.
const (
	bm25K1      = 1.2
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// stop words that would otherwise dominate short chat questions
var stopWords = map[string]bool{
	"the": true, "and": true, "are": true, "you": true, "your": true, "what": true,
	"how": true, "does": true, "did": true, "have": true, "has": true, "with": true,
	"for": true, "about": true, "tell": true, "me": true, "is": true, "of": true,
	"to": true, "in": true, "on": true, "do": true, "can": true, "an": true,
}

type field struct {
	text   string
	weight int
}

type indexDoc struct {
	fields []field
}

type scoredDoc struct {
	doc   int
	score float64
}

// bm25Index is immutable once built and safe for concurrent reads.
type bm25Index struct {
	termFreqs []map[string]int
	lengths   []int
	avgLength float64
	idf       map[string]float64
}

func newBM25Index(docs []indexDoc) *bm25Index {
	idx := &bm25Index{
		termFreqs: make([]map[string]int, len(docs)),
		lengths:   make([]int, len(docs)),
		idf:       map[string]float64{},
	}

	docFreq := map[string]int{}
	total := 0

	for i, d := range docs {
		// a field's tokens are repeated weight times, which is cheaper than per-field BM25
		var tokens []string
		for _, f := range d.fields {
			ft := tokenize(f.text)
			for w := 0; w < f.weight; w++ {
				tokens = append(tokens, ft...)
			}
		}

		tf := map[string]int{}
		for _, tok := range tokens {
			if tf[tok] == 0 {
				docFreq[tok]++
			}
			tf[tok]++
		}
		idx.termFreqs[i] = tf
		idx.lengths[i] = len(tokens)
		total += len(tokens)
	}

	if len(docs) > 0 {
		idx.avgLength = float64(total) / float64(len(docs))
	}

	n := float64(len(docs))
	for term, df := range docFreq {
		v := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
		if v < 0 {
			v = bm25Epsilon
		}
		idx.idf[term] = v
	}

	return idx
}

// search returns document positions with a positive score, best first.
func (idx *bm25Index) search(query string, limit int) []scoredDoc {
	terms := tokenize(query)
	if len(terms) == 0 || idx.avgLength == 0 {
		return nil
	}

	var hits []scoredDoc
	for i, tf := range idx.termFreqs {
		var score float64
		dl := float64(idx.lengths[i])
		for _, term := range terms {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			score += idx.idf[term] * f * (bm25K1 + 1) / (f + bm25K1*(1-bm25B+bm25B*dl/idx.avgLength))
		}
		if score > 0 {
			hits = append(hits, scoredDoc{doc: i, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func tokenize(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	res := words[:0]
	for _, w := range words {
		if len(w) < 2 || stopWords[w] {
			continue
		}
		res = append(res, w)
	}
	return res
}
