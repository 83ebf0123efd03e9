package model

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Snippet is one retrievable piece of portfolio content.
type Snippet struct {
	Kind  string
	Title string
	Url   string
	Text  string
	Tags  string
}

type CorpusFunc func(ctx context.Context) ([]Snippet, error)

// Retriever ranks snippets for a question. The index is rebuilt lazily once it is older
// than ttl or after Invalidate; a failed rebuild keeps serving the previous index.
type Retriever struct {
	corpus CorpusFunc
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	index    *bm25Index
	snippets []Snippet
	builtAt  time.Time
	stale    bool
}

func NewRetriever(corpus CorpusFunc, ttl time.Duration) *Retriever {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Retriever{corpus: corpus, ttl: ttl, now: time.Now, stale: true}
}

func (r *Retriever) Invalidate() {
	r.mu.Lock()
	r.stale = true
	r.mu.Unlock()
}

func (r *Retriever) Search(ctx context.Context, query string, k int) []Snippet {
	index, snippets := r.current(ctx)
	if index == nil {
		return nil
	}

	hits := index.search(query, k)
	res := make([]Snippet, 0, len(hits))
	for _, h := range hits {
		res = append(res, snippets[h.doc])
	}
	return res
}

func (r *Retriever) current(ctx context.Context) (*bm25Index, []Snippet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index != nil && !r.stale && r.now().Sub(r.builtAt) < r.ttl {
		return r.index, r.snippets
	}

	snippets, err := r.corpus(ctx)
	if err != nil {
		zap.L().Warn("error building chat corpus, keeping previous index", zap.Error(err))
		return r.index, r.snippets
	}

	docs := make([]indexDoc, len(snippets))
	for i, s := range snippets {
		docs[i] = indexDoc{fields: []field{
			{text: s.Title, weight: 3},
			{text: s.Tags, weight: 2},
			{text: s.Text, weight: 1},
		}}
	}

	r.index = newBM25Index(docs)
	r.snippets = snippets
	r.builtAt = r.now()
	r.stale = false

	zap.L().Debug("chat corpus indexed", zap.Int("snippets", len(snippets)))

	return r.index, r.snippets
}
