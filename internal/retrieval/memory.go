package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryKey struct {
	project string
	bidder  string
	corpus  Corpus
}

// Memory is an in-memory retriever over pre-chunked passages, ranked by
// rune-bigram overlap with the query. Good enough for offline audits and
// tests; production retrieval lives behind Client.
type Memory struct {
	mu     sync.RWMutex
	chunks map[memoryKey][]Passage
}

// NewMemory returns an empty in-memory retriever.
func NewMemory() *Memory {
	return &Memory{chunks: make(map[memoryKey][]Passage)}
}

// Add indexes a passage. Tender-corpus passages are shared across bidders,
// so bidder is ignored for CorpusTender.
func (m *Memory) Add(projectID, bidder string, corpus Corpus, p Passage) {
	if corpus == CorpusTender {
		bidder = ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{projectID, bidder, corpus}
	m.chunks[k] = append(m.chunks[k], p)
}

// Retrieve implements Retriever.
func (m *Memory) Retrieve(_ context.Context, q Query) ([]Passage, error) {
	bidder := q.Bidder
	if q.Corpus == CorpusTender {
		bidder = ""
	}
	m.mu.RLock()
	pool := m.chunks[memoryKey{q.ProjectID, bidder, q.Corpus}]
	m.mu.RUnlock()
	if len(pool) == 0 {
		return nil, nil
	}

	queryGrams := bigrams(q.Text)
	type scored struct {
		p     Passage
		score float64
	}
	var ranked []scored
	for _, p := range pool {
		s := overlap(queryGrams, bigrams(p.Quote))
		if s <= 0 {
			continue
		}
		sp := p
		sp.Score = s
		ranked = append(ranked, scored{sp, s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	out := make([]Passage, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.p)
	}
	return out, nil
}

// bigrams tokenizes text into rune bigrams, which works for unsegmented
// Chinese as well as for whitespace languages.
func bigrams(text string) map[string]struct{} {
	runes := []rune(strings.ToLower(strings.TrimSpace(text)))
	out := make(map[string]struct{})
	for i := 0; i+1 < len(runes); i++ {
		out[string(runes[i:i+2])] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	for g := range a {
		if _, ok := b[g]; ok {
			n++
		}
	}
	return float64(n) / float64(len(a))
}
