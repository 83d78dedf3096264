package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/w-h-a/ragchat/retriever"
)

type record struct {
	id        string
	document  retriever.Document
	embedding []float32
}

// seed is one entry of a JSON seed file.
type seed struct {
	Source    string    `json:"source"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

type memoryRetriever struct {
	options retriever.Options
	records []record
	mtx     sync.RWMutex
}

// Match mirrors match_documents: similarity is cosine similarity, rows must
// score strictly above the threshold, and the best Count rows are returned.
func (r *memoryRetriever) Match(ctx context.Context, vector []float32, opts ...retriever.MatchOption) ([]retriever.Document, error) {
	options := retriever.NewMatchOptions(opts...)

	if options.Count < 1 {
		return []retriever.Document{}, nil
	}

	r.mtx.RLock()
	defer r.mtx.RUnlock()

	candidates := make([]retriever.Document, 0, len(r.records))

	for _, rec := range r.records {
		score := CosineSimilarity(vector, rec.embedding)
		if score <= options.Threshold {
			continue
		}
		doc := rec.document
		doc.Similarity = score
		candidates = append(candidates, doc)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if len(candidates) > options.Count {
		candidates = candidates[:options.Count]
	}

	return candidates, nil
}

func (r *memoryRetriever) Add(source string, content string, vector []float32) string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	cpy := make([]float32, len(vector))
	copy(cpy, vector)

	id := uuid.New().String()

	r.records = append(r.records, record{
		id:        id,
		document:  retriever.Document{Source: source, Content: content},
		embedding: cpy,
	})

	return id
}

// Load adds every document of a JSON array of {source, content, embedding}.
func (r *memoryRetriever) Load(reader io.Reader) (int, error) {
	var seeds []seed
	if err := json.NewDecoder(reader).Decode(&seeds); err != nil {
		return 0, fmt.Errorf("failed to decode seed documents: %w", err)
	}

	for i, s := range seeds {
		if len(s.Embedding) == 0 {
			return 0, fmt.Errorf("seed document %d has no embedding", i)
		}
	}

	for _, s := range seeds {
		r.Add(s.Source, s.Content, s.Embedding)
	}

	return len(seeds), nil
}

func (r *memoryRetriever) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return len(r.records)
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func NewRetriever(opts ...retriever.Option) *memoryRetriever {
	options := retriever.NewOptions(opts...)

	r := &memoryRetriever{
		options: options,
		records: []record{},
		mtx:     sync.RWMutex{},
	}

	return r
}
