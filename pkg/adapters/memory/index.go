// Package memory provides an in-process vector index for local runs and tests.
package memory

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/querent/pkg/ports"
)

// ErrDimensionMismatch is returned when vectors of different sizes are compared.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

type entry struct {
	id     string
	vector []float32
	norm   float64
}

// Index implements ports.VectorSearcher with brute-force cosine distance.
// The IndexRef passed to Search is ignored: an Index holds a single index.
// Safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]entry)}
}

// Add inserts or replaces a vector.
func (x *Index) Add(id string, vector []float32) {
	v := append([]float32(nil), vector...)
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[id] = entry{id: id, vector: v, norm: norm(v)}
}

// Len returns the number of vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Search returns the k entries closest to vector, closest first. Ties are
// broken by id.
func (x *Index) Search(ctx context.Context, _ ports.IndexRef, vector []float32, k int) ([]ports.Neighbor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qn := norm(vector)

	x.mu.RLock()
	out := make([]ports.Neighbor, 0, len(x.entries))
	for _, e := range x.entries {
		if len(e.vector) != len(vector) {
			x.mu.RUnlock()
			return nil, fmt.Errorf("%w: index %d, query %d", ErrDimensionMismatch, len(e.vector), len(vector))
		}
		out = append(out, ports.Neighbor{ID: e.id, Distance: cosineDistance(e.vector, vector, e.norm, qn)})
	}
	x.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

func cosineDistance(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot/(na*nb)
}

// LoadJSONL reads one {"id": ..., "embedding": [...]} object per line.
// Blank lines are skipped.
func LoadJSONL(r io.Reader) (*Index, error) {
	x := NewIndex()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var rec struct {
			ID        string    `json:"id"`
			Embedding []float32 `json:"embedding"`
		}
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if rec.ID == "" || len(rec.Embedding) == 0 {
			return nil, fmt.Errorf("line %d: id and embedding are required", line)
		}
		x.Add(rec.ID, rec.Embedding)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return x, nil
}

var _ ports.VectorSearcher = (*Index)(nil)
