package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/querent/internal/logging"
)

// Lookup maps schema fragment ids to their descriptions. It is read-only
// after loading and safe for concurrent use.
type Lookup struct {
	descriptions map[string]string
}

// NewLookup builds a lookup from a map. The map is copied.
func NewLookup(m map[string]string) *Lookup {
	l := &Lookup{descriptions: make(map[string]string, len(m))}
	for k, v := range m {
		l.descriptions[k] = v
	}
	return l
}

// Description returns the description of a fragment.
func (l *Lookup) Description(id string) (string, bool) {
	if l == nil {
		return "", false
	}
	d, ok := l.descriptions[id]
	return d, ok
}

// Len returns the number of fragments.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.descriptions)
}

// IDs returns the fragment ids in sorted order.
func (l *Lookup) IDs() []string {
	if l == nil {
		return nil
	}
	ids := make([]string, 0, len(l.descriptions))
	for id := range l.descriptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadLookup decodes a JSON array of {"id": ..., "description": ...} objects.
// Items that are not objects or lack an id or description are skipped, and a
// duplicate id overwrites the earlier description. Extra fields are ignored.
func LoadLookup(r io.Reader, logger *slog.Logger) (*Lookup, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode schema lookup: %w", err)
	}

	l := &Lookup{descriptions: make(map[string]string, len(items))}
	for i, raw := range items {
		var item struct {
			ID          string `json:"id"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Warn("skipping malformed schema item", "index", i, "error", err)
			continue
		}
		if item.ID == "" {
			logger.Warn("skipping schema item without id", "index", i)
			continue
		}
		if item.Description == "" {
			logger.Warn("skipping schema item without description", "id", item.ID)
			continue
		}
		if _, dup := l.descriptions[item.ID]; dup {
			logger.Warn("duplicate schema id, overwriting", "id", item.ID)
		}
		l.descriptions[item.ID] = item.Description
	}

	if l.Len() == 0 && len(items) > 0 {
		logger.Error("schema lookup is empty after processing, check id and description fields", "items", len(items))
	}
	logger.Debug("schema lookup loaded", "entries", l.Len())
	return l, nil
}

// Opener opens a resource by URI (local path or object store URI).
type Opener func(ctx context.Context, uri string) (io.ReadCloser, error)

// LoadLookupFrom opens uri and decodes it with LoadLookup.
func LoadLookupFrom(ctx context.Context, open Opener, uri string, logger *slog.Logger) (*Lookup, error) {
	rc, err := open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("open schema lookup %s: %w", uri, err)
	}
	defer rc.Close()
	return LoadLookup(rc, logger)
}
