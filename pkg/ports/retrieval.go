package ports

import "context"

// IndexRef identifies the vector index to search.
type IndexRef struct {
	// Endpoint is the index endpoint (or table for database-backed indexes).
	Endpoint string
	// DeployedIndexID selects the deployed index behind the endpoint.
	DeployedIndexID string
}

// Valid reports whether both identifiers are present.
func (r IndexRef) Valid() bool {
	return r.Endpoint != "" && r.DeployedIndexID != ""
}

// Neighbor is a single nearest-neighbor match.
type Neighbor struct {
	ID string
	// Distance is smaller for closer matches.
	Distance float64
}

// VectorSearcher returns the k nearest fragments to a vector, closest first.
type VectorSearcher interface {
	Search(ctx context.Context, index IndexRef, vector []float32, k int) ([]Neighbor, error)
}

// SchemaLookup resolves fragment ids to their descriptions.
type SchemaLookup interface {
	Description(id string) (string, bool)
	Len() int
}
