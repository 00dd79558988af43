package domain

import "errors"

// ErrNoGenerator is returned when a node needs the generative model but none was configured.
var ErrNoGenerator = errors.New("generative model is not available")

// ErrNoEmbedder is returned when retrieval runs without an embedding client.
var ErrNoEmbedder = errors.New("embedding client is not available")

// ErrNoSearcher is returned when retrieval runs without a vector searcher.
var ErrNoSearcher = errors.New("vector searcher is not available")

// ErrMissingIndex is returned when the vector index identifiers are not configured.
var ErrMissingIndex = errors.New("vector search index identifiers are missing")

// ErrEmptyLookup signals that the schema lookup table holds no descriptions.
var ErrEmptyLookup = errors.New("schema lookup table is empty")

// ErrNoWarehouse is returned when a query is executed without a query engine.
var ErrNoWarehouse = errors.New("warehouse client is not available")

// ErrEmptyQuestion is returned by entry points that received only whitespace.
var ErrEmptyQuestion = errors.New("question is empty")
