/*
Package ports defines the driven ports (interfaces) of the querent agent.

These interfaces decouple the workflow nodes from the platforms they call, so the
generative model, the vector index, the warehouse and the content sanitizer can be
swapped for other backends or test fakes.

# Key Interfaces

  - Generator: Generative text call (prompt in, text out).
  - Embedder: Maps text into the vector space of the schema fragments.
  - VectorSearcher: Nearest-neighbor search over precomputed embeddings.
  - SchemaLookup: Resolves fragment ids to schema descriptions.
  - QueryEngine: Runs read-only SQL and returns ordered rows.
  - Sanitizer: Inspects and rewrites prompts and responses.
*/
package ports
