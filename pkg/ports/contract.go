package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunVectorSearcherContract verifies that a VectorSearcher seeded with the
// fragments "stores", "products" and "sales" (unit vectors on the first three
// axes) adheres to the interface contract.
func RunVectorSearcherContract(t *testing.T, searcher VectorSearcher, index IndexRef) {
	ctx := context.Background()

	t.Run("Nearest First", func(t *testing.T) {
		got, err := searcher.Search(ctx, index, []float32{0.9, 0.1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "stores", got[0].ID)
		assert.Equal(t, "products", got[1].ID)
		assert.LessOrEqual(t, got[0].Distance, got[1].Distance)
	})

	t.Run("K Larger Than Index", func(t *testing.T) {
		got, err := searcher.Search(ctx, index, []float32{0, 0, 1}, 10)
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, "sales", got[0].ID)
	})
}

// RunQueryEngineContract verifies that a QueryEngine seeded with a table
// "stores(store_id, city)" holding the rows (1, 'Singapore') and (2, 'Jakarta')
// adheres to the interface contract.
func RunQueryEngineContract(t *testing.T, engine QueryEngine) {
	ctx := context.Background()

	t.Run("Ordered Columns", func(t *testing.T) {
		rows, err := engine.Run(ctx, "SELECT city, store_id FROM stores ORDER BY store_id")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"city", "store_id"}, rows[0].Columns)
		city, ok := rows[0].Get("city")
		require.True(t, ok)
		assert.Equal(t, "Singapore", city)
	})

	t.Run("Empty Result Is Not Nil", func(t *testing.T) {
		rows, err := engine.Run(ctx, "SELECT city FROM stores WHERE store_id = 99")
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("Invalid Statement", func(t *testing.T) {
		_, err := engine.Run(ctx, "SELECT nope FROM missing_table")
		assert.Error(t, err)
	})
}
