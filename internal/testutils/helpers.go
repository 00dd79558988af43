package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to name inside a fresh temp dir and returns the
// absolute path. It fails the test immediately on error.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path, err := filepath.Abs(filepath.Join(t.TempDir(), name))
	require.NoError(t, err, "Failed to get absolute path for temp file")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write temp file")
	return path
}

// SchemaLookupJSON is a lookup document describing the three sales tables.
const SchemaLookupJSON = `[
  {"id": "stores", "description": "Table stores: store_id INT64, store_name STRING, city STRING, country STRING"},
  {"id": "products", "description": "Table products: product_id INT64, product_name STRING, category STRING, price FLOAT64"},
  {"id": "sales", "description": "Table sales_transactions: transaction_id INT64, store_id INT64 FOREIGN KEY stores, product_id INT64 FOREIGN KEY products, quantity INT64, total_amount FLOAT64"}
]`
