package tui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/querent/internal/presentation/tui"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), `"quit"`)
}

func TestRendererFor_File(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, tui.IsInteractive(f))
	out, err := tui.RendererFor(f)("**There are 2 stores.**")
	require.NoError(t, err)
	assert.Equal(t, "**There are 2 stores.**", out)
}

func TestNewRenderer(t *testing.T) {
	out, err := tui.NewRenderer()("There are **2** stores.")
	require.NoError(t, err)
	assert.Contains(t, out, "stores")
}
