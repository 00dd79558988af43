package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Regexp(t, `^querent version \d+\.\d+\.\d+\n$`, execute(t, "version"))
}

func TestGraphCommand(t *testing.T) {
	out := execute(t, "graph")
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "sanitize_prompt")
}

func TestRootAcceptsBareQuestion(t *testing.T) {
	cmd, args, err := rootCmd.Find([]string{"How", "many", "stores?"})
	require.NoError(t, err)
	assert.Equal(t, rootCmd, cmd)
	assert.Equal(t, []string{"How", "many", "stores?"}, args)
}
