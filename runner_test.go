package querent_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/pkg/domain"
)

type fakeAsker struct {
	asked []string
	fn    func(q string) (domain.State, error)
}

func (f *fakeAsker) Ask(_ context.Context, q string) (domain.State, error) {
	f.asked = append(f.asked, q)
	return f.fn(q)
}

func echo() *fakeAsker {
	return &fakeAsker{fn: func(q string) (domain.State, error) {
		return domain.State{Question: q, FinalResponse: "answer to " + q}, nil
	}}
}

func TestRunner_RunLoop(t *testing.T) {
	var out bytes.Buffer
	agent := echo()
	r := querent.NewRunner(strings.NewReader("first\n\n   \nsecond\nQuIt\nnever\n"), &out)

	require.NoError(t, r.Run(context.Background(), agent))

	assert.Equal(t, []string{"first", "second"}, agent.asked)
	assert.Contains(t, out.String(), "Enter your question (or type 'quit' to exit):")
	assert.Contains(t, out.String(), "Agent Response:\nanswer to first")
	assert.Contains(t, out.String(), "Agent Response:\nanswer to second")
}

func TestRunner_RunStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	agent := echo()
	r := querent.NewRunner(strings.NewReader("last question without newline"), &out)
	r.Headless = true

	require.NoError(t, r.Run(context.Background(), agent))

	assert.Equal(t, []string{"last question without newline"}, agent.asked)
	assert.Equal(t, "answer to last question without newline\n", out.String())
}

func TestRunner_RunReportsFailuresAndContinues(t *testing.T) {
	var out bytes.Buffer
	agent := &fakeAsker{fn: func(q string) (domain.State, error) {
		switch q {
		case "panic":
			return domain.State{}, errors.New("node exploded")
		case "bad":
			return domain.State{ErrorMessage: "Query execution failed"}, nil
		case "silent":
			return domain.State{Question: q}, nil
		}
		return domain.State{FinalResponse: "ok"}, nil
	}}
	r := querent.NewRunner(strings.NewReader("panic\nbad\nsilent\ngood\n"), &out)

	require.NoError(t, r.Run(context.Background(), agent))

	assert.Contains(t, out.String(), "An unexpected error occurred: node exploded")
	assert.Contains(t, out.String(), "Agent Error: Query execution failed")
	assert.Contains(t, out.String(), "Agent Response:\n"+querent.NoFinalResponse)
	assert.Contains(t, out.String(), "Agent Response:\nok")
}

func TestRunner_Once(t *testing.T) {
	var out bytes.Buffer
	r := querent.NewRunner(nil, &out)
	r.Renderer = func(s string) (string, error) { return "**" + s + "**", nil }

	require.NoError(t, r.Once(context.Background(), echo(), "How many stores?"))
	assert.Contains(t, out.String(), "Processing question: How many stores?")
	assert.Contains(t, out.String(), "**answer to How many stores?**")

	out.Reset()
	failing := &fakeAsker{fn: func(string) (domain.State, error) { return domain.State{}, errors.New("boom") }}
	err := r.Once(context.Background(), failing, "q")
	assert.Error(t, err)
	assert.Contains(t, out.String(), "An unexpected error occurred during agent execution: boom")
}

func TestRunner_RequiresIO(t *testing.T) {
	assert.Error(t, (&querent.Runner{}).Run(context.Background(), echo()))
	assert.Error(t, (&querent.Runner{}).Once(context.Background(), echo(), "q"))
}
