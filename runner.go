package querent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/querent/pkg/domain"
)

// NoFinalResponse is printed when a run ends without an answer or an error.
const NoFinalResponse = "Agent finished without a final response."

// Asker answers questions. *Agent implements it.
type Asker interface {
	Ask(ctx context.Context, question string) (domain.State, error)
}

// ContentRenderer transforms an answer before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Runner handles the question loop of the CLI using provided IO.
type Runner struct {
	Input  io.Reader
	Output io.Writer
	// Headless drops headers, prompts and labels: only answers are written.
	Headless bool
	Renderer ContentRenderer
}

// NewRunner creates a Runner writing to out and reading from in.
func NewRunner(in io.Reader, out io.Writer) *Runner {
	return &Runner{Input: in, Output: out}
}

// Once answers a single question.
func (r *Runner) Once(ctx context.Context, agent Asker, question string) error {
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if !r.Headless {
		fmt.Fprintln(r.Output, "--- Querent ---")
		fmt.Fprintf(r.Output, "Processing question: %s\n", question)
	}

	state, err := agent.Ask(ctx, question)
	if err != nil {
		fmt.Fprintf(r.Output, "\nAn unexpected error occurred during agent execution: %v\n", err)
		return err
	}
	r.print(state)
	return nil
}

// Run reads questions line by line until "quit" (any case) or end of input.
// Blank lines are skipped. A failed run is reported and the loop goes on.
func (r *Runner) Run(ctx context.Context, agent Asker) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lines := bufio.NewReader(r.Input)

	if !r.Headless {
		fmt.Fprintln(r.Output, "Enter your question (or type 'quit' to exit):")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lines.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		eof := err != nil

		question := strings.TrimSpace(text)
		switch {
		case strings.EqualFold(question, "quit"):
			return nil
		case question == "":
			if eof {
				return nil
			}
			continue
		}

		state, askErr := agent.Ask(ctx, question)
		if askErr != nil {
			fmt.Fprintf(r.Output, "\nAn unexpected error occurred: %v\n\n", askErr)
		} else {
			r.print(state)
		}
		if eof {
			return nil
		}
	}
}

func (r *Runner) print(state domain.State) {
	if state.FinalResponse == "" && state.ErrorMessage != "" {
		if r.Headless {
			fmt.Fprintln(r.Output, state.ErrorMessage)
			return
		}
		fmt.Fprintf(r.Output, "Agent Error: %s\n\n", state.ErrorMessage)
		return
	}

	answer := state.Answer()
	if strings.TrimSpace(answer) == "" {
		answer = NoFinalResponse
	}
	if r.Renderer != nil {
		if rendered, err := r.Renderer(answer); err == nil {
			answer = rendered
		}
	}
	answer = strings.TrimSpace(answer)
	if r.Headless {
		fmt.Fprintln(r.Output, answer)
		return
	}
	fmt.Fprintf(r.Output, "Agent Response:\n%s\n\n", answer)
}
