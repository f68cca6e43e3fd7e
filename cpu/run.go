package cpu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// DefaultMaxOps is the number of steps a run executes unless stopped earlier.
const DefaultMaxOps = 20

// DefaultPromptAfter is the number of steps executed before the run starts
// asking whether to continue.
const DefaultPromptAfter = 5

// A Continuer decides whether a run goes on after a step. A Continuer that
// waits for an answer gives up when the context is done.
type Continuer interface {
	Continue(ctx context.Context) bool
}

// AlwaysContinue never stops a run.
type AlwaysContinue struct{}

// Continue returns true.
func (AlwaysContinue) Continue(context.Context) bool {
	return true
}

// ConsoleContinuer asks a person whether to continue.
type ConsoleContinuer struct {
	in  io.Reader
	out io.Writer

	startReading sync.Once
	lines        chan string
}

// NewConsoleContinuer creates a ConsoleContinuer that prompts on out and reads
// answers from in.
func NewConsoleContinuer(in io.Reader, out io.Writer) *ConsoleContinuer {
	return &ConsoleContinuer{
		in:    in,
		out:   out,
		lines: make(chan string),
	}
}

// Continue prompts for an answer. "n" and "no" stop the run, in any case. The
// run also stops when the input is exhausted or the context is done.
func (c *ConsoleContinuer) Continue(ctx context.Context) bool {
	fmt.Fprint(c.out, "\nContinue simulation? (y/n): ")

	c.startReading.Do(func() { go c.readLines() })

	select {
	case <-ctx.Done():
		return false
	case line, ok := <-c.lines:
		if !ok {
			return false
		}

		answer := strings.ToLower(strings.TrimSpace(line))

		return answer != "n" && answer != "no"
	}
}

// readLines forwards the input line by line. A line read after the prompt
// was abandoned answers the next prompt.
func (c *ConsoleContinuer) readLines() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}

	close(c.lines)
}

// RunOptions controls a run.
type RunOptions struct {
	// MaxOps is the largest number of steps to execute.
	MaxOps int

	// PromptAfter is the zero-based index of the first step after which the
	// Continuer is consulted.
	PromptAfter int

	Continuer Continuer

	// OnStep, if set, is called after every step.
	OnStep func(StepResult)
}

// Run executes steps until MaxOps is reached, the Continuer says stop, or the
// context is cancelled. It returns the number of steps executed in this run.
func (c *Core) Run(ctx context.Context, opts RunOptions) (int, error) {
	continuer := opts.Continuer
	if continuer == nil {
		continuer = AlwaysContinue{}
	}

	executed := 0
	for executed < opts.MaxOps {
		if err := ctx.Err(); err != nil {
			return executed, err
		}

		res := c.Step()
		if opts.OnStep != nil {
			opts.OnStep(res)
		}

		executed++

		if executed-1 >= opts.PromptAfter && executed < opts.MaxOps {
			if !continuer.Continue(ctx) {
				if err := ctx.Err(); err != nil {
					return executed, err
				}

				c.log.Info().Int("steps", executed).Msg("simulation stopped by user")
				break
			}
		}
	}

	return executed, nil
}
