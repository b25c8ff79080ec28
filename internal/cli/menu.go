package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/couchcryptid/flight-delay-eda/internal/pipeline"
)

// PhaseRunner runs one pipeline phase.
type PhaseRunner interface {
	Run(ctx context.Context, phase pipeline.Phase) (*pipeline.Result, error)
}

// LineReader yields one line of user input per call.
type LineReader interface {
	Readline() (string, error)
}

var menuChoices = map[string]pipeline.Phase{
	"1": pipeline.PhaseLoad,
	"2": pipeline.PhaseClean,
	"3": pipeline.PhasePlot,
	"4": pipeline.PhaseAll,
	"5": pipeline.PhaseSmoke,
}

const menuHelp = `  1  Load raw data and print a column summary
  2  Clean and save the analysis table
  3  Plot charts from the cleaned table
  4  Run all phases
  5  Smoke test the sample or cleaned table
  h  Show this help
  q  Quit
`

// Menu runs phases chosen at a prompt. A failed phase is reported and the
// prompt comes back.
type Menu struct {
	runner PhaseRunner
	out    io.Writer
	errOut io.Writer
}

// NewMenu creates a Menu.
func NewMenu(runner PhaseRunner, out, errOut io.Writer) *Menu {
	return &Menu{runner: runner, out: out, errOut: errOut}
}

// Loop reads choices until q, end of input, or ctx is done.
func (m *Menu) Loop(ctx context.Context, in LineReader) error {
	_, _ = fmt.Fprintln(m.out, "Flight delay EDA")
	_, _ = fmt.Fprint(m.out, menuHelp)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := m.Dispatch(ctx, line); quit {
			return nil
		}
	}
}

// Dispatch handles one menu choice and reports whether the user asked to quit.
func (m *Menu) Dispatch(ctx context.Context, choice string) bool {
	choice = strings.ToLower(strings.TrimSpace(choice))
	switch choice {
	case "":
		return false
	case "q", "quit", "exit":
		return true
	case "h", "help", "?":
		_, _ = fmt.Fprint(m.out, menuHelp)
		return false
	}

	phase, ok := menuChoices[choice]
	if !ok {
		_, _ = fmt.Fprintf(m.errOut, "unknown choice %q\n", choice)
		_, _ = fmt.Fprint(m.out, menuHelp)
		return false
	}
	if _, err := m.runner.Run(ctx, phase); err != nil {
		_, _ = fmt.Fprintf(m.errOut, "Error: %v\n", err)
		return false
	}
	_, _ = fmt.Fprintf(m.out, "phase %s done\n", phase)
	return false
}

func runMenu(ctx context.Context, runner PhaseRunner, out, errOut io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "eda> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "q",
		Stdout:          out,
		Stderr:          errOut,
	})
	if err != nil {
		return fmt.Errorf("start menu: %w", err)
	}
	defer func() { _ = rl.Close() }()

	return NewMenu(runner, out, errOut).Loop(ctx, rl)
}
