package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// reporter receives per-input progress from concurrent workers.
type reporter interface {
	start(i int)
	finish(i int, detail string, err error)
	// close waits for the display to settle. It returns an error when the
	// user interrupted the display.
	close() error
}

// newReporter picks a live view on a terminal and log lines otherwise.
// Debug logging always uses log lines so the two do not interleave.
func newReporter(ctx context.Context, logger *log.Logger, names []string, cancel context.CancelFunc) reporter {
	if !interactive() || logger.GetLevel() <= log.DebugLevel {
		return &logReporter{logger: logger, names: names}
	}
	if len(names) == 1 {
		return newSpinnerReporter(ctx, names[0])
	}
	return newTeaReporter(ctx, names, cancel)
}

// interactive reports whether stderr is a terminal.
func interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// =============================================================================
// Log lines
// =============================================================================

type logReporter struct {
	logger *log.Logger
	names  []string
}

func (r *logReporter) start(i int) {
	r.logger.Infof("Processing %s", r.names[i])
}

func (r *logReporter) finish(i int, detail string, err error) {
	if err != nil {
		r.logger.Error("extract failed", "image", r.names[i], "err", err)
		return
	}
	r.logger.Debug("extracted", "image", r.names[i], "result", detail)
}

func (r *logReporter) close() error { return nil }

// =============================================================================
// Spinner (single input)
// =============================================================================

type spinnerReporter struct {
	spinner *Spinner
}

func newSpinnerReporter(ctx context.Context, name string) *spinnerReporter {
	return &spinnerReporter{spinner: newSpinnerWithContext(ctx, fmt.Sprintf("Extracting %s...", name))}
}

func (r *spinnerReporter) start(int) { r.spinner.Start() }

func (r *spinnerReporter) finish(int, string, error) { r.spinner.Stop() }

func (r *spinnerReporter) close() error { return nil }

// =============================================================================
// Bubbletea (batch)
// =============================================================================

type teaReporter struct {
	program *tea.Program
	wg      sync.WaitGroup
	model   tea.Model
	err     error
}

func newTeaReporter(ctx context.Context, names []string, cancel context.CancelFunc) *teaReporter {
	r := &teaReporter{
		program: tea.NewProgram(NewBatchModel(names, cancel),
			tea.WithContext(ctx),
			tea.WithOutput(os.Stderr)),
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.model, r.err = r.program.Run()
	}()
	return r
}

func (r *teaReporter) start(i int) {
	r.program.Send(fileUpdateMsg{index: i, state: stateRunning, detail: "extracting"})
}

func (r *teaReporter) finish(i int, detail string, err error) {
	if err != nil {
		r.program.Send(fileUpdateMsg{index: i, state: stateFailed, detail: err.Error()})
		return
	}
	r.program.Send(fileUpdateMsg{index: i, state: stateDone, detail: detail})
}

func (r *teaReporter) close() error {
	r.program.Send(batchDoneMsg{})
	r.wg.Wait()
	return batchOutcome(r.model, r.err)
}

// batchOutcome maps the result of the progress program onto the batch: an
// interrupt becomes context.Canceled, any other program failure is returned.
func batchOutcome(model tea.Model, err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if err != nil {
		return fmt.Errorf("progress view: %w", err)
	}
	if m, ok := model.(BatchModel); ok && !m.finished {
		return context.Canceled
	}
	return nil
}
