package main

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"stitch/internal/repair"
	"stitch/internal/ui"
)

type repairOutcome struct {
	result *repair.Result
	err    error
}

// runRepairWithUI runs the repair loop in a goroutine and renders its event
// stream with Bubble Tea until the loop finishes.
func runRepairWithUI(cmd *cobra.Command, opts repair.Options, maxIter int) (*repair.Result, error) {
	events := make(chan repair.Event, 256)
	outcomeCh := make(chan repairOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		res, err := repair.Run(cmd.Context(), optsCopy)
		outcomeCh <- repairOutcome{result: res, err: err}
		close(events)
	}()

	title := "repair " + filepath.Base(opts.Target)
	model := ui.NewRepairModel(title, maxIter, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
