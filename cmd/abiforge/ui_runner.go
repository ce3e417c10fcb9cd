package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"abiforge/internal/driver"
	"abiforge/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.TrimSpace(strings.ToLower(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI enables the progress view in auto mode only for multi-unit
// builds on a terminal.
func shouldUseTUI(mode uiMode, units int) bool {
	if mode == uiModeAuto {
		return units > 1 && isTerminal(os.Stdout)
	}
	return mode == uiModeOn
}

type buildOutcome struct {
	results []*driver.Result
	err     error
}

// runBuildWithUI runs driver.RunAll in the background and renders its phase
// events until every unit finished.
func runBuildWithUI(ctx context.Context, title string, paths []string, opts driver.Options, jobs int) ([]*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Observer = func(ev driver.PhaseEvent) { events <- ev }
		res, err := driver.RunAll(ctx, paths, optsCopy, jobs)
		outcomeCh <- buildOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
