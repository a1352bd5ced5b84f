package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ember/internal/pipeline"
	"ember/internal/ui"
)

type compileOutcome struct {
	result pipeline.CompileResult
	err    error
}

// runCompileWithUI drives pipeline.Compile on its own goroutine while a
// bubbletea program renders its stage events in the foreground, the way
// the teacher's ui_runner.go drives buildpipeline.Build.
func runCompileWithUI(ctx context.Context, title string, req *pipeline.CompileRequest) (pipeline.CompileResult, error) {
	if req == nil {
		return pipeline.CompileResult{}, fmt.Errorf("missing compile request")
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Compile(ctx, &reqCopy)
		outcomeCh <- compileOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
