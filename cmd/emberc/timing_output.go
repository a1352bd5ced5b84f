package main

import (
	"fmt"
	"io"
	"time"

	"ember/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	stages := []pipeline.Stage{
		pipeline.StageResolve,
		pipeline.StageLower,
		pipeline.StageVerify,
		pipeline.StageLowIR,
	}
	for _, stage := range stages {
		d := timings.Duration(stage)
		if d == 0 {
			continue
		}
		fmt.Fprintf(out, "%-8s %.1f ms\n", stage, toMillis(d))
	}
	fmt.Fprintf(out, "total    %.1f ms\n", toMillis(timings.Total()))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
