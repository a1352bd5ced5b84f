// Package pipeline drives the middle end's A→B→C→D→E stages in order
// (Type Context, Symbol Resolver, Anvil builder+verifier, AST→Anvil
// lowering, Anvil→Low IR lowering), reporting progress and memoizing
// the resolved type/class tables across repeated same-input runs.
package pipeline

import (
	"crypto/sha256"
	"time"
)

// Digest is a content hash a caller computes over its own input (source
// bytes, a canonical AST encoding, whatever it already has on hand) and
// passes in as the cache key; the pipeline never hashes anything itself.
type Digest [32]byte

// HashBytes returns the SHA-256 digest of data, for callers with no
// content hash of their own yet.
func HashBytes(data []byte) Digest {
	var d Digest
	sum := sha256.Sum256(data)
	copy(d[:], sum[:])
	return d
}

// Stage names one phase of the middle end.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageLower   Stage = "lower"
	StageVerify  Stage = "verify"
	StageLowIR   Stage = "lowir"
)

// Status captures progress within a stage.
type Status string

const (
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusCached  Status = "cached"
)

// Event reports progress for one pipeline stage.
type Event struct {
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds per-stage durations for one Compile call.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Total sums every recorded stage duration.
func (t Timings) Total() time.Duration {
	var sum time.Duration
	for _, d := range t.stages {
		sum += d
	}
	return sum
}

func emitStage(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
