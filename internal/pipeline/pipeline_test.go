package pipeline_test

import (
	"context"
	"os"
	"testing"

	"ember/internal/ast"
	"ember/internal/layout"
	"ember/internal/pipeline"
)

func TestCompile_EmptyProgramRunsEveryStage(t *testing.T) {
	var events []pipeline.Event
	sink := recordingSink{events: &events}

	result, err := pipeline.Compile(context.Background(), &pipeline.CompileRequest{
		Program:  &ast.Program{},
		Target:   layout.Host64,
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("expected Compile to succeed on an empty program, got %v", err)
	}
	if result.LowIR == nil {
		t.Fatalf("expected a Low IR module")
	}
	if result.FromCache {
		t.Fatalf("expected a cold run, not a cache hit")
	}

	wantStages := []pipeline.Stage{pipeline.StageResolve, pipeline.StageLower, pipeline.StageVerify, pipeline.StageLowIR}
	for _, stage := range wantStages {
		found := false
		for _, ev := range events {
			if ev.Stage == stage && ev.Status == pipeline.StatusDone {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a StatusDone event for stage %q", stage)
		}
	}
}

func TestCompile_CacheHitSkipsResolveLowerVerify(t *testing.T) {
	cache := pipeline.NewModuleCache(4)
	digest := pipeline.HashBytes([]byte("same program, twice"))

	first, err := pipeline.Compile(context.Background(), &pipeline.CompileRequest{
		Program: &ast.Program{},
		Target:  layout.Host64,
		Digest:  digest,
		Cache:   cache,
	})
	if err != nil {
		t.Fatalf("first compile failed: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first compile should not be a cache hit")
	}

	var events []pipeline.Event
	sink := recordingSink{events: &events}
	second, err := pipeline.Compile(context.Background(), &pipeline.CompileRequest{
		Program:  &ast.Program{},
		Target:   layout.Host64,
		Digest:   digest,
		Cache:    cache,
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("second compile failed: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second compile should have hit the cache")
	}
	for _, ev := range events {
		if ev.Stage == pipeline.StageResolve && ev.Status != pipeline.StatusCached {
			t.Errorf("expected resolve to report cached, got %v", ev.Status)
		}
	}
}

func TestHistory_RoundTripsBuildRecord(t *testing.T) {
	dir, err := os.MkdirTemp("", "ember-history-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	hist, err := pipeline.OpenHistory(dir)
	if err != nil {
		t.Fatalf("OpenHistory failed: %v", err)
	}

	digest := pipeline.HashBytes([]byte("history record"))
	want := pipeline.BuildRecord{Ok: true, ResolveMS: 1, LowerMS: 2, VerifyMS: 3, LowIRMS: 4}
	if err := hist.Put(digest, want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := hist.Get(digest)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected a record for digest")
	}
	if got.Ok != want.Ok || got.ResolveMS != want.ResolveMS || got.LowIRMS != want.LowIRMS {
		t.Fatalf("round-tripped record mismatch: got %+v, want %+v", got, want)
	}
}

type recordingSink struct {
	events *[]pipeline.Event
}

func (s recordingSink) OnEvent(ev pipeline.Event) {
	*s.events = append(*s.events, ev)
}
