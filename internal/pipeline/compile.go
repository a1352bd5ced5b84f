package pipeline

import (
	"context"
	"fmt"
	"time"

	"ember/internal/anvil"
	"ember/internal/ast"
	"ember/internal/diag"
	"ember/internal/erasure"
	"ember/internal/layout"
	"ember/internal/lower"
	"ember/internal/lowir"
	"ember/internal/resolve"
	"ember/internal/source"
	"ember/internal/types"
)

// CompileRequest configures one run of the middle end over an already
// parsed AST (component A's resolver populates Types in place; there is
// no text-parsing stage in this package).
type CompileRequest struct {
	Program  *ast.Program
	Types    *types.Interner
	Strings  *source.Interner
	Target   layout.Target
	Report   diag.Reporter
	Progress ProgressSink

	// Digest, if non-zero, is the caller's content hash for Program.
	// A hit in Cache short-circuits resolve+lower+verify and reuses the
	// cached Type Context and Anvil module.
	Digest Digest
	Cache  *ModuleCache
}

// CompileResult captures every stage's artifact plus per-stage timings.
type CompileResult struct {
	Resolved  *resolve.Result
	Anvil     *anvil.Module
	Erased    *erasure.Recorder
	LowIR     *lowir.Module
	Timings   Timings
	FromCache bool
}

// Compile drives resolve (B) → lower (D, over the AST that (C)'s Anvil
// builder API backs) → verify (C's invariants) → lowir (E) in order,
// short-circuiting the first three when req.Digest hits req.Cache.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.Program == nil {
		return result, fmt.Errorf("missing program")
	}
	report := req.Report
	if report == nil {
		report = diag.NopReporter{}
	}
	strs := req.Strings
	if strs == nil {
		strs = source.NewInterner()
	}
	typesIn := req.Types
	if typesIn == nil {
		typesIn = types.NewInterner()
	}

	var zero Digest
	if req.Cache != nil && req.Digest != zero {
		if cached, ok := req.Cache.Get(req.Digest); ok {
			emitStage(req.Progress, StageResolve, StatusCached, nil, 0)
			emitStage(req.Progress, StageLower, StatusCached, nil, 0)
			emitStage(req.Progress, StageVerify, StatusCached, nil, 0)
			result.Resolved = cached.resolved
			result.Anvil = cached.anvil
			result.Erased = cached.erased
			result.FromCache = true
		}
	}

	if result.Resolved == nil {
		resolveStart := time.Now()
		emitStage(req.Progress, StageResolve, StatusWorking, nil, 0)
		res, ok := resolve.New(typesIn, strs, report).ResolveProgram(req.Program)
		result.Timings.Set(StageResolve, time.Since(resolveStart))
		if !ok {
			err := fmt.Errorf("symbol resolution reported fatal errors")
			emitStage(req.Progress, StageResolve, StatusError, err, result.Timings.Duration(StageResolve))
			return result, err
		}
		emitStage(req.Progress, StageResolve, StatusDone, nil, result.Timings.Duration(StageResolve))
		result.Resolved = res

		lowerStart := time.Now()
		emitStage(req.Progress, StageLower, StatusWorking, nil, 0)
		anvilMod, erased, ok := lower.New(res, report).LowerProgram(req.Program)
		result.Timings.Set(StageLower, time.Since(lowerStart))
		if !ok {
			err := fmt.Errorf("AST lowering reported fatal errors")
			emitStage(req.Progress, StageLower, StatusError, err, result.Timings.Duration(StageLower))
			return result, err
		}
		emitStage(req.Progress, StageLower, StatusDone, nil, result.Timings.Duration(StageLower))
		result.Anvil = anvilMod
		result.Erased = erased

		verifyStart := time.Now()
		emitStage(req.Progress, StageVerify, StatusWorking, nil, 0)
		if err := anvil.Verify(anvilMod); err != nil {
			result.Timings.Set(StageVerify, time.Since(verifyStart))
			emitStage(req.Progress, StageVerify, StatusError, err, result.Timings.Duration(StageVerify))
			return result, fmt.Errorf("anvil verification failed: %w", err)
		}
		result.Timings.Set(StageVerify, time.Since(verifyStart))
		emitStage(req.Progress, StageVerify, StatusDone, nil, result.Timings.Duration(StageVerify))

		if req.Cache != nil && req.Digest != zero {
			req.Cache.Put(req.Digest, cachedEntry{resolved: result.Resolved, anvil: result.Anvil, erased: result.Erased})
		}
	}

	lowirStart := time.Now()
	emitStage(req.Progress, StageLowIR, StatusWorking, nil, 0)
	lowMod, ok := lowir.New(result.Anvil, strs, req.Target, result.Erased, report).Lower()
	result.Timings.Set(StageLowIR, time.Since(lowirStart))
	if !ok {
		err := fmt.Errorf("low IR lowering reported fatal errors")
		emitStage(req.Progress, StageLowIR, StatusError, err, result.Timings.Duration(StageLowIR))
		return result, err
	}
	emitStage(req.Progress, StageLowIR, StatusDone, nil, result.Timings.Duration(StageLowIR))
	result.LowIR = lowMod

	return result, nil
}
