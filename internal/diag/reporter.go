package diag

import "ember/internal/source"

// Reporter is the minimal contract every pass uses to surface diagnostics.
// Implementations: Bag (accumulates), NopReporter (discards),
// MultiReporter (fan-out to several sinks).
type Reporter interface {
	Report(d Diagnostic)
}

// NopReporter discards every diagnostic. Useful in tests that only care
// about a pass's return value.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Diagnostic) {}

// MultiReporter fans a diagnostic out to every attached Reporter.
type MultiReporter struct {
	Reporters []Reporter
}

// Report implements Reporter.
func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m.Reporters {
		if r != nil {
			r.Report(d)
		}
	}
}

// Builder accumulates diagnostic details before emitting exactly once.
type Builder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// New starts building a diagnostic bound to r.
func New(r Reporter, sev Severity, code Code, primary source.Span, msg string) *Builder {
	return &Builder{
		reporter: r,
		diag: Diagnostic{
			Severity: sev,
			Code:     code,
			Message:  msg,
			Primary:  primary,
		},
	}
}

// Error is a shortcut for a SevError diagnostic builder.
func Error(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return New(r, SevError, code, primary, msg)
}

// Warning is a shortcut for a SevWarning diagnostic builder.
func Warning(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return New(r, SevWarning, code, primary, msg)
}

// Info is a shortcut for a SevInfo diagnostic builder.
func Info(r Reporter, code Code, primary source.Span, msg string) *Builder {
	return New(r, SevInfo, code, primary, msg)
}

// Note appends a secondary note.
func (b *Builder) Note(sp source.Span, msg string) *Builder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

// WithFix appends a ready-to-apply fix.
func (b *Builder) WithFix(title string, edits ...FixEdit) *Builder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithFix(title, edits...)
	return b
}

// AtLocation records the function/block under inspection (verifier use).
func (b *Builder) AtLocation(funcName, blockLabel string) *Builder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithLocation(funcName, blockLabel)
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once and
// returns the built value.
func (b *Builder) Emit() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	if !b.emitted && b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
	return b.diag
}
