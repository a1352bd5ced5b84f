package diag

import "ember/internal/source"

// Note attaches secondary context to a diagnostic at a different span.
type Note struct {
	Span source.Span
	Msg  string
}

// FixEdit is a single textual replacement suggested by a Fix.
type FixEdit struct {
	Span    source.Span
	NewText string
}

// Fix is a named, ready-to-apply suggestion (or a description of one, for
// verifier fix-it notes where no AST edit exists to apply).
type Fix struct {
	Title string
	Edits []FixEdit
}

// Diagnostic is a single reported condition: a fatal input-contract
// violation, an unsupported construct, or an internal invariant failure
// (spec §7), plus the runtime error kinds reflected into the IR for
// documentation.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix

	// FuncName/BlockLabel are populated for internal invariant violations
	// (verifier failures), per spec §7's requirement that such failures be
	// "flagged as a compiler bug with function id and block label".
	FuncName   string
	BlockLabel string
}

// WithNote returns d with an additional note appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(append([]Note(nil), d.Notes...), Note{Span: sp, Msg: msg})
	return d
}

// WithFix returns d with an additional fix appended.
func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(append([]Fix(nil), d.Fixes...), Fix{Title: title, Edits: edits})
	return d
}

// WithFixSuggestion returns d with a pre-built Fix appended.
func (d Diagnostic) WithFixSuggestion(f Fix) Diagnostic {
	d.Fixes = append(append([]Fix(nil), d.Fixes...), f)
	return d
}

// WithLocation returns d annotated with the function/block that the
// verifier was inspecting when it failed.
func (d Diagnostic) WithLocation(funcName, blockLabel string) Diagnostic {
	d.FuncName = funcName
	d.BlockLabel = blockLabel
	return d
}
