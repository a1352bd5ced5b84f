package diag

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	infoColor   = color.New(color.FgCyan, color.Bold)
	codeColor   = color.New(color.FgHiBlack)
	noteColor   = color.New(color.FgHiBlack)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

func severityColor(s Severity) *color.Color {
	switch s {
	case SevError:
		return errorColor
	case SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

// Render formats a single diagnostic as a boxed, colorized block suitable
// for a terminal. When color/box drawing isn't wanted (e.g. piping to a
// file), use RenderPlain instead.
func Render(d Diagnostic) string {
	var b strings.Builder
	sevText := severityColor(d.Severity).Sprint(d.Severity.String())
	codeText := codeColor.Sprint(d.Code.String())
	fmt.Fprintf(&b, "%s[%s] at %s: %s", sevText, codeText, d.Primary, d.Message)
	if d.FuncName != "" {
		fmt.Fprintf(&b, "\n  in function %s", d.FuncName)
		if d.BlockLabel != "" {
			fmt.Fprintf(&b, ", block %s", d.BlockLabel)
		}
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  %s %s: %s", noteColor.Sprint("note"), n.Span, n.Msg)
	}
	for _, f := range d.Fixes {
		fmt.Fprintf(&b, "\n  %s %s", noteColor.Sprint("fix:"), f.Title)
	}
	return boxStyle.Render(b.String())
}

// RenderPlain formats a diagnostic without ANSI color or box drawing, for
// non-terminal sinks (log files, golden tests).
func RenderPlain(d Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s] at %s: %s", d.Severity, d.Code, d.Primary, d.Message)
	if d.FuncName != "" {
		fmt.Fprintf(&b, " (in %s", d.FuncName)
		if d.BlockLabel != "" {
			fmt.Fprintf(&b, ", block %s", d.BlockLabel)
		}
		b.WriteString(")")
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  note %s: %s", n.Span, n.Msg)
	}
	for _, f := range d.Fixes {
		fmt.Fprintf(&b, "\n  fix: %s", f.Title)
	}
	return b.String()
}
