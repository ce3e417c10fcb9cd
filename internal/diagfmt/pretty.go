package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"abiforge/internal/diag"
	"abiforge/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.FgHiBlack)
	locColor     = color.New(color.Bold)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем Notes с отступом.
func Pretty(w io.Writer, bag *diag.Bag, files *source.Files, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		loc := location(d.Primary, files, opts)
		sev := severityColor(d.Severity)
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
			paint(opts.Color, locColor, loc),
			paint(opts.Color, sev, d.Severity.String()),
			d.Code.ID(),
			d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			if _, err := fmt.Fprintf(w, "    %s %s: %s\n",
				paint(opts.Color, noteColor, "note:"),
				location(note.Span, files, opts),
				note.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func location(span source.Span, files *source.Files, opts PrettyOpts) string {
	path := formatPath(files, span.File, opts.PathMode, opts.BaseDir)
	if span.Line == 0 {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, span.Line, span.Col)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

// paint ignores color.NoColor so that callers decide per writer.
func paint(enabled bool, c *color.Color, s string) string {
	if !enabled {
		return s
	}
	cc := *c
	cc.EnableColor()
	return cc.Sprint(s)
}
