package diag

import (
	"fmt"
	"sort"
	"strings"

	"abiforge/internal/source"
)

type goldenDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatGoldenDiagnostics renders diagnostics one per line in a stable order
// suitable for golden comparisons. Entries located in dependency sources
// (node_modules) are dropped.
func FormatGoldenDiagnostics(diags []Diagnostic, files *source.Files, includeNotes bool) string {
	return formatDiagnostics(diags, files, includeNotes, true)
}

// FormatShortDiagnostics renders diagnostics one per line for CLI output.
func FormatShortDiagnostics(diags []Diagnostic, files *source.Files, includeNotes bool) string {
	return formatDiagnostics(diags, files, includeNotes, false)
}

func formatDiagnostics(diags []Diagnostic, files *source.Files, includeNotes, skipLibrary bool) string {
	if len(diags) == 0 {
		return ""
	}

	rendered := make([]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		rendered = appendDiagnostic(rendered, &diags[i], files, includeNotes, skipLibrary)
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func appendDiagnostic(out []goldenDiagnostic, d *Diagnostic, files *source.Files, includeNotes, skipLibrary bool) []goldenDiagnostic {
	path := spanPath(files, d.Primary)
	if !skipLibrary || !isLibraryPath(path) {
		out = append(out, goldenDiagnostic{
			Severity: severityLabel(d.Severity),
			Code:     d.Code.ID(),
			Path:     path,
			Line:     d.Primary.Line,
			Column:   d.Primary.Col,
			Message:  sanitizeMessage(d.Message),
		})
	}

	if includeNotes {
		for _, note := range d.Notes {
			npath := spanPath(files, note.Span)
			if skipLibrary && isLibraryPath(npath) {
				continue
			}
			out = append(out, goldenDiagnostic{
				Severity: "note",
				Code:     d.Code.ID(),
				Path:     npath,
				Line:     note.Span.Line,
				Column:   note.Span.Col,
				Message:  sanitizeMessage(note.Msg),
			})
		}
	}

	return out
}

func spanPath(files *source.Files, sp source.Span) string {
	path := files.Path(sp.File)
	if path == "" {
		return "<unknown>"
	}
	for strings.HasPrefix(path, "./") {
		path = strings.TrimPrefix(path, "./")
	}
	return path
}

func isLibraryPath(path string) bool {
	return strings.HasPrefix(path, "node_modules/") || strings.Contains(path, "/node_modules/") ||
		strings.HasPrefix(path, "~lib/")
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
