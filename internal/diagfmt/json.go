package diagfmt

import (
	"encoding/json"
	"io"

	"abiforge/internal/diag"
	"abiforge/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File string `json:"file"`
	Line uint32 `json:"line,omitempty"`
	Col  uint32 `json:"col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Unit     string       `json:"unit,omitempty"`
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// UnitDiagnostics groups one unit's bag with the file table its spans use.
type UnitDiagnostics struct {
	Unit  string
	Bag   *diag.Bag
	Files *source.Files
}

func makeLocation(span source.Span, files *source.Files, opts JSONOpts) LocationJSON {
	loc := LocationJSON{File: formatPath(files, span.File, opts.PathMode, opts.BaseDir)}
	if opts.IncludePositions {
		loc.Line = span.Line
		loc.Col = span.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// Max applies per unit.
func BuildDiagnosticsOutput(units []UnitDiagnostics, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0)
	for _, u := range units {
		if u.Bag == nil {
			continue
		}
		items := u.Bag.Items()
		maxItems := len(items)
		if opts.Max > 0 && opts.Max < maxItems {
			maxItems = opts.Max
		}
		for i := range maxItems {
			d := items[i]
			dj := DiagnosticJSON{
				Unit:     u.Unit,
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Message:  d.Message,
				Location: makeLocation(d.Primary, u.Files, opts),
			}
			if opts.IncludeNotes && len(d.Notes) > 0 {
				dj.Notes = make([]NoteJSON, len(d.Notes))
				for j, note := range d.Notes {
					dj.Notes[j] = NoteJSON{
						Message:  note.Msg,
						Location: makeLocation(note.Span, u.Files, opts),
					}
				}
			}
			diagnostics = append(diagnostics, dj)
		}
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON форматирует диагностики всех юнитов в один JSON документ.
func JSON(w io.Writer, units []UnitDiagnostics, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(units, opts))
}
