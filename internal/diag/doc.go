// Package diag defines the diagnostic model shared by the ABI phases.
//
// Fatal outcomes (an unresolvable type spelling, an annotated method the host
// never resolved) are typed Go errors returned by the phase that finds them.
// Everything else the pass wants to tell the user goes through a Reporter:
// named parameters that had to be read as raw type text, events nobody emits,
// annotations placed on the wrong kind of declaration, replaced routing
// procedures.
//
// # Data model
//
//   - Severity – Info, Warning, Error (severity.go).
//   - Code – numeric identifier with a stable ID such as ABI1002 (codes.go).
//   - Message – short, human oriented text.
//   - Primary – the source.Span of the annotation or declaration at fault.
//   - Notes – optional secondary spans, e.g. where an event was declared.
//
// # Emitting diagnostics
//
// Phases build a ReportBuilder via ReportWarning/ReportInfo, chain WithNote
// and call Emit. BagReporter collects into a Bag which supports sorting and
// deduplication; DedupReporter filters repeats before they reach the bag.
// FormatShortDiagnostics/FormatGoldenDiagnostics render a bag for the CLI
// and for tests.
package diag
