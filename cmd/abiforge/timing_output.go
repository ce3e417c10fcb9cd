package main

import (
	"fmt"
	"io"

	"abiforge/internal/driver"
	"abiforge/internal/observ"
)

// printTimings prints per-unit phase timings, then the sum over all units
// when more than one was built. Cached units report no phases.
func printTimings(out io.Writer, results []*driver.Result) {
	reports := make([]observ.Report, 0, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Cached {
			fmt.Fprintf(out, "%s: cached\n", res.Unit)
			continue
		}
		fmt.Fprintf(out, "%s: %s", res.Unit, observ.FormatReport(res.Timing))
		reports = append(reports, res.Timing)
	}
	if len(reports) > 1 {
		fmt.Fprintf(out, "all units: %s", observ.FormatReport(observ.Merge(reports...)))
	}
}
