package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"abiforge/internal/diag"
	"abiforge/internal/diagfmt"
	"abiforge/internal/driver"
	"abiforge/internal/manifest"
	"abiforge/internal/output"
	"abiforge/internal/project"
)

const noInputsMessage = "no inputs\npass declaration dumps explicitly or list them in abiforge.toml, e.g.:\n  [build]\n  inputs = [\"decls/*.json\"]"

var buildCmd = &cobra.Command{
	Use:   "build [flags] [dump...]",
	Short: "Write ABI manifests and routing for declaration dumps",
	Long: `Build reads each declaration dump (.json, or .msgpack/.mp), writes the ABI
manifest, per-class fragments and the synthesized routing procedure into the
output directory. Without arguments the inputs listed in abiforge.toml are used.`,
	RunE: buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	fragments, err := cmd.Flags().GetBool("fragments")
	if err != nil {
		return fmt.Errorf("failed to get fragments flag: %w", err)
	}
	declarations, err := cmd.Flags().GetBool("declarations")
	if err != nil {
		return fmt.Errorf("failed to get declarations flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	diagFormat, err := cmd.Flags().GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	failOnValue, err := cmd.Flags().GetString("fail-on")
	if err != nil {
		return fmt.Errorf("failed to get fail-on flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	switch strings.ToLower(diagFormat) {
	case "", "pretty", "short", "json":
	default:
		return fmt.Errorf("invalid --diag-format value %q (expected pretty|short|json)", diagFormat)
	}
	failOn := diag.SevError
	if failOnValue != "" {
		sev, ok := diag.ParseSeverity(failOnValue)
		if !ok {
			return fmt.Errorf("invalid --fail-on value %q (expected info|warning|error)", failOnValue)
		}
		failOn = sev
	}

	proj := activeProject
	cfg := proj.Config
	if cmd.Flags().Changed("jobs") {
		cfg.Build.Jobs = jobs
	}
	if cmd.Flags().Changed("fragments") {
		cfg.Output.Fragments = fragments
	}
	if cmd.Flags().Changed("declarations") {
		cfg.Output.Declarations = declarations
	}
	if noCache {
		cfg.Build.Cache = false
	}

	inputs, err := resolveInputs(proj, args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New(noInputsMessage)
	}

	outRoot := proj.OutputDir()
	if outDir != "" {
		outRoot = outDir
	}

	opts := driver.Options{
		Dispatch:       cfg.Dispatch,
		Manifest:       manifest.DefaultOptions(),
		IncludeLibrary: cfg.Build.IncludeLibrary,
		AbiFile:        cfg.Output.AbiFile,
		Fragments:      cfg.Output.Fragments,
		Declarations:   cfg.Output.Declarations,
		UnitDirs:       len(inputs) > 1,
		MaxDiagnostics: maxDiagnostics,
		Sink:           output.DirSink{Root: outRoot},
	}
	if cfg.Build.Cache {
		cache, cacheErr := driver.OpenDiskCache("abiforge")
		if cacheErr != nil {
			driver.Logger().Warn("cache disabled", zap.Error(cacheErr))
		} else {
			opts.Cache = cache
		}
	}

	var results []*driver.Result
	if shouldUseTUI(mode, len(inputs)) {
		results, err = runBuildWithUI(cmd.Context(), "abiforge build", inputs, opts, cfg.Build.Jobs)
	} else {
		results, err = driver.RunAll(cmd.Context(), inputs, opts, cfg.Build.Jobs)
	}

	if printErr := printDiagnostics(os.Stderr, results, diagFormat, proj.Root); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}
	if failing := countFailing(results, failOn); failing > 0 {
		return fmt.Errorf("%d unit(s) reported %s diagnostics", failing, strings.ToLower(failOn.String()))
	}

	if !quiet {
		printRoutes(os.Stdout, results)
		fmt.Fprintf(os.Stdout, "%s %d unit(s) into %s\n", color.GreenString("built"), len(results), formatPathForOutput(proj.Root, outRoot))
	}
	if showTimings {
		printTimings(os.Stdout, results)
	}
	return nil
}

// resolveInputs returns args as given, or the [build].inputs globs expanded
// against the project root. Paths are deduplicated keeping first-seen order.
func resolveInputs(proj *project.Project, args []string) ([]string, error) {
	if len(args) > 0 {
		return dedupPaths(args), nil
	}
	var out []string
	for _, pattern := range proj.Config.Build.Inputs {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(proj.Root, pattern)
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad input pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input pattern %q matches no files", pattern)
		}
		slices.Sort(matches)
		out = append(out, matches...)
	}
	return dedupPaths(out), nil
}

func dedupPaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

func countFailing(results []*driver.Result, sev diag.Severity) int {
	n := 0
	for _, res := range results {
		if res != nil && res.Bag != nil && res.Bag.HasAtLeast(sev) {
			n++
		}
	}
	return n
}

func printDiagnostics(out io.Writer, results []*driver.Result, format, root string) error {
	switch strings.ToLower(format) {
	case "", "pretty":
		for _, res := range results {
			if res == nil {
				continue
			}
			opts := diagfmt.PrettyOpts{Color: !color.NoColor, PathMode: diagfmt.PathModeRelative, BaseDir: root, ShowNotes: true}
			if err := diagfmt.Pretty(out, res.Bag, res.Files, opts); err != nil {
				return err
			}
		}
	case "short":
		for _, res := range results {
			if res == nil || res.Bag == nil || res.Bag.Len() == 0 {
				continue
			}
			fmt.Fprintln(out, diag.FormatShortDiagnostics(res.Bag.Items(), res.Files, true))
		}
	case "json":
		units := make([]diagfmt.UnitDiagnostics, 0, len(results))
		for _, res := range results {
			if res != nil {
				units = append(units, diagfmt.UnitDiagnostics{Unit: res.Unit, Bag: res.Bag, Files: res.Files})
			}
		}
		return diagfmt.JSON(out, units, diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true})
	default:
		return fmt.Errorf("invalid --diag-format value %q (expected pretty|short|json)", format)
	}
	return nil
}

func printRoutes(out io.Writer, results []*driver.Result) {
	var rows [][3]string
	for _, res := range results {
		for _, r := range res.Routes {
			rows = append(rows, [3]string{r.Class + "." + r.Target, r.Selector, r.Signature})
		}
	}
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, row := range rows {
		width = max(width, runewidth.StringWidth(row[0]))
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %s  %s  %s\n", runewidth.FillRight(row[0], width), color.YellowString(row[1]), row[2])
	}
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func init() {
	buildCmd.Flags().Int("jobs", 0, "units built in parallel (0 = GOMAXPROCS), overrides [build].jobs")
	buildCmd.Flags().String("out", "", "output directory, overrides [output].dir")
	buildCmd.Flags().Bool("no-cache", false, "bypass the unit result cache")
	buildCmd.Flags().Bool("fragments", true, "write abis/<Class>.abi.ts and .d.ts, overrides [output].fragments")
	buildCmd.Flags().Bool("declarations", false, "write the spliced declaration dump, overrides [output].declarations")
	buildCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	buildCmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|short|json)")
	buildCmd.Flags().String("fail-on", "", "fail the build when a diagnostic reaches this severity (info|warning|error)")
}
