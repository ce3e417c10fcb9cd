// Package main implements the abiforge CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"abiforge/internal/driver"
	"abiforge/internal/project"
	"abiforge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "abiforge",
	Short: "ABI extraction and dispatch synthesis for annotated contract classes",
	Long: `abiforge reads host declaration dumps, collects @method/@returns/@event
annotations, writes the ABI manifest and splices a selector routing procedure
into every annotated class.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupGlobals,
}

// main registers subcommands and persistent flags, then executes the root
// command. Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(selectorCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error), overrides [log].level")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file, overrides [log].file")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show per unit")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// activeProject is the manifest found from the working directory, or the
// defaults rooted at the working directory when there is none.
var activeProject *project.Project

func setupGlobals(cmd *cobra.Command, _ []string) error {
	colorValue, err := cmd.Flags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(colorValue) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorValue)
	}

	proj, err := currentProject()
	if err != nil {
		return err
	}
	activeProject = proj

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}
	logCfg := proj.Config.Log
	if logLevel == "" {
		logLevel = logCfg.Level
	}
	if logFile == "" && logCfg.File != "" {
		logFile = logCfg.File
		if !filepath.IsAbs(logFile) {
			logFile = filepath.Join(proj.Root, logFile)
		}
	}
	l, err := driver.NewLogger(driver.LogOptions{
		Level:      logLevel,
		Console:    os.Stderr,
		File:       logFile,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
	})
	if err != nil {
		return err
	}
	driver.InstallLogger(l)
	return nil
}

func currentProject() (*project.Project, error) {
	proj, ok, err := project.Load(".")
	if err != nil {
		return nil, err
	}
	if ok {
		return proj, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &project.Project{Root: wd, Config: project.Default()}, nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
