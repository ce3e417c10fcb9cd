package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"abiforge/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the output directory",
	Long:  "Remove the output directory of the current project. With --cache the unit result cache is dropped too.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	dropCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	proj := activeProject
	outDir := proj.OutputDir()
	out := cmd.OutOrStdout()

	info, err := os.Stat(outDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(out, "output directory not found\n")
	case err != nil:
		return fmt.Errorf("failed to stat %q: %w", outDir, err)
	case !info.IsDir():
		return fmt.Errorf("%q is not a directory", outDir)
	default:
		if err := os.RemoveAll(outDir); err != nil {
			return fmt.Errorf("failed to remove %q: %w", outDir, err)
		}
		fmt.Fprintf(out, "removed %s\n", formatPathForOutput(proj.Root, outDir))
	}

	if dropCache {
		cache, err := driver.OpenDiskCache("abiforge")
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		fmt.Fprintf(out, "cache dropped\n")
	}
	return nil
}

func init() {
	cleanCmd.Flags().Bool("cache", false, "also drop the unit result cache")
}
