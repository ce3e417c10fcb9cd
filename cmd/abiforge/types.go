package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"abiforge/internal/abitype"
)

var typesCmd = &cobra.Command{
	Use:   "types [spelling...]",
	Short: "List ABI types, their canonical spellings and accepted aliases",
	Long: `Without arguments types prints the whole type table. With arguments it
resolves each spelling and prints the tag it maps to.`,
	RunE: runTypes,
}

var typesHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

func runTypes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) > 0 {
		return resolveSpellings(out, args)
	}
	printTypeTable(out)
	return nil
}

func resolveSpellings(out io.Writer, spellings []string) error {
	var unknown []string
	for _, s := range spellings {
		tag, ok := abitype.ResolveTupleOrScalar(s)
		if !ok {
			unknown = append(unknown, s)
			fmt.Fprintf(out, "%s: unknown\n", s)
			continue
		}
		fmt.Fprintf(out, "%s: %s (%s, %s)\n", s, tag, abitype.Canonical(tag), abitype.HostHint(tag))
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%d unknown spelling(s): %s", len(unknown), strings.Join(unknown, ", "))
	}
	return nil
}

func printTypeTable(out io.Writer) {
	aliases := map[abitype.Tag][]string{}
	for _, a := range abitype.Aliases() {
		if a.Spelling == abitype.Canonical(a.Tag) {
			continue
		}
		aliases[a.Tag] = append(aliases[a.Tag], a.Spelling)
	}

	rows := [][4]string{{"TAG", "CANONICAL", "HINT", "ALIASES"}}
	for _, tag := range abitype.Tags() {
		rows = append(rows, [4]string{
			tag.String(),
			abitype.Canonical(tag),
			abitype.HostHint(tag).String(),
			strings.Join(aliases[tag], " "),
		})
	}

	var widths [3]int
	for _, row := range rows {
		for i := range widths {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}
	for i, row := range rows {
		line := fmt.Sprintf("%s  %s  %s  %s",
			runewidth.FillRight(row[0], widths[0]),
			runewidth.FillRight(row[1], widths[1]),
			runewidth.FillRight(row[2], widths[2]),
			row[3])
		line = strings.TrimRight(line, " ")
		if i == 0 {
			line = typesHeaderStyle.Render(line)
		}
		fmt.Fprintln(out, line)
	}
}
