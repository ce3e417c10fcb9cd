package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"abiforge/internal/abitype"
	"abiforge/internal/selector"
)

var selectorCmd = &cobra.Command{
	Use:   "selector <signature> | <name> [type...]",
	Short: "Print the selector of a method signature",
	Long: `Selector hashes a signature the same way build does. Either pass a full
signature such as "transfer(address,uint256)", or a name followed by type
spellings ("transfer Address u256"). Host spellings are canonicalized first
unless --raw is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSelector,
}

func runSelector(cmd *cobra.Command, args []string) error {
	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return fmt.Errorf("failed to get raw flag: %w", err)
	}

	var (
		name  string
		types []string
	)
	if len(args) == 1 && strings.Contains(args[0], "(") {
		name, types, err = splitSignature(args[0])
		if err != nil {
			return err
		}
	} else {
		name, types = args[0], args[1:]
	}

	if !raw {
		for i, t := range types {
			c, ok := canonicalType(t)
			if !ok {
				return fmt.Errorf("unknown type %q in %s", t, name)
			}
			types[i] = c
		}
	}
	sig := selector.Signature(name, types...)
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", sig, color.YellowString(selector.Of(sig).Literal()))
	return nil
}

// canonicalType resolves a spelling, tuple strings included, to its
// canonical text.
func canonicalType(spelling string) (string, bool) {
	spelling = strings.TrimSpace(spelling)
	if abitype.IsTupleString(spelling) {
		return abitype.CanonicalizeTupleString(spelling)
	}
	return abitype.CanonicalSpelling(spelling)
}

// splitSignature splits "name(a,b)" into its name and top-level argument
// types. Commas inside nested parentheses belong to the inner type.
func splitSignature(sig string) (string, []string, error) {
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return "", nil, fmt.Errorf("malformed signature %q", sig)
	}
	name := strings.TrimSpace(sig[:open])
	body := sig[open+1 : len(sig)-1]
	if strings.TrimSpace(body) == "" {
		return name, nil, nil
	}

	var (
		types []string
		depth int
		start int
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", nil, fmt.Errorf("unbalanced parentheses in %q", sig)
			}
		case ',':
			if depth == 0 {
				types = append(types, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, fmt.Errorf("unbalanced parentheses in %q", sig)
	}
	types = append(types, strings.TrimSpace(body[start:]))
	return name, types, nil
}

func init() {
	selectorCmd.Flags().Bool("raw", false, "hash the types exactly as given")
}
