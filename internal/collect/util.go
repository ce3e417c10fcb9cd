package collect

import (
	"strings"

	"abiforge/internal/params"
)

func trimSpace(s string) string { return strings.TrimSpace(s) }

// unquoteAll strips the string-literal quotes the host leaves on argument
// text.
func unquoteAll(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = params.Unquote(strings.TrimSpace(r))
	}
	return out
}
