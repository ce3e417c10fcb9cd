package dispatch

import (
	"abiforge/internal/decl"
)

// SpliceResult says where the routing member ended up.
type SpliceResult struct {
	Index    int
	Replaced bool
}

// Splice returns a copy of members with frag installed: the first method
// (or previously synthesized member) named like the routing procedure is
// replaced in place, otherwise frag is appended. Fields, accessors and other
// opaque members are never matched. The input slice is not modified, so
// splicing the same snapshot twice yields the same list.
func Splice(members []decl.Member, frag Fragment) ([]decl.Member, SpliceResult) {
	out := make([]decl.Member, len(members), len(members)+1)
	copy(out, members)
	m := decl.Member{
		Kind:        decl.MemberOther,
		Name:        frag.Name,
		Text:        frag.Text,
		Synthesized: true,
	}
	for i, existing := range out {
		if replaceable(existing) && existing.Name == frag.Name {
			out[i] = m
			return out, SpliceResult{Index: i, Replaced: true}
		}
	}
	out = append(out, m)
	return out, SpliceResult{Index: len(out) - 1}
}

func replaceable(m decl.Member) bool {
	return m.Kind == decl.MemberMethod || m.Synthesized
}
