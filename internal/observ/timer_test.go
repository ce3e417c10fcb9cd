package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	idx := tm.Begin("collect")
	tm.End(idx, "3 methods")
	if err := tm.Track("manifest", func() error { return errors.New("boom") }); err == nil {
		t.Fatalf("Track swallowed the error")
	}
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.TotalMS != 2 {
		t.Fatalf("report = %+v", r)
	}
	if r.Phases[0].Note != "3 methods" || r.Phases[1].Note != "failed" {
		t.Fatalf("notes = %+v", r.Phases)
	}
	if s := tm.Summary(); !strings.Contains(s, "collect") || !strings.Contains(s, "total") {
		t.Fatalf("summary = %q", s)
	}
}

func TestMerge(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "load", DurationMS: 1}, {Name: "collect", DurationMS: 2}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "collect", DurationMS: 4}}}
	m := Merge(a, b)
	if m.TotalMS != 7 || len(m.Phases) != 2 || m.Phases[1].DurationMS != 6 {
		t.Fatalf("merged = %+v", m)
	}
	if Merge().Phases != nil {
		t.Fatalf("empty merge should have no phases")
	}
}
