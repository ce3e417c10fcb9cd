package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDirSinkWritesAndReplaces(t *testing.T) {
	root := t.TempDir()
	s := DirSink{Root: root}
	if err := s.WriteFile("abis/Token.abi.ts", []byte("one")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.WriteFile("abis/Token.abi.ts", []byte("two")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "abis", "Token.abi.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Fatalf("content = %q", got)
	}
	entries, _ := os.ReadDir(filepath.Join(root, "abis"))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestSinkRejectsEscapingNames(t *testing.T) {
	for _, name := range []string{"", "/etc/passwd", "../x", "a/../../x"} {
		if err := (DirSink{Root: t.TempDir()}).WriteFile(name, nil); err == nil {
			t.Errorf("DirSink accepted %q", name)
		}
		if err := NewMemSink().WriteFile(name, nil); err == nil {
			t.Errorf("MemSink accepted %q", name)
		}
	}
}

func TestMemSinkList(t *testing.T) {
	s := NewMemSink()
	for _, name := range []string{"abi.json", "abis/B.d.ts", "abis/A.abi.ts", "./dispatch/A.execute.ts"} {
		if err := s.WriteFile(name, []byte(name)); err != nil {
			t.Fatal(err)
		}
	}
	if got := strings.Join(s.List("abis"), ","); got != "abis/A.abi.ts,abis/B.d.ts" {
		t.Fatalf("List(abis) = %q", got)
	}
	if len(s.List("")) != 4 || s.Len() != 4 {
		t.Fatalf("List(\"\") = %v", s.List(""))
	}
	data, ok := s.ReadFile("dispatch/A.execute.ts")
	if !ok || string(data) != "./dispatch/A.execute.ts" {
		t.Fatalf("ReadFile = %q, %v", data, ok)
	}
}
