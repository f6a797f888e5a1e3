package owners

import (
	"context"
	"reflect"
	"testing"
)

func TestRead_ParsesAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"OWNERS":   "alice\nbob\n\nalice\n  carol  \n",
		"a/OWNERS": "bob\ndave\n",
	})

	src := LocalSource{Root: root}
	byPath := Read(context.Background(), src, []string{"OWNERS", "a/OWNERS", "OWNERS"})

	if len(byPath) != 2 {
		t.Fatalf("expected 2 owners files, got %d: %v", len(byPath), byPath)
	}
	if got, want := byPath["OWNERS"], []string{"alice", "bob", "carol"}; !reflect.DeepEqual(got, want) {
		t.Errorf("OWNERS reviewers = %v, want %v", got, want)
	}
	if got, want := byPath["a/OWNERS"], []string{"bob", "dave"}; !reflect.DeepEqual(got, want) {
		t.Errorf("a/OWNERS reviewers = %v, want %v", got, want)
	}
}

func TestRead_UnreadableFileSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"OWNERS": "alice\n",
	})

	src := LocalSource{Root: root}
	byPath := Read(context.Background(), src, []string{"OWNERS", "missing/OWNERS"})

	if len(byPath) != 1 {
		t.Fatalf("expected only the readable file, got %v", byPath)
	}
	if _, ok := byPath["missing/OWNERS"]; ok {
		t.Error("unreadable file must not appear in the result")
	}
}

func TestRead_EmptyFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/OWNERS": "\n\n",
	})

	byPath := Read(context.Background(), LocalSource{Root: root}, []string{"a/OWNERS"})
	if got := byPath["a/OWNERS"]; len(got) != 0 {
		t.Errorf("empty owners file should yield no reviewers, got %v", got)
	}
}

func TestMerge_OrderIndependent(t *testing.T) {
	a := map[string][]string{
		"OWNERS":   {"alice", "bob"},
		"a/OWNERS": {"bob", "carol"},
	}
	b := map[string][]string{
		"a/OWNERS": {"carol", "bob"},
		"OWNERS":   {"bob", "alice"},
	}

	want := []string{"alice", "bob", "carol"}
	if got := Merge(a); !reflect.DeepEqual(got, want) {
		t.Errorf("Merge(a) = %v, want %v", got, want)
	}
	if got := Merge(b); !reflect.DeepEqual(got, want) {
		t.Errorf("Merge(b) = %v, want %v", got, want)
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Errorf("Merge(nil) = %v, want empty", got)
	}
}
