package pathslice

import (
	"regexp"
	"testing"
)

func TestUnsliceInvariant(t *testing.T) {
	paths := []string{"", "foo", "foo/bar", "a/b/c/d"}
	ranges := [][2]int{{0, 0}, {0, 1}, {1, 0}, {-1, 0}, {0, -1}, {1, 2}}

	for _, p := range paths {
		for _, r := range ranges {
			got := Into(p, r[0], r[1]).Unslice()
			if got != p {
				t.Errorf("Into(%q, %d, %d).Unslice() = %q, want %q", p, r[0], r[1], got, p)
			}
		}
	}
}

func TestIntoStopZeroMeansThroughEnd(t *testing.T) {
	ps := Into("a/b/c", 1, 0)
	if ps.Inner() != "b/c" {
		t.Errorf("Inner() = %q, want %q", ps.Inner(), "b/c")
	}
}

func TestIntoFullPath(t *testing.T) {
	ps := Into("a/b/c", 0, 0)
	if ps.Inner() != "a/b/c" {
		t.Errorf("Inner() = %q, want %q", ps.Inner(), "a/b/c")
	}
}

func TestIntoNegativeIndices(t *testing.T) {
	ps := Into("a/b/c/d", -2, 0)
	if ps.Inner() != "c/d" {
		t.Errorf("Inner() = %q, want %q", ps.Inner(), "c/d")
	}
}

func TestRewriteSuccess(t *testing.T) {
	ps := Into("blub/a_bar", 1, 0)
	pat := regexp.MustCompile(`a_(.*)`)
	rewritten, ok, err := ps.Rewrite(pat, "b_$1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected rewrite to succeed")
	}
	if got := rewritten.Unslice(); got != "blub/b_bar" {
		t.Errorf("Unslice() = %q, want %q", got, "blub/b_bar")
	}
}

func TestRewriteFailureNoMatch(t *testing.T) {
	ps := Into("blub/qux", 1, 0)
	pat := regexp.MustCompile(`a_(.*)`)
	_, ok, err := ps.Rewrite(pat, "b_$1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected rewrite to fail (no match)")
	}
}

func TestRewriteDefaultPattern(t *testing.T) {
	ps := Into("foo/bar", 0, 0)
	rewritten, ok, err := ps.Rewrite(nil, "prefix-$1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected default pattern to match full inner slice")
	}
	if got := rewritten.Unslice(); got != "prefix-foo/bar" {
		t.Errorf("Unslice() = %q, want %q", got, "prefix-foo/bar")
	}
}

func TestCheckExpandRejectsUnknownGroup(t *testing.T) {
	pat := regexp.MustCompile(`(a)(b)`)
	if err := CheckExpand(pat, "$3"); err == nil {
		t.Fatal("expected error for out-of-range backreference")
	}
	if err := CheckExpand(pat, "$1-$2"); err != nil {
		t.Fatalf("unexpected error for valid backreferences: %v", err)
	}
}
