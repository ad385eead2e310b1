package udiff

import (
	"strings"
	"testing"
)

func TestUnifiedIdenticalInputs(t *testing.T) {
	if d := Unified("same\n", "same\n", "a/f", "b/f"); d != "" {
		t.Fatalf("identical inputs should produce no diff, got:\n%s", d)
	}
}

func TestUnifiedHeadersAndMarkers(t *testing.T) {
	a := "one\ntwo\nthree\n"
	b := "one\n2\nthree\n"

	d := Unified(a, b, "a/nums.txt", "b/nums.txt")
	for _, want := range []string{
		"--- a/nums.txt\n",
		"+++ b/nums.txt\n",
		"@@ -1,3 +1,3 @@\n",
		" one\n",
		"-two\n",
		"+2\n",
		" three\n",
	} {
		if !strings.Contains(d, want) {
			t.Fatalf("diff missing %q:\n%s", want, d)
		}
	}
}

func TestUnifiedApplyRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"modify middle line", "a\nb\nc\n", "a\nB\nc\n"},
		{"insert line", "a\nc\n", "a\nb\nc\n"},
		{"delete line", "a\nb\nc\n", "a\nc\n"},
		{"append at end", "a\n", "a\nb\n"},
		{"prepend at start", "b\n", "a\nb\n"},
		{"new file", "", "fresh\ncontent\n"},
		{"empty out the file", "gone\n", ""},
		{"no trailing newline both sides", "a\nb", "a\nc"},
		{"add trailing newline", "a\nb", "a\nb\n"},
		{"drop trailing newline", "a\nb\n", "a\nb"},
		{"rewrite everything", "x\ny\n", "p\nq\nr\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Unified(tc.a, tc.b, "a/f", "b/f")
			got, err := Apply(tc.a, d)
			if err != nil {
				t.Fatalf("Apply failed: %v\ndiff:\n%s", err, d)
			}
			if got != tc.b {
				t.Fatalf("round trip = %q, want %q\ndiff:\n%s", got, tc.b, d)
			}
		})
	}
}

func TestUnifiedSplitsDistantChangesIntoHunks(t *testing.T) {
	var aLines, bLines []string
	for i := 1; i <= 12; i++ {
		line := "line" + string(rune('0'+i/10)) + string(rune('0'+i%10))
		aLines = append(aLines, line)
		bLines = append(bLines, line)
	}
	bLines[1] = "changed-early"
	bLines[10] = "changed-late"

	a := strings.Join(aLines, "\n") + "\n"
	b := strings.Join(bLines, "\n") + "\n"

	d := Unified(a, b, "a/f", "b/f")
	if got := strings.Count(d, "@@ "); got != 2 {
		t.Fatalf("expected 2 hunks, got %d:\n%s", got, d)
	}

	patched, err := Apply(a, d)
	if err != nil {
		t.Fatalf("Apply failed: %v\ndiff:\n%s", err, d)
	}
	if patched != b {
		t.Fatalf("multi-hunk round trip diverged:\n%s", d)
	}
}

func TestUnifiedNoNewlineMarker(t *testing.T) {
	d := Unified("a\nend", "a\nfin", "a/f", "b/f")
	if !strings.Contains(d, "\\ No newline at end of file") {
		t.Fatalf("diff should mark missing trailing newline:\n%s", d)
	}
}

func TestApplyEmptyDiff(t *testing.T) {
	got, err := Apply("unchanged\n", "")
	if err != nil {
		t.Fatalf("empty diff should apply cleanly: %v", err)
	}
	if got != "unchanged\n" {
		t.Fatalf("empty diff changed the input: %q", got)
	}
}

func TestApplyMismatchedBase(t *testing.T) {
	d := Unified("a\nb\nc\n", "a\nB\nc\n", "a/f", "b/f")

	if _, err := Apply("a\nx\nc\n", d); err == nil {
		t.Fatalf("applying to a different base should fail")
	}
}

func TestApplyGarbage(t *testing.T) {
	if _, err := Apply("a\n", "not a diff at all"); err == nil {
		t.Fatalf("malformed diff should fail")
	}
}
