package components

import (
	"strings"
	"testing"

	"codeward/cmd/chat/ui/tui/styles"
	"codeward/cmd/chat/ui/types"
)

func newTestTranscript() *Transcript {
	// markdown off keeps finalized text byte-comparable
	return NewTranscript(styles.DefaultTheme(), false)
}

func TestTranscriptDeltaOrderAroundCards(t *testing.T) {
	tr := newTestTranscript()

	tr.BufferDelta("a")
	tr.BufferDelta("b")
	tr.AppendCard(types.Card{Kind: types.CardTool, Tool: "read_file", Args: `{"path":"x"}`, Output: "ok"})
	tr.BufferDelta("c")
	tr.FlushPending()

	cards := tr.Cards()
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(cards))
	}
	if cards[0].Kind != types.CardStream || cards[0].Text != "ab" {
		t.Fatalf("card 0 = %+v, want closed stream %q", cards[0], "ab")
	}
	if cards[0].Open {
		t.Fatalf("stream region before the tool card should be closed")
	}
	if cards[1].Kind != types.CardTool || cards[1].Tool != "read_file" {
		t.Fatalf("card 1 = %+v, want the tool card", cards[1])
	}
	if cards[2].Kind != types.CardStream || cards[2].Text != "c" || !cards[2].Open {
		t.Fatalf("card 2 = %+v, want open stream %q", cards[2], "c")
	}
}

func TestTranscriptFinalizeClosesStream(t *testing.T) {
	tr := newTestTranscript()

	tr.BufferDelta("hello")
	if !tr.Finalize() {
		t.Fatalf("Finalize with buffered text should close a card")
	}

	cards := tr.Cards()
	if len(cards) != 1 || cards[0].Open {
		t.Fatalf("cards = %+v, want one closed stream card", cards)
	}
	if cards[0].Text != "hello" {
		t.Fatalf("text = %q", cards[0].Text)
	}
}

func TestTranscriptStaleFinalizeIsNoop(t *testing.T) {
	tr := newTestTranscript()

	tr.BufferDelta("answer")
	if !tr.Finalize() {
		t.Fatalf("first Finalize should close the card")
	}
	if tr.Finalize() {
		t.Fatalf("second Finalize must be a no-op")
	}
	if n := len(tr.Cards()); n != 1 {
		t.Fatalf("got %d cards after stale finalize, want 1", n)
	}
}

func TestTranscriptInterruptMarker(t *testing.T) {
	tr := newTestTranscript()

	tr.BufferDelta("partial ans")
	tr.FlushPending()
	tr.BufferDelta("\n\n[Interrupted]")
	tr.Finalize()

	cards := tr.Cards()
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if got := cards[0].Text; got != "partial ans\n\n[Interrupted]" {
		t.Fatalf("text = %q", got)
	}
}

func TestTranscriptInterruptWithoutActiveStream(t *testing.T) {
	tr := newTestTranscript()

	// Turn canceled while a tool ran: no stream card open yet.
	tr.BufferDelta("\n\n[Interrupted]")
	if !tr.Finalize() {
		t.Fatalf("marker should open and close a card")
	}
	if got := tr.Cards()[0].Text; !strings.Contains(got, "[Interrupted]") {
		t.Fatalf("text = %q, want interrupt marker", got)
	}
}

func TestTranscriptReset(t *testing.T) {
	tr := newTestTranscript()

	tr.AppendCard(types.Card{Kind: types.CardUser, Text: "hi"})
	tr.BufferDelta("pending text")
	tr.Reset()

	if n := len(tr.Cards()); n != 0 {
		t.Fatalf("got %d cards after reset, want 0", n)
	}
	tr.FlushPending()
	if n := len(tr.Cards()); n != 0 {
		t.Fatalf("reset must drop buffered deltas too, got %d cards", n)
	}
}

func TestClampLines(t *testing.T) {
	long := strings.Repeat("line\n", 30) + "tail"
	got := clampLines(long, 12)
	if !strings.Contains(got, "more lines)") {
		t.Fatalf("clamped output missing suffix: %q", got)
	}
	if n := strings.Count(got, "\n"); n != 12 {
		t.Fatalf("got %d newlines, want 12", n)
	}

	short := "a\nb"
	if clampLines(short, 12) != short {
		t.Fatalf("short input must pass through")
	}
}
