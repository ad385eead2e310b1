package schema

import (
	"context"
	"errors"
	"testing"
)

func chunkOf(delta StreamChoiceDelta) *StreamResponseChunk {
	return &StreamResponseChunk{Choices: []StreamChoice{{Delta: delta}}}
}

func TestAccumulateStream(t *testing.T) {
	ch := make(chan *StreamResponseChunk, 8)
	ch <- chunkOf(StreamChoiceDelta{Content: "Hel"})
	ch <- chunkOf(StreamChoiceDelta{Content: "lo"})
	ch <- chunkOf(StreamChoiceDelta{ToolCalls: []StreamChoiceDeltaToolCall{{
		Index:    1,
		Id:       "call-b",
		Function: CompletionToolCallFunction{Name: "write_file", Arguments: `{"pa`},
	}}})
	ch <- chunkOf(StreamChoiceDelta{ToolCalls: []StreamChoiceDeltaToolCall{{
		Index:    0,
		Id:       "call-a",
		Function: CompletionToolCallFunction{Name: "read_file", Arguments: `{}`},
	}}})
	ch <- chunkOf(StreamChoiceDelta{ToolCalls: []StreamChoiceDeltaToolCall{{
		Index:    1,
		Function: CompletionToolCallFunction{Arguments: `th":"x"}`},
	}}})
	ch <- &StreamResponseChunk{Usage: &CompletionUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
	close(ch)

	var deltas int
	msg, usage, err := AccumulateStream(t.Context(), ch, func(d StreamChoiceDelta) {
		deltas++
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.Content != "Hello" {
		t.Fatalf("content = %q, want Hello", msg.Content)
	}
	if deltas != 2 {
		t.Fatalf("onDelta fired %d times, want 2", deltas)
	}
	if len(msg.ToolCalls) != 2 {
		t.Fatalf("tool calls = %d, want 2", len(msg.ToolCalls))
	}
	if msg.ToolCalls[0].Id != "call-a" || msg.ToolCalls[1].Id != "call-b" {
		t.Fatalf("tool calls should order by index: %+v", msg.ToolCalls)
	}
	if got := msg.ToolCalls[1].Function.Arguments; got != `{"path":"x"}` {
		t.Fatalf("fragmented arguments = %q", got)
	}
	if usage == nil || usage.TotalTokens != 15 {
		t.Fatalf("usage = %+v, want total 15", usage)
	}
}

func TestAccumulateStreamErr(t *testing.T) {
	wantErr := errors.New("boom")
	ch := make(chan *StreamResponseChunk, 2)
	ch <- chunkOf(StreamChoiceDelta{Content: "partial"})
	ch <- &StreamResponseChunk{Err: wantErr}
	close(ch)

	_, _, err := AccumulateStream(t.Context(), ch, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestAccumulateStreamCanceled(t *testing.T) {
	ch := make(chan *StreamResponseChunk)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := AccumulateStream(ctx, ch, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
