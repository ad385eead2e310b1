package schema

import (
	"context"
	"sort"
	"strings"
)

// StreamChoiceDeltaToolCall is a fragment of one tool call. Fragments
// sharing an Index belong to the same call; Arguments concatenate in
// arrival order.
type StreamChoiceDeltaToolCall struct {
	Index    int64
	Id       string
	Type     ToolCallType
	Function CompletionToolCallFunction
}

// StreamChoiceDelta is the incremental payload of one chunk.
type StreamChoiceDelta struct {
	Role             Role
	Content          string
	ReasoningContent string
	ToolCalls        []StreamChoiceDeltaToolCall
}

func (d *StreamChoiceDelta) HasToolCalls() bool {
	return len(d.ToolCalls) > 0
}

type StreamChoice struct {
	Index        int64
	FinishReason FinishReason
	Delta        StreamChoiceDelta
}

// StreamResponseChunk is one item of a completion stream. Err reports a
// mid-stream failure; no further chunks follow one with Err set.
type StreamResponseChunk struct {
	Id      string
	Object  string
	Created int64
	Model   string
	Choices []StreamChoice
	Usage   *CompletionUsage
	Err     error
}

func (c *StreamResponseChunk) FirstChoice() *StreamChoice {
	if len(c.Choices) == 0 {
		return nil
	}
	return &c.Choices[0]
}

type toolCallBuffer struct {
	index int64
	id    string
	name  string
	args  strings.Builder
}

// AccumulateStream drains one completion stream to the end, invoking
// onDelta for each content or reasoning fragment as it arrives. Tool
// call fragments are stitched together by index. The assembled
// assistant message and the last reported usage (nil when the provider
// sent none) are returned once the provider closes the channel.
func AccumulateStream(ctx context.Context, ch <-chan *StreamResponseChunk, onDelta func(StreamChoiceDelta)) (*CompletionMessage, *CompletionUsage, error) {
	var (
		content   strings.Builder
		reasoning strings.Builder
		usage     *CompletionUsage
		buffers   = make(map[int64]*toolCallBuffer)
	)

loop:
	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				break loop
			}
			if chunk.Err != nil {
				return nil, nil, chunk.Err
			}
			if chunk.Usage != nil {
				u := *chunk.Usage
				usage = &u
			}
			choice := chunk.FirstChoice()
			if choice == nil {
				continue
			}
			delta := choice.Delta
			if delta.Content != "" || delta.ReasoningContent != "" {
				content.WriteString(delta.Content)
				reasoning.WriteString(delta.ReasoningContent)
				if onDelta != nil {
					onDelta(delta)
				}
			}
			for _, tc := range delta.ToolCalls {
				buf, ok := buffers[tc.Index]
				if !ok {
					buf = &toolCallBuffer{index: tc.Index}
					buffers[tc.Index] = buf
				}
				if buf.id == "" {
					buf.id = tc.Id
				}
				if buf.name == "" {
					buf.name = tc.Function.Name
				}
				buf.args.WriteString(tc.Function.Arguments)
			}
		}
	}

	msg := &CompletionMessage{
		Role:             RoleAssistant,
		Content:          content.String(),
		ReasoningContent: reasoning.String(),
	}
	if len(buffers) > 0 {
		ordered := make([]*toolCallBuffer, 0, len(buffers))
		for _, buf := range buffers {
			ordered = append(ordered, buf)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].index < ordered[j].index })
		for _, buf := range ordered {
			msg.ToolCalls = append(msg.ToolCalls, CompletionToolCall{
				Id:   buf.id,
				Type: ToolCallTypeFunction,
				Function: CompletionToolCallFunction{
					Name:      buf.name,
					Arguments: buf.args.String(),
				},
			})
		}
	}
	return msg, usage, nil
}
