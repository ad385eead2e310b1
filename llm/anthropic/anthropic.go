package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"codeward/llm"
	"codeward/llm/schema"
	"codeward/pkg/safe"
)

// Anthropic requires max_tokens on every request; used when the
// request leaves it unset.
const defaultMaxTokens = 8192

var _ llm.LLM = (*Anthropic)(nil)

// Anthropic speaks the Anthropic messages protocol.
type Anthropic struct {
	client anthropic.Client
}

type Config struct {
	ApiKey  string
	BaseUrl string
}

func New(config Config) (*Anthropic, error) {
	if config.ApiKey == "" {
		return nil, fmt.Errorf("anthropic: api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(config.ApiKey)}
	if config.BaseUrl != "" {
		opts = append(opts, option.WithBaseURL(config.BaseUrl))
	}
	return &Anthropic{client: anthropic.NewClient(opts...)}, nil
}

func toAssistantBlocks(param *schema.AssistantMessageParam) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if param.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(param.Content))
	}
	for _, call := range param.ToolCalls {
		if call == nil || call.Function == nil {
			continue
		}
		blocks = append(blocks, anthropic.ContentBlockParamUnion{
			OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    call.Id,
				Name:  call.Function.Name,
				Input: json.RawMessage(call.Function.Arguments),
			},
		})
	}
	return blocks
}

func toToolResultBlock(param *schema.ToolMessageParam) anthropic.ContentBlockParamUnion {
	return anthropic.ContentBlockParamUnion{
		OfToolResult: &anthropic.ToolResultBlockParam{
			ToolUseID: param.ToolCallId,
			Content: []anthropic.ToolResultBlockParamContentUnion{
				{OfText: &anthropic.TextBlockParam{Text: param.Content}},
			},
		},
	}
}

func splitParameters(parameters map[string]any) (any, []string) {
	if parameters == nil {
		return map[string]any{}, nil
	}
	properties := parameters["properties"]
	if properties == nil {
		properties = map[string]any{}
	}
	required, _ := parameters["required"].([]string)
	return properties, required
}

func toToolUnionParams(tools []schema.ToolParam) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Definition == nil {
			continue
		}
		properties, required := splitParameters(tool.Parameters)
		inputSchema := anthropic.ToolInputSchemaParam{Properties: properties}
		if len(required) > 0 {
			inputSchema.SetExtraFields(map[string]any{"required": required})
		}
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Definition.Name,
				Description: anthropic.String(tool.Definition.Description),
				InputSchema: inputSchema,
			},
		})
	}
	return out
}

// toMessageNewParams converts a request. System messages move to the
// dedicated system field; consecutive roles are kept as-is since the
// API tolerates them.
func toMessageNewParams(req *schema.Request) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens < 0 {
		maxTokens = defaultMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: maxTokens,
	}
	if req.Temperature >= 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	for i := range req.Messages {
		msg := &req.Messages[i]
		switch {
		case msg.System != nil:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.System.Content})
		case msg.User != nil:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.User.Content)))
		case msg.Assistant != nil:
			if blocks := toAssistantBlocks(msg.Assistant); len(blocks) > 0 {
				params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
			}
		case msg.Tool != nil:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(toToolResultBlock(msg.Tool)))
		}
	}
	params.Tools = toToolUnionParams(req.Tools)

	return params
}

func toFinishReason(reason anthropic.StopReason) schema.FinishReason {
	switch reason {
	case anthropic.StopReasonToolUse:
		return schema.FinishReasonToolCalls
	case anthropic.StopReasonMaxTokens:
		return schema.FinishReasonLength
	default:
		return schema.FinishReasonStop
	}
}

func toCompletionMessage(message *anthropic.Message) schema.CompletionMessage {
	out := schema.CompletionMessage{Role: schema.RoleAssistant}
	for _, block := range message.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += b.Text
		case anthropic.ThinkingBlock:
			out.ReasoningContent += b.Thinking
		case anthropic.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, schema.CompletionToolCall{
				Id:   b.ID,
				Type: schema.ToolCallTypeFunction,
				Function: schema.CompletionToolCallFunction{
					Name:      b.Name,
					Arguments: b.JSON.Input.Raw(),
				},
			})
		}
	}
	return out
}

func (a *Anthropic) ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	params := toMessageNewParams(req)
	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic: messages: %w", err)
	}

	return &schema.Response{
		Id:      message.ID,
		Object:  "chat.completion",
		Model:   string(message.Model),
		Choices: []schema.Choice{{
			FinishReason: toFinishReason(message.StopReason),
			Message:      toCompletionMessage(message),
		}},
		Usage: schema.CompletionUsage{
			PromptTokens:     message.Usage.InputTokens,
			CompletionTokens: message.Usage.OutputTokens,
			TotalTokens:      message.Usage.InputTokens + message.Usage.OutputTokens,
		},
	}, nil
}

func deltaChunk(id string, delta schema.StreamChoiceDelta) *schema.StreamResponseChunk {
	return &schema.StreamResponseChunk{
		Id:      id,
		Object:  "chat.completion.chunk",
		Choices: []schema.StreamChoice{{Delta: delta}},
	}
}

func (a *Anthropic) ChatCompletionStream(ctx context.Context, req *schema.Request) (<-chan *schema.StreamResponseChunk, error) {
	params := toMessageNewParams(req)
	stream := a.client.Messages.NewStreaming(ctx, params)
	ch := make(chan *schema.StreamResponseChunk, 16)

	safe.Go("anthropic-stream", func() {
		defer close(ch)
		defer stream.Close()

		emit := func(chunk *schema.StreamResponseChunk) bool {
			select {
			case <-ctx.Done():
				return false
			case ch <- chunk:
				return true
			}
		}

		var message anthropic.Message
		for stream.Next() {
			event := stream.Current()
			if err := message.Accumulate(event); err != nil {
				emit(&schema.StreamResponseChunk{Err: fmt.Errorf("anthropic: accumulate: %w", err)})
				return
			}

			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				if block, ok := ev.ContentBlock.AsAny().(anthropic.ToolUseBlock); ok {
					chunk := deltaChunk(message.ID, schema.StreamChoiceDelta{
						ToolCalls: []schema.StreamChoiceDeltaToolCall{{
							Index: ev.Index,
							Id:    block.ID,
							Type:  schema.ToolCallTypeFunction,
							Function: schema.CompletionToolCallFunction{
								Name: block.Name,
							},
						}},
					})
					if !emit(chunk) {
						return
					}
				}
			case anthropic.ContentBlockDeltaEvent:
				var chunk *schema.StreamResponseChunk
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					chunk = deltaChunk(message.ID, schema.StreamChoiceDelta{Content: delta.Text})
				case anthropic.ThinkingDelta:
					chunk = deltaChunk(message.ID, schema.StreamChoiceDelta{ReasoningContent: delta.Thinking})
				case anthropic.InputJSONDelta:
					chunk = deltaChunk(message.ID, schema.StreamChoiceDelta{
						ToolCalls: []schema.StreamChoiceDeltaToolCall{{
							Index:    ev.Index,
							Function: schema.CompletionToolCallFunction{Arguments: delta.PartialJSON},
						}},
					})
				}
				if chunk != nil && !emit(chunk) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			emit(&schema.StreamResponseChunk{Err: fmt.Errorf("anthropic: stream: %w", err)})
			return
		}

		final := &schema.StreamResponseChunk{
			Id:     message.ID,
			Object: "chat.completion.chunk",
			Model:  string(message.Model),
			Choices: []schema.StreamChoice{{
				FinishReason: toFinishReason(message.StopReason),
			}},
			Usage: &schema.CompletionUsage{
				PromptTokens:     message.Usage.InputTokens,
				CompletionTokens: message.Usage.OutputTokens,
				TotalTokens:      message.Usage.InputTokens + message.Usage.OutputTokens,
			},
		}
		emit(final)
	})

	return ch, nil
}
