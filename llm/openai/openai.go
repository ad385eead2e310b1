package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	openaiparam "github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/packages/respjson"
	"github.com/openai/openai-go/v3/shared"

	"codeward/llm"
	"codeward/llm/schema"
	"codeward/pkg/safe"
)

// Extra response field used by reasoning-capable openai-compatible
// endpoints. Not part of the official response schema, so it travels
// through the raw JSON accessors.
const keyReasoningContent = "reasoning_content"

var _ llm.LLM = (*OpenAI)(nil)

// OpenAI speaks the openai chat completion protocol, including
// openai-compatible third-party endpoints.
type OpenAI struct {
	client *openai.Client
}

type Config struct {
	ApiKey  string
	BaseUrl string
}

func New(config Config) (*OpenAI, error) {
	if config.ApiKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(config.ApiKey)}
	if config.BaseUrl != "" {
		opts = append(opts, option.WithBaseURL(config.BaseUrl))
	}
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client}, nil
}

func toSystemMessageParamUnion(param *schema.SystemMessageParam) openai.ChatCompletionMessageParamUnion {
	msg := openai.ChatCompletionSystemMessageParam{}
	msg.Content.OfString = openaiparam.NewOpt(param.Content)
	return openai.ChatCompletionMessageParamUnion{OfSystem: &msg}
}

func toUserMessageParamUnion(param *schema.UserMessageParam) openai.ChatCompletionMessageParamUnion {
	msg := openai.ChatCompletionUserMessageParam{}
	msg.Content.OfString = openaiparam.NewOpt(param.Content)
	return openai.ChatCompletionMessageParamUnion{OfUser: &msg}
}

func toAssistantMessageParamUnion(param *schema.AssistantMessageParam) openai.ChatCompletionMessageParamUnion {
	msg := openai.ChatCompletionAssistantMessageParam{}
	if param.Content != "" {
		msg.Content.OfString = openaiparam.NewOpt(param.Content)
	}
	for _, call := range param.ToolCalls {
		if call == nil || call.Function == nil {
			continue
		}
		tc := openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.Id,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			},
		}
		msg.ToolCalls = append(msg.ToolCalls, tc)
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &msg}
}

func toToolMessageParamUnion(param *schema.ToolMessageParam) openai.ChatCompletionMessageParamUnion {
	msg := openai.ChatCompletionToolMessageParam{ToolCallID: param.ToolCallId}
	msg.Content.OfString = openaiparam.NewOpt(param.Content)
	return openai.ChatCompletionMessageParamUnion{OfTool: &msg}
}

func toToolUnionParams(tools []schema.ToolParam) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		if tool.Definition == nil {
			continue
		}
		fn := shared.FunctionDefinitionParam{
			Name:        tool.Definition.Name,
			Description: openaiparam.NewOpt(tool.Definition.Description),
			Parameters:  shared.FunctionParameters(tool.Parameters),
		}
		out = append(out, openai.ChatCompletionFunctionTool(fn))
	}
	return out
}

// toChatCompletionNewParams converts a request. Reasoning content on
// assistant history messages is not part of the official schema, so it
// rides along as per-message raw JSON options.
func toChatCompletionNewParams(req *schema.Request) (openai.ChatCompletionNewParams, []option.RequestOption) {
	params := openai.ChatCompletionNewParams{
		Model: req.Model,
	}
	if req.Temperature >= 0 {
		params.Temperature = openaiparam.NewOpt(req.Temperature)
	}
	if req.MaxTokens >= 0 {
		params.MaxTokens = openaiparam.NewOpt(req.MaxTokens)
	}

	var opts []option.RequestOption
	for idx := range req.Messages {
		msg := &req.Messages[idx]
		switch {
		case msg.System != nil:
			params.Messages = append(params.Messages, toSystemMessageParamUnion(msg.System))
		case msg.User != nil:
			params.Messages = append(params.Messages, toUserMessageParamUnion(msg.User))
		case msg.Assistant != nil:
			params.Messages = append(params.Messages, toAssistantMessageParamUnion(msg.Assistant))
			if msg.Assistant.ReasoningContent != "" {
				opts = append(opts, option.WithJSONSet(
					fmt.Sprintf("messages.%d.%s", idx, keyReasoningContent),
					msg.Assistant.ReasoningContent,
				))
			}
		case msg.Tool != nil:
			params.Messages = append(params.Messages, toToolMessageParamUnion(msg.Tool))
		}
	}
	params.Tools = toToolUnionParams(req.Tools)

	return params, opts
}

func extraStringField(fields map[string]respjson.Field, key string) string {
	field, ok := fields[key]
	if !ok || !field.Valid() {
		return ""
	}
	var s string
	if err := json.Unmarshal([]byte(field.Raw()), &s); err != nil {
		return ""
	}
	return s
}

func toChoices(completion *openai.ChatCompletion) []schema.Choice {
	choices := make([]schema.Choice, 0, len(completion.Choices))
	for _, choice := range completion.Choices {
		message := schema.CompletionMessage{
			Role:             schema.Role(choice.Message.Role),
			Content:          choice.Message.Content,
			ReasoningContent: extraStringField(choice.Message.JSON.ExtraFields, keyReasoningContent),
		}
		for _, call := range choice.Message.ToolCalls {
			message.ToolCalls = append(message.ToolCalls, schema.CompletionToolCall{
				Id:   call.ID,
				Type: schema.ToolCallTypeFunction,
				Function: schema.CompletionToolCallFunction{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		choices = append(choices, schema.Choice{
			Index:        choice.Index,
			FinishReason: schema.FinishReason(choice.FinishReason),
			Message:      message,
		})
	}
	return choices
}

func (o *OpenAI) ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error) {
	params, opts := toChatCompletionNewParams(req)
	completion, err := o.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}

	return &schema.Response{
		Id:      completion.ID,
		Object:  string(completion.Object),
		Created: completion.Created,
		Model:   completion.Model,
		Choices: toChoices(completion),
		Usage: schema.CompletionUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
	}, nil
}

func toStreamResponseChunk(cur openai.ChatCompletionChunk) *schema.StreamResponseChunk {
	chunk := &schema.StreamResponseChunk{
		Id:      cur.ID,
		Object:  string(cur.Object),
		Created: cur.Created,
		Model:   cur.Model,
	}
	for _, choice := range cur.Choices {
		delta := schema.StreamChoiceDelta{
			Role:             schema.Role(choice.Delta.Role),
			Content:          choice.Delta.Content,
			ReasoningContent: extraStringField(choice.Delta.JSON.ExtraFields, keyReasoningContent),
		}
		for _, call := range choice.Delta.ToolCalls {
			delta.ToolCalls = append(delta.ToolCalls, schema.StreamChoiceDeltaToolCall{
				Index: call.Index,
				Id:    call.ID,
				Type:  schema.ToolCallTypeFunction,
				Function: schema.CompletionToolCallFunction{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		chunk.Choices = append(chunk.Choices, schema.StreamChoice{
			Index:        choice.Index,
			FinishReason: schema.FinishReason(choice.FinishReason),
			Delta:        delta,
		})
	}
	if cur.Usage.TotalTokens > 0 {
		chunk.Usage = &schema.CompletionUsage{
			PromptTokens:     cur.Usage.PromptTokens,
			CompletionTokens: cur.Usage.CompletionTokens,
			TotalTokens:      cur.Usage.TotalTokens,
		}
	}
	return chunk
}

func (o *OpenAI) ChatCompletionStream(ctx context.Context, req *schema.Request) (<-chan *schema.StreamResponseChunk, error) {
	params, opts := toChatCompletionNewParams(req)
	params.StreamOptions = openai.ChatCompletionStreamOptionsParam{
		IncludeUsage: openaiparam.NewOpt(true),
	}

	stream := o.client.Chat.Completions.NewStreaming(ctx, params, opts...)
	ch := make(chan *schema.StreamResponseChunk, 16)

	safe.Go("openai-stream", func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			select {
			case <-ctx.Done():
				return
			case ch <- toStreamResponseChunk(stream.Current()):
			}
		}
		if err := stream.Err(); err != nil {
			ch <- &schema.StreamResponseChunk{Err: fmt.Errorf("openai: stream: %w", err)}
		}
	})

	return ch, nil
}
