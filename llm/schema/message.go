package schema

// SystemMessageParam carries instructions that frame the whole conversation.
type SystemMessageParam struct {
	Content string `json:"content"`
}

// UserMessageParam carries one user input.
type UserMessageParam struct {
	Content string `json:"content"`
}

// AssistantMessageParam echoes a prior assistant turn back to the provider,
// including any tool calls it requested.
type AssistantMessageParam struct {
	Content          string           `json:"content"`
	ReasoningContent string           `json:"reasoning_content,omitzero"`
	ToolCalls        []*ToolCallParam `json:"tool_calls,omitzero"`
}

// ToolMessageParam carries the result of one tool call back to the provider.
type ToolMessageParam struct {
	ToolCallId string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// MessageParam is a union over the four message kinds. Exactly one
// field is non-nil.
type MessageParam struct {
	System    *SystemMessageParam    `json:"system,omitzero"`
	User      *UserMessageParam      `json:"user,omitzero"`
	Assistant *AssistantMessageParam `json:"assistant,omitzero"`
	Tool      *ToolMessageParam      `json:"tool,omitzero"`
}

func NewSystemMessageParam(content string) MessageParam {
	return MessageParam{System: &SystemMessageParam{Content: content}}
}

func NewUserMessageParam(content string) MessageParam {
	return MessageParam{User: &UserMessageParam{Content: content}}
}

func NewAssistantMessageParam(content, reasoningContent string, toolCalls []*ToolCallParam) MessageParam {
	return MessageParam{Assistant: &AssistantMessageParam{
		Content:          content,
		ReasoningContent: reasoningContent,
		ToolCalls:        toolCalls,
	}}
}

func NewToolMessageParam(toolCallId, content string) MessageParam {
	return MessageParam{Tool: &ToolMessageParam{ToolCallId: toolCallId, Content: content}}
}

func (p *MessageParam) Role() Role {
	switch {
	case p.System != nil:
		return RoleSystem
	case p.User != nil:
		return RoleUser
	case p.Assistant != nil:
		return RoleAssistant
	case p.Tool != nil:
		return RoleTool
	}
	return ""
}

// GetContent returns the textual payload of whichever variant is set.
func (p *MessageParam) GetContent() string {
	switch {
	case p.System != nil:
		return p.System.Content
	case p.User != nil:
		return p.User.Content
	case p.Assistant != nil:
		return p.Assistant.Content
	case p.Tool != nil:
		return p.Tool.Content
	}
	return ""
}
