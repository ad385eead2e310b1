package schema

import (
	"fmt"

	"codeward/pkg/schema"
)

// ToolDefinitionParam identifies a tool offered to the model.
type ToolDefinitionParam struct {
	Name        string
	Description string
}

// ToolParam describes one callable tool in a request.
type ToolParam struct {
	Definition *ToolDefinitionParam
	// Parameters is a JSON schema object for the tool arguments.
	Parameters map[string]any
}

func NewToolParam(name, description string, s *schema.Schema) ToolParam {
	params := map[string]any{"type": "object"}
	if s != nil {
		if s.Properties != nil {
			params["properties"] = s.Properties
		}
		if len(s.Required) > 0 {
			params["required"] = s.Required
		}
	}
	return ToolParam{
		Definition: &ToolDefinitionParam{Name: name, Description: description},
		Parameters: params,
	}
}

// GetContent flattens the tool description for token estimation.
func (t *ToolParam) GetContent() string {
	if t.Definition == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %v", t.Definition.Name, t.Definition.Description, t.Parameters)
}

type ToolCallType string

const (
	ToolCallTypeFunction ToolCallType = "function"
)

// ToolCallFunctionParam is the function half of an echoed tool call.
type ToolCallFunctionParam struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallParam echoes one assistant tool call back in the history.
type ToolCallParam struct {
	Id       string                 `json:"id"`
	Type     ToolCallType           `json:"type"`
	Function *ToolCallFunctionParam `json:"function"`
}

// CompletionToolCallFunction is the function half of a returned tool call.
type CompletionToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CompletionToolCall is one tool call requested by the model.
type CompletionToolCall struct {
	Id       string                     `json:"id"`
	Type     ToolCallType               `json:"type"`
	Function CompletionToolCallFunction `json:"function"`
}

func (c *CompletionToolCall) ToToolCallParam() *ToolCallParam {
	return &ToolCallParam{
		Id:   c.Id,
		Type: c.Type,
		Function: &ToolCallFunctionParam{
			Name:      c.Function.Name,
			Arguments: c.Function.Arguments,
		},
	}
}
