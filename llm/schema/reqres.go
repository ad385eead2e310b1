package schema

// Request is a provider-neutral chat completion request.
type Request struct {
	Model    string
	Messages []MessageParam
	Tools    []ToolParam
	// Temperature below zero means provider default.
	Temperature float64
	// MaxTokens below zero means provider default.
	MaxTokens int64
}

func NewRequest(model string, messages []MessageParam) *Request {
	return &Request{
		Model:       model,
		Messages:    messages,
		Temperature: -1,
		MaxTokens:   -1,
	}
}

func (r *Request) WithTools(tools []ToolParam) *Request {
	r.Tools = tools
	return r
}

type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonLength    FinishReason = "length"
	FinishReasonToolCalls FinishReason = "tool_calls"
)

func (f FinishReason) IsStop() bool      { return f == FinishReasonStop }
func (f FinishReason) IsLength() bool    { return f == FinishReasonLength }
func (f FinishReason) IsToolCalls() bool { return f == FinishReasonToolCalls }

// CompletionMessage is the assistant message of one choice.
type CompletionMessage struct {
	Role             Role
	Content          string
	ReasoningContent string
	ToolCalls        []CompletionToolCall
}

func (m *CompletionMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ToParam converts the completion into a history message param.
func (m *CompletionMessage) ToParam() MessageParam {
	var calls []*ToolCallParam
	for i := range m.ToolCalls {
		calls = append(calls, m.ToolCalls[i].ToToolCallParam())
	}
	return NewAssistantMessageParam(m.Content, m.ReasoningContent, calls)
}

type Choice struct {
	Index        int64
	FinishReason FinishReason
	Message      CompletionMessage
}

// CompletionUsage reports token accounting for one exchange.
type CompletionUsage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// Response is a provider-neutral chat completion response.
type Response struct {
	Id      string
	Object  string
	Created int64
	Model   string
	Choices []Choice
	Usage   CompletionUsage
}

// FirstChoice returns the first choice or nil when the provider
// returned none.
func (r *Response) FirstChoice() *Choice {
	if len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0]
}
