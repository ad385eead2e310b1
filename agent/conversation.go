package agent

import (
	"codeward/llm"
	"codeward/llm/schema"
	"codeward/session"
)

// resumeWindow caps how many transcript messages a resumed session
// loads back into the model context.
const resumeWindow = 50

// Conversation owns the message list for one session: the system
// prompt, everything said since, and the transcript it mirrors to.
type Conversation struct {
	systemPrompt string
	messages     []schema.MessageParam
	log          *session.Log
	estimator    llm.TokenEstimator
	contextSize  int64
}

func NewConversation(systemPrompt string, log *session.Log, est llm.TokenEstimator, contextSize int64) *Conversation {
	c := &Conversation{
		systemPrompt: systemPrompt,
		log:          log,
		estimator:    est,
		contextSize:  contextSize,
	}
	c.reset()
	return c
}

func (c *Conversation) reset() {
	c.messages = []schema.MessageParam{schema.NewSystemMessageParam(c.systemPrompt)}
}

// Resume reloads the tail of the transcript into the message list.
func (c *Conversation) Resume() int {
	if c.log == nil {
		return 0
	}

	history := c.log.History()
	if len(history) > resumeWindow {
		history = history[len(history)-resumeWindow:]
	}
	// Never resume into the middle of a tool exchange: the provider
	// rejects tool results whose call is outside the window.
	for len(history) > 0 && history[0].Tool != nil {
		history = history[1:]
	}

	c.reset()
	c.messages = append(c.messages, history...)
	return len(history)
}

// Clear drops everything but the system prompt. The transcript on
// disk keeps its lines; only the model context resets.
func (c *Conversation) Clear() {
	c.reset()
}

func (c *Conversation) AppendUser(content string) {
	msg := schema.NewUserMessageParam(content)
	c.messages = append(c.messages, msg)
	if c.log != nil {
		_ = c.log.AddUserMessage(&msg)
	}
}

func (c *Conversation) AppendAssistant(msg *schema.CompletionMessage) {
	param := msg.ToParam()
	c.messages = append(c.messages, param)
	if c.log != nil {
		_ = c.log.AddAssistantMessage(&param)
	}
}

func (c *Conversation) AppendToolResult(callId, content string) {
	msg := schema.NewToolMessageParam(callId, content)
	c.messages = append(c.messages, msg)
	if c.log != nil {
		_ = c.log.AddToolMessage(&msg)
	}
}

// Messages returns the live message list for building a request. The
// turn loop is the only writer, one turn at a time.
func (c *Conversation) Messages() []schema.MessageParam {
	return c.messages
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// ContextPercent estimates how full the model context is, preferring
// the provider-reported prompt size when one is available.
func (c *Conversation) ContextPercent(req *schema.Request, usage *schema.CompletionUsage) float64 {
	if c.contextSize <= 0 {
		return 0
	}

	var tokens int64
	if usage != nil && usage.PromptTokens > 0 {
		tokens = usage.PromptTokens + usage.CompletionTokens
	} else if c.estimator != nil && req != nil {
		tokens = c.estimator.Estimate(req)
	}

	pct := float64(tokens) / float64(c.contextSize) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
