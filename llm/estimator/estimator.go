package estimator

import (
	"unicode"

	"codeward/llm"
	"codeward/llm/schema"
)

// perMessageOverhead approximates the chat format framing around every
// message.
const perMessageOverhead = 4

var _ llm.TokenEstimator = (*Heuristic)(nil)

// Heuristic estimates token usage without a real tokenizer. CJK runes
// count as one token each; everything else averages four characters
// per token. Good enough to drive a context gauge, nothing more.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Estimate(req *schema.Request) int64 {
	var total int64
	for i := range req.Messages {
		msg := &req.Messages[i]
		total += perMessageOverhead
		total += estimateText(msg.GetContent())
		if msg.Assistant != nil {
			total += estimateText(msg.Assistant.ReasoningContent)
			for _, call := range msg.Assistant.ToolCalls {
				if call != nil && call.Function != nil {
					total += estimateText(call.Function.Name)
					total += estimateText(call.Function.Arguments)
				}
			}
		}
	}
	for i := range req.Tools {
		total += estimateText(req.Tools[i].GetContent())
	}
	return total
}

func estimateText(s string) int64 {
	var cjk, other int64
	for _, r := range s {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	return cjk + (other+3)/4
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
