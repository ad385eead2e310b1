package llm

import (
	"context"

	"codeward/llm/schema"
)

// LLM is a provider-neutral chat completion client.
type LLM interface {
	// ChatCompletion sends one request and waits for the full response.
	ChatCompletion(ctx context.Context, req *schema.Request) (*schema.Response, error)
	// ChatCompletionStream sends one request and returns a channel of
	// incremental chunks. The channel is closed when the stream ends;
	// a chunk with Err set reports a mid-stream failure.
	ChatCompletionStream(ctx context.Context, req *schema.Request) (<-chan *schema.StreamResponseChunk, error)
}

// TokenEstimator reports an approximate token count for a pending request.
type TokenEstimator interface {
	Estimate(req *schema.Request) int64
}
