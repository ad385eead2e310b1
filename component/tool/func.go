package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"codeward/pkg/schema"
)

type InvokeFunc[T any] func(ctx context.Context, input T) (string, error)

type funcTool[T any] struct {
	def Definition
	fn  InvokeFunc[T]
}

func (t *funcTool[T]) Definition() Definition {
	return t.def
}

func (t *funcTool[T]) Invoke(ctx context.Context, arguments string) (string, error) {
	var input T
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &input); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w. Pass a JSON object matching the tool schema", t.def.Name, err)
		}
	}

	return t.fn(ctx, input)
}

// Func builds a Tool from a typed function. The input schema is
// reflected from T unless the definition already carries one.
func Func[T any](def Definition, fn InvokeFunc[T]) Tool {
	if def.Schema == nil {
		def.Schema = schema.Get[T]().Ptr()
	}

	return &funcTool[T]{def: def, fn: fn}
}
