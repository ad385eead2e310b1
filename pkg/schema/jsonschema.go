package schema

import "github.com/invopop/jsonschema"

// Schema is the parameter schema handed to LLM providers in tool
// definitions. Providers want a bare properties object, not a full
// JSON Schema document, so only the parts they consume are kept.
type Schema struct {
	Properties any
	Required   []string
}

func (s Schema) Ptr() *Schema {
	return &s
}

// Get reflects T into a Schema. Struct fields use `json` names and
// `jsonschema` tags for descriptions; fields not marked omitempty are
// required. See https://github.com/invopop/jsonschema.
func Get[T any]() Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var v T
	s := reflector.Reflect(v)
	return Schema{
		Properties: s.Properties,
		Required:   s.Required,
	}
}
