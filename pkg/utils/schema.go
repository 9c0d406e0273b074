package utils

import "github.com/invopop/jsonschema"

// GenerateSchema reflects a JSON schema from the type T for use in
// structured model output requests. The schema is inlined with no
// definition references and rejects unknown properties, which is what
// strict response-format validation requires.
func GenerateSchema[T any]() any {
	r := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}

	var zero T

	return r.Reflect(zero)
}
