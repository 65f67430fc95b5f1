package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is one schema error in a validated document.
type Violation struct {
	Field       string
	Description string
}

// Validate checks a JSON document against the tree schema. It returns the
// violations found; an error means the schema or the document could not be
// loaded at all.
func Validate(document []byte) ([]Violation, error) {
	schemaBytes, err := TreeSchemaFS.ReadFile(TreeSchemaFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))

	for _, verr := range result.Errors() {
		violations = append(violations, Violation{
			Field:       verr.Field(),
			Description: verr.Description(),
		})
	}

	return violations, nil
}
