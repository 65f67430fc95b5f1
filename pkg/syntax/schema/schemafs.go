// Package schema provides the embedded JSON schema of serialized syntax trees.
package schema

import "embed"

// TreeSchemaFS contains the embedded tree JSON schema.
//
//go:embed tree-schema.json
var TreeSchemaFS embed.FS

// TreeSchemaFile is the name of the schema inside TreeSchemaFS.
const TreeSchemaFile = "tree-schema.json"
