// Package api embeds the HTTP API contract.
package api

import _ "embed"

// OpenAPISpec is the OpenAPI 3 document served at /api/openapi.yaml.
//
//go:embed openapi/openapi.yaml
var OpenAPISpec []byte
