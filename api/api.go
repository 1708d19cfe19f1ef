// Package api carries the OpenAPI document served by the swagger route.
package api

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
