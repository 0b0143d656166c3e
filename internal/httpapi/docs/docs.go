// Package docs registers the OpenAPI document served by the Swagger UI.
// Regenerate with `swag init -g cmd/modelview/docs.go -o internal/httpapi/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {"name": "modelview maintainers"},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {"get": {"summary": "Liveness probe", "produces": ["text/plain"], "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"summary": "Readiness probe (backend channel open)", "produces": ["text/plain"], "responses": {"200": {"description": "ready"}, "503": {"description": "disconnected"}}}},
        "/status": {"get": {"summary": "Session status", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}},
        "/models": {"get": {"summary": "Catalog", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}}}},
        "/scene": {"get": {"summary": "Placed models and camera", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SceneResponse"}}}}},
        "/events": {"get": {"summary": "NDJSON stream of session status", "produces": ["application/x-ndjson"], "responses": {"200": {"description": "stream of StatusResponse lines"}}}},
        "/select": {"post": {
            "summary": "Change the selection",
            "consumes": ["application/json"],
            "produces": ["application/json"],
            "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/types.SelectRequest"}}],
            "responses": {
                "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.SelectResponse"}},
                "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                "503": {"description": "Session stopped", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
            }
        }}
    },
    "definitions": {
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string", "example": "invalid JSON body"}, "code": {"type": "integer", "example": 400}}},
        "types.SelectRequest": {"type": "object", "properties": {"id": {"type": "integer", "example": 3}, "all": {"type": "boolean"}, "none": {"type": "boolean"}}},
        "types.SelectResponse": {"type": "object", "properties": {"kind": {"type": "string", "example": "single"}, "id": {"type": "integer", "example": 3}}},
        "types.Selection": {"type": "object", "properties": {"kind": {"type": "string", "example": "single"}, "id": {"type": "integer", "example": 3}}},
        "types.ModelSummary": {"type": "object", "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "label": {"type": "string"}, "has_payload": {"type": "boolean"}}},
        "types.ModelsResponse": {"type": "object", "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelSummary"}}}},
        "types.Bounds": {"type": "object", "properties": {"min": {"type": "array", "items": {"type": "number"}}, "max": {"type": "array", "items": {"type": "number"}}}},
        "types.PlacedModel": {"type": "object", "properties": {"id": {"type": "integer"}, "slot": {"type": "integer"}, "bounds": {"$ref": "#/definitions/types.Bounds"}}},
        "types.View": {"type": "object", "properties": {"target": {"type": "array", "items": {"type": "number"}}, "camera": {"type": "array", "items": {"type": "number"}}, "distance": {"type": "number"}, "key_light": {"type": "array", "items": {"type": "number"}}}},
        "types.SceneResponse": {"type": "object", "properties": {"placed": {"type": "array", "items": {"$ref": "#/definitions/types.PlacedModel"}}, "bounds": {"$ref": "#/definitions/types.Bounds"}, "view": {"$ref": "#/definitions/types.View"}, "parsing": {"type": "integer"}}},
        "types.StatusResponse": {"type": "object", "properties": {
            "session_id": {"type": "string"}, "url": {"type": "string"}, "connected": {"type": "boolean"},
            "catalog_received": {"type": "boolean"}, "selection": {"$ref": "#/definitions/types.Selection"},
            "pending_id": {"type": "integer"}, "status": {"type": "string"}, "last_error": {"type": "string"},
            "error_kind": {"type": "string"}, "model_count": {"type": "integer"}, "placed_count": {"type": "integer"},
            "epoch": {"type": "integer"}, "uptime_seconds": {"type": "integer"}, "updated_unix": {"type": "integer"}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "modelview status API",
	Description:      "Local HTTP view of a modelview session: catalog, selection, scene and metrics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
