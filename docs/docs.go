// Package docs registers the OpenAPI description of the station API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/ev-stations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stations"],
                "summary": "Search EV charging stations inside a bounding box",
                "parameters": [
                    {"type": "number", "description": "southern edge", "name": "min_lat", "in": "query", "required": true},
                    {"type": "number", "description": "western edge", "name": "min_lon", "in": "query", "required": true},
                    {"type": "number", "description": "northern edge", "name": "max_lat", "in": "query", "required": true},
                    {"type": "number", "description": "eastern edge", "name": "max_lon", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StationsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "504": {"description": "Gateway Timeout", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/ev-stations/availability/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stations"],
                "summary": "Real-time availability of a charging park",
                "parameters": [
                    {"type": "string", "description": "charging availability id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handler.StationsResponse": {
            "type": "object",
            "properties": {
                "results": {
                    "type": "array",
                    "items": {"type": "object", "additionalProperties": {}}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EV Station Map API",
	Description:      "Bounding box search for EV charging stations backed by TomTom batch search.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
