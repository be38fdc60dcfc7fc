// Package docs holds the swagger spec served at /swagger/index.html.
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
        "/items": {
            "get": {
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "List all items",
                "parameters": [
                    {"type": "string", "enum": ["updated_at", "price"], "name": "sort", "in": "query"},
                    {"type": "string", "enum": ["asc", "desc"], "name": "dir", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.ItemResponse"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Create an item",
                "parameters": [
                    {"type": "string", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "name": "category", "in": "formData", "required": true},
                    {"type": "string", "name": "room", "in": "formData", "required": true},
                    {"type": "string", "name": "status", "in": "formData"},
                    {"type": "string", "name": "brand", "in": "formData"},
                    {"type": "string", "name": "model", "in": "formData"},
                    {"type": "string", "name": "price", "in": "formData"},
                    {"type": "string", "name": "currency", "in": "formData"},
                    {"type": "string", "name": "url", "in": "formData"},
                    {"type": "string", "name": "note", "in": "formData"},
                    {"type": "file", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.ItemResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/items/overview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Grouped and aggregated item view",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "room", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "enum": ["updated_at", "price"], "name": "sort", "in": "query"},
                    {"type": "string", "enum": ["asc", "desc"], "name": "dir", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.OverviewResponse"}}
                }
            }
        },
        "/items/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Get one item",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ItemResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["items"],
                "summary": "Update an item",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ItemResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["items"],
                "summary": "Delete an item",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/meta": {
            "get": {
                "produces": ["application/json"],
                "tags": ["meta"],
                "summary": "Configured rooms, statuses and currency",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MetaResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current authenticated user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "handler.ItemResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "room": {"type": "string"},
                "brand": {"type": "string"},
                "model": {"type": "string"},
                "price": {"type": "string"},
                "currency": {"type": "string"},
                "url": {"type": "string"},
                "note": {"type": "string"},
                "status": {"type": "string"},
                "imagePath": {"type": "string"},
                "imageUrl": {"type": "string"},
                "thumbnailUrl": {"type": "string"},
                "purchasedAt": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "handler.OverviewResponse": {
            "type": "object",
            "properties": {
                "groups": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "room": {"type": "string"},
                            "items": {"type": "array", "items": {"$ref": "#/definitions/handler.ItemResponse"}}
                        }
                    }
                },
                "categories": {"type": "array", "items": {"type": "string"}},
                "totals": {"type": "object", "additionalProperties": {"type": "string"}},
                "filteredCount": {"type": "integer"},
                "totalCount": {"type": "integer"}
            }
        },
        "handler.MetaResponse": {
            "type": "object",
            "properties": {
                "rooms": {"type": "array", "items": {"type": "string"}},
                "statuses": {"type": "array", "items": {"type": "string"}},
                "initialStatus": {"type": "string"},
                "purchasedStatus": {"type": "string"},
                "defaultCurrency": {"type": "string"}
            }
        },
        "handler.MeResponse": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "pictureUrl": {"type": "string"},
                "isAdmin": {"type": "boolean"}
            }
        },
        "handler.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"},
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "field": {"type": "string"},
                            "message": {"type": "string"}
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Homelist API",
	Description:      "Household purchase tracking API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
