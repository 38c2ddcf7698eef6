// Package docs registers the OpenAPI specification served by the Swagger UI
// route. The spec is maintained by hand alongside the handler annotations.
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
        "/trading/accounts/{account_id}/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Trading"],
                "summary": "List orders",
                "operationId": "listOrders",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "account_id", "in": "path", "required": true},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "maximum": 500, "name": "limit", "in": "query"},
                    {"type": "string", "name": "after", "in": "query"},
                    {"type": "string", "name": "until", "in": "query"},
                    {"type": "string", "name": "direction", "in": "query"},
                    {"type": "string", "name": "symbols", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Upstream orders, verbatim"},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/handlers.ValidationErrorResponse"}},
                    "502": {"description": "Upstream failure, verbatim"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Trading"],
                "summary": "Place an order",
                "operationId": "placeOrder",
                "parameters": [
                    {"type": "string", "name": "X-User-ID", "in": "header"},
                    {"type": "string", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "format": "uuid", "name": "account_id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PlaceOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "Upstream order, verbatim"},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/handlers.ValidationErrorResponse"}},
                    "429": {"description": "Admission denied", "schema": {"$ref": "#/definitions/handlers.RateLimitedResponse"}},
                    "502": {"description": "Upstream failure, verbatim"}
                }
            }
        },
        "/trading/accounts/{account_id}/orders/{order_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Trading"],
                "summary": "Get an order",
                "operationId": "getOrder",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "account_id", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "name": "order_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Upstream order, verbatim"},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/handlers.ValidationErrorResponse"}},
                    "502": {"description": "Upstream failure, verbatim"}
                }
            },
            "delete": {
                "tags": ["Trading"],
                "summary": "Cancel an order",
                "operationId": "cancelOrder",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "account_id", "in": "path", "required": true},
                    {"type": "string", "format": "uuid", "name": "order_id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/handlers.ValidationErrorResponse"}},
                    "502": {"description": "Upstream failure, verbatim"}
                }
            }
        },
        "/trading/accounts/{account_id}/positions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Trading"],
                "summary": "List open positions",
                "operationId": "listPositions",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "account_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Upstream positions, verbatim"},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/handlers.ValidationErrorResponse"}},
                    "502": {"description": "Upstream failure, verbatim"}
                }
            }
        },
        "/market/quotes/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Market"],
                "summary": "Latest quotes",
                "operationId": "latestQuotes",
                "parameters": [
                    {"type": "string", "name": "symbols", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Upstream quotes, verbatim"},
                    "400": {"description": "Validation failure", "schema": {"$ref": "#/definitions/handlers.ValidationErrorResponse"}},
                    "502": {"description": "Upstream failure, verbatim"}
                }
            }
        }
    },
    "definitions": {
        "handlers.PlaceOrderRequest": {
            "type": "object",
            "properties": {
                "symbol": {"type": "string", "example": "AAPL"},
                "asset_id": {"type": "integer", "example": 12345},
                "side": {"type": "string", "example": "buy"},
                "type": {"type": "string", "example": "limit"},
                "time_in_force": {"type": "string", "example": "day"},
                "qty": {"type": "string", "example": "10.5"},
                "notional": {"type": "string", "example": "2500"},
                "limit_price": {"type": "string", "example": "187.25"},
                "stop_price": {"type": "string", "example": "180.00"},
                "expires_at": {"type": "string", "example": "2026-09-30T20:00:00Z"},
                "client_order_id": {"type": "string", "example": "my-order-001"},
                "extended_hours": {"type": "boolean"}
            }
        },
        "handlers.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "validation_error"},
                "message": {"type": "string", "example": "order validation failed"},
                "issues": {
                    "type": "object",
                    "additionalProperties": {"type": "array", "items": {"type": "string"}}
                }
            }
        },
        "handlers.RateLimitedResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "rate_limited"},
                "message": {"type": "string", "example": "order rate exceeded for account"},
                "retryAfterMs": {"type": "integer", "example": 500}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Coinage Backend API",
	Description:      "Authenticated relay between backend callers and the upstream brokerage trading API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
