// Package docs registers the OpenAPI description served under /swagger.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/orders": {
            "get": {"tags": ["orders"], "summary": "List orders", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["orders"],
                "summary": "Create an order",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "404": {"description": "Unknown table or item"},
                    "409": {"description": "Table already has an open order"}
                }
            }
        },
        "/orders/{id}": {
            "get": {"tags": ["orders"], "summary": "Get an order", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/orders/{id}/items": {
            "patch": {"tags": ["orders"], "summary": "Add, update and remove lines of an open order", "responses": {"200": {"description": "OK"}, "400": {"description": "Order is closed"}}}
        },
        "/orders/{id}/status": {
            "patch": {"tags": ["orders"], "summary": "Change order status", "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid transition"}}}
        },
        "/bills": {
            "post": {
                "tags": ["bills"],
                "summary": "Finalize an order into a bill",
                "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Order already completed"}}
            }
        },
        "/bills/{orderId}": {
            "get": {"tags": ["bills"], "summary": "Get a bill", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/bills/{orderId}/receipt": {
            "get": {"tags": ["bills"], "summary": "Receipt download link", "responses": {"200": {"description": "OK"}}}
        },
        "/tables": {"get": {"tags": ["tables"], "summary": "List tables", "responses": {"200": {"description": "OK"}}}},
        "/tables/{id}": {"get": {"tags": ["tables"], "summary": "Get a table", "responses": {"200": {"description": "OK"}}}},
        "/inventory": {"get": {"tags": ["inventory"], "summary": "List inventory", "responses": {"200": {"description": "OK"}}}},
        "/inventory/low-stock": {"get": {"tags": ["inventory"], "summary": "Items at or below threshold", "responses": {"200": {"description": "OK"}}}},
        "/inventory/{itemId}": {"put": {"tags": ["inventory"], "summary": "Set stock", "responses": {"200": {"description": "OK"}}}},
        "/inventory/{itemId}/logs": {"get": {"tags": ["inventory"], "summary": "Stock movements", "responses": {"200": {"description": "OK"}}}},
        "/items": {
            "get": {"tags": ["items"], "summary": "List menu items", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["items"], "summary": "Create a menu item", "responses": {"201": {"description": "Created"}}}
        },
        "/items/{id}": {
            "get": {"tags": ["items"], "summary": "Get a menu item", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["items"], "summary": "Update a menu item", "responses": {"200": {"description": "OK"}}}
        },
        "/settings": {
            "get": {"tags": ["settings"], "summary": "Outlet GST settings", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["settings"], "summary": "Replace outlet GST settings", "responses": {"200": {"description": "OK"}}}
        },
        "/analytics/summary": {"get": {"tags": ["analytics"], "summary": "Sales summary", "responses": {"200": {"description": "OK"}}}},
        "/me/permissions": {"get": {"tags": ["me"], "summary": "Permissions of the caller", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "DinePOS API",
	Description:      "Multi-outlet restaurant point-of-sale backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
