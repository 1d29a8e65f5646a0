// Package swagger holds the OpenAPI document served at /swagger/doc.json.
// Keep it in step with the handler annotations in internal/server; running
// go generate there rewrites it with swag.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Ziva Maintainers",
            "url": "https://github.com/raysh454/ziva"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["text/plain"],
                "summary": "Liveness banner",
                "responses": {
                    "200": {"description": "Ziva Brain is Running! 🧠", "schema": {"type": "string"}}
                }
            }
        },
        "/app": {
            "get": {
                "produces": ["text/html"],
                "summary": "Scan page",
                "responses": {
                    "200": {"description": "HTML page", "schema": {"type": "string"}}
                }
            },
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["text/html"],
                "summary": "Scan a link from the page form",
                "parameters": [
                    {"type": "string", "description": "Product link", "name": "url", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "HTML page with the result panel", "schema": {"type": "string"}}
                }
            }
        },
        "/history": {
            "get": {
                "produces": ["application/json"],
                "summary": "Stored prices for a link",
                "parameters": [
                    {"type": "string", "description": "Product link", "name": "url", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HistoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/scan": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Scan a product link",
                "parameters": [
                    {"description": "Link to scan", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/server.ScanRequestBody"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/scan.ScanResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/scans": {
            "get": {
                "produces": ["application/json"],
                "summary": "Recent scans",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum entries", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/store.ScanRecord"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/ws/scan": {
            "get": {
                "description": "Send {\"url\": \"...\"} to scan or {\"action\": \"cancel\"} to stop. The server streams PanelEvent messages.",
                "summary": "Live scan panel",
                "responses": {
                    "101": {"description": "Switching Protocols", "schema": {"$ref": "#/definitions/server.PanelEvent"}}
                }
            }
        }
    },
    "definitions": {
        "scan.Competitor": {
            "type": "object",
            "properties": {
                "link": {"type": "string"},
                "price": {"type": "number"},
                "site": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "scan.History": {
            "type": "object",
            "properties": {
                "average": {"type": "number"},
                "lowest": {"type": "number"}
            }
        },
        "scan.ScanResponse": {
            "type": "object",
            "properties": {
                "competitors": {"type": "array", "items": {"$ref": "#/definitions/scan.Competitor"}},
                "current_price": {"type": "number"},
                "history": {"$ref": "#/definitions/scan.History"},
                "price": {"type": "number"},
                "product": {"type": "string"},
                "reason": {"type": "string"},
                "verdict": {"type": "string"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "No URL provided"}
            }
        },
        "server.HistoryResponse": {
            "type": "object",
            "properties": {
                "observations": {"type": "array", "items": {"$ref": "#/definitions/store.Observation"}},
                "product_key": {"type": "string", "example": "amazon:B0ABCDEF12"},
                "stats": {"$ref": "#/definitions/store.Stats"}
            }
        },
        "server.PanelEvent": {
            "type": "object",
            "properties": {
                "caption": {"type": "string"},
                "class": {"type": "string"},
                "disabled": {"type": "boolean"},
                "html": {"type": "string"},
                "message": {"type": "string"},
                "session": {"type": "string"},
                "type": {"type": "string"},
                "verdict": {"type": "string"}
            }
        },
        "server.ScanRequestBody": {
            "type": "object",
            "properties": {
                "url": {"type": "string", "example": "https://www.amazon.in/dp/B0ABCDEF12"}
            }
        },
        "store.Observation": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "observed_at": {"type": "string"},
                "price": {"type": "number"},
                "product_key": {"type": "string"},
                "source": {"type": "string"},
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "store.ScanRecord": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "level": {"type": "string"},
                "price": {"type": "number"},
                "product": {"type": "string"},
                "product_key": {"type": "string"},
                "reason": {"type": "string"},
                "response": {"$ref": "#/definitions/scan.ScanResponse"},
                "url": {"type": "string"},
                "verdict": {"type": "string"}
            }
        },
        "store.Stats": {
            "type": "object",
            "properties": {
                "average": {"type": "number"},
                "count": {"type": "integer"},
                "first_seen": {"type": "string"},
                "last_seen": {"type": "string"},
                "lowest": {"type": "number"},
                "product_key": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ziva API",
	Description:      "Link trust scanner: verdicts, price history and competitor prices for product listings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
