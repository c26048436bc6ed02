// Package docs holds the swagger document served at /swagger/*.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "Server is running"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "Database reachable"},
                    "503": {"description": "Database not ready"}
                }
            }
        },
        "/api/task": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Create a task",
                "description": "Save a new grid row. Offsets that no longer derive their column are dropped.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.SaveTaskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ports.SaveResponse"}},
                    "400": {"description": "Rejected", "schema": {"$ref": "#/definitions/ports.SaveResponse"}}
                }
            }
        },
        "/api/task/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Get a task",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Task", "schema": {"$ref": "#/definitions/ports.TaskRecord"}},
                    "404": {"description": "Not found"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Update a task",
                "description": "Replace a saved grid row, offsets included",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true},
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {"$ref": "#/definitions/ports.SaveTaskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ports.SaveResponse"}},
                    "400": {"description": "Rejected", "schema": {"$ref": "#/definitions/ports.SaveResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ports.SaveResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"type": "string", "description": "Task ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/api/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "List tasks",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "pending, completed or overdue", "name": "status", "in": "query"},
                    {"type": "string", "description": "Title or description substring", "name": "search", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Rows to skip", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Tasks", "schema": {"$ref": "#/definitions/ports.TaskListResponse"}},
                    "400": {"description": "Bad filter"}
                }
            }
        },
        "/api/offset/apply": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["offsets"],
                "summary": "Apply an offset token to a local timestamp",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "YYYY-MM-DDTHH:mm", "name": "base", "in": "query", "required": true},
                    {"type": "string", "description": "Offset token such as +3h", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Result", "schema": {"$ref": "#/definitions/ports.ApplyOffsetResponse"}},
                    "400": {"description": "Invalid base or token"}
                }
            }
        },
        "/api/offset/label": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["offsets"],
                "summary": "Render an offset token for display",
                "parameters": [
                    {"type": "string", "description": "Offset token", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Label"}
                }
            }
        },
        "/api/offset/chain": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["offsets"],
                "summary": "List the date/time fields in reference order",
                "responses": {
                    "200": {"description": "Fields"}
                }
            }
        }
    },
    "definitions": {
        "ports.SaveTaskRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string", "maxLength": 500},
                "description": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "completed", "overdue"]},
                "start_date": {"type": "string", "example": "2025-01-01T10:00"},
                "end_date": {"type": "string", "example": "2025-01-01T13:00"},
                "deadline": {"type": "string"},
                "notification_time": {"type": "string"},
                "notif1": {"type": "string"},
                "notif2": {"type": "string"},
                "notif3": {"type": "string"},
                "notif4": {"type": "string"},
                "notif5": {"type": "string"},
                "notif6": {"type": "string"},
                "notif7": {"type": "string"},
                "notif8": {"type": "string"},
                "offsets": {
                    "type": "object",
                    "additionalProperties": {"type": "string"},
                    "example": {"end_date": "+3h"}
                }
            }
        },
        "ports.TaskRecord": {
            "allOf": [
                {"$ref": "#/definitions/ports.SaveTaskRequest"},
                {
                    "type": "object",
                    "properties": {
                        "task_id": {"type": "string"},
                        "created_at": {"type": "string", "format": "date-time"},
                        "updated_at": {"type": "string", "format": "date-time"}
                    }
                }
            ]
        },
        "ports.SaveResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["success", "error"]},
                "task_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "ports.TaskListResponse": {
            "type": "object",
            "properties": {
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/ports.TaskRecord"}},
                "total": {"type": "integer"}
            }
        },
        "ports.ApplyOffsetResponse": {
            "type": "object",
            "properties": {
                "base": {"type": "string"},
                "token": {"type": "string"},
                "result": {"type": "string"},
                "label": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "TaskGrid API",
	Description:      "Task grid storage and date/time offset engine",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
