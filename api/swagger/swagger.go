package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Request API",
        "description": "Academic calendar ingestion and request availability service",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Calendar", "description": "Public calendar status and availability"},
        {"name": "Calendar Admin", "description": "Calendar document ingestion and settings"},
        {"name": "Requests", "description": "Student request submission"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/calendar/status": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Current calendar status",
                "responses": {
                    "200": {"description": "Status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/check/{date}": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Check whether a date allows request creation",
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "description": "YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "Check result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/next-available": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Find the next date open for request creation",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string", "description": "YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "Next open date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/events": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Query calendar events",
                "parameters": [
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "event_type", "in": "query", "type": "string"},
                    {"name": "affects_only", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Events with summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calendar/feed.ics": {
            "get": {
                "tags": ["Calendar"],
                "summary": "iCalendar feed of the active calendar",
                "produces": ["text/calendar"],
                "responses": {
                    "200": {"description": "ICS document"}
                }
            }
        },
        "/requests": {
            "post": {
                "tags": ["Requests"],
                "summary": "Submit a student request",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Creation blocked by calendar", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Requests"],
                "summary": "List the caller's requests",
                "responses": {
                    "200": {"description": "Requests", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/calendar/upload": {
            "post": {
                "tags": ["Calendar Admin"],
                "summary": "Upload an academic calendar document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "calendar_document", "in": "formData", "required": true, "type": "file"},
                    {"name": "academic_year", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Processing result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation or extraction failure", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/calendar/history": {
            "get": {
                "tags": ["Calendar Admin"],
                "summary": "List past calendar uploads",
                "responses": {
                    "200": {"description": "Upload history", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/calendar/uploads/{id}/logs": {
            "get": {
                "tags": ["Calendar Admin"],
                "summary": "List the parsing audit trail for an upload",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Parsing logs", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/calendar/uploads/{id}": {
            "delete": {
                "tags": ["Calendar Admin"],
                "summary": "Delete a calendar upload and its events",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/admin/calendar/settings": {
            "get": {
                "tags": ["Calendar Admin"],
                "summary": "Current calendar settings",
                "responses": {
                    "200": {"description": "Settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Calendar Admin"],
                "summary": "Update calendar settings",
                "responses": {
                    "200": {"description": "Updated settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/calendar/events/export": {
            "get": {
                "tags": ["Calendar Admin"],
                "summary": "Export calendar events as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv or pdf"}
                ],
                "responses": {
                    "200": {"description": "Export payload"}
                }
            }
        },
        "/admin/calendar/validate": {
            "get": {
                "tags": ["Calendar Admin"],
                "summary": "Validate calendar system health",
                "responses": {
                    "200": {"description": "Validation report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "stage": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
