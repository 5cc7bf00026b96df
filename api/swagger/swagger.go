package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Batch Scheduler API",
        "description": "Schedules batch classes into rooms and teacher time slots without double booking.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Scheduling", "description": "Batch class create, bulk create, delete and listings"},
        {"name": "Availability", "description": "Teachers free for a set of cells"},
        {"name": "Room Plan", "description": "Weekly plan aggregated per room"},
        {"name": "Rooms", "description": "Room availability and batch room checks"},
        {"name": "Teachers", "description": "Teacher timetable feeds"}
    ],
    "paths": {
        "/time-slots": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Operating days and time slots",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/batch-classes": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Schedule a batch class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBatchClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Batch, subject or teacher not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "ROOM_CONFLICT or TEACHER_CONFLICT", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "SLOT_NOT_IN_BATCH_GRID", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batch-classes/bulk": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Schedule several classes of one batch on one day",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBatchClassesRequest"}}
                ],
                "responses": {
                    "200": {"description": "All items scheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "207": {"description": "Some items failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batch-classes/{id}": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Get a batch class",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Scheduling"],
                "summary": "Delete a batch class",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/batches/{id}/batch-classes": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "List classes of a batch",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/batches/{id}/room-check": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Check a batch grid against a room",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/teachers/{id}/batch-classes": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "List classes taught by a teacher",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/teachers/{id}/calendar": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Weekly timetable of a teacher as iCalendar",
                "produces": ["text/calendar"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "VCALENDAR body"}}
            }
        },
        "/availability/teachers": {
            "get": {
                "tags": ["Availability"],
                "summary": "List teachers free for the given cells",
                "parameters": [
                    {"name": "level", "in": "query", "required": true, "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "days", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "slot", "in": "query", "type": "string"},
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/availability/teachers/cache": {
            "delete": {
                "tags": ["Availability"],
                "summary": "Drop cached teacher directory lists",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms with utilisation",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/rooms/{id}/availability": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Available, booked and free cells of a room, or one cell when day and slot are given",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "slot", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/room-plan": {
            "get": {
                "tags": ["Room Plan"],
                "summary": "Weekly plan per room",
                "parameters": [{"name": "roomId", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/room-plan/export": {
            "get": {
                "tags": ["Room Plan"],
                "summary": "Download the room plan",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx"], "default": "csv"}
                ],
                "responses": {"200": {"description": "File download"}}
            }
        }
    },
    "definitions": {
        "CreateBatchClassRequest": {
            "type": "object",
            "required": ["batchId", "subjectId", "teacherId", "dayOfWeek", "timeSlot"],
            "properties": {
                "batchId": {"type": "string"},
                "subjectId": {"type": "string"},
                "teacherId": {"type": "string"},
                "dayOfWeek": {"type": "string", "example": "MONDAY"},
                "timeSlot": {"type": "string", "example": "04:00 PM-05:00 PM"}
            }
        },
        "BulkBatchClassItem": {
            "type": "object",
            "required": ["subjectId", "teacherId", "timeSlot"],
            "properties": {
                "subjectId": {"type": "string"},
                "teacherId": {"type": "string"},
                "timeSlot": {"type": "string"}
            }
        },
        "CreateBatchClassesRequest": {
            "type": "object",
            "required": ["batchId", "dayOfWeek", "items"],
            "properties": {
                "batchId": {"type": "string"},
                "dayOfWeek": {"type": "string"},
                "items": {
                    "type": "array",
                    "maxItems": 64,
                    "items": {"$ref": "#/definitions/BulkBatchClassItem"}
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
