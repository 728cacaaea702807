package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DuetDay API",
        "description": "Couple calendar and shared schedule service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token refresh"},
        {"name": "Couples", "description": "Couple connection"},
        {"name": "Schedules", "description": "Personal schedules"},
        {"name": "Datings", "description": "Shared dating events"},
        {"name": "Anniversaries", "description": "Couple anniversaries"},
        {"name": "Calendar", "description": "Merged calendar view and export"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/couples": {
            "post": {
                "tags": ["Couples"],
                "summary": "Connect the acting member with a partner",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConnectCoupleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already coupled"}
                }
            }
        },
        "/couples/{coupleId}": {
            "get": {
                "tags": ["Couples"],
                "summary": "Get couple connection info",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{memberId}/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List schedules",
                "parameters": [
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "day", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Create a schedule with its recurrence",
                "parameters": [
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{memberId}/schedules/{scheduleId}": {
            "put": {
                "tags": ["Schedules"],
                "summary": "Edit one occurrence or its whole series",
                "parameters": [
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "scheduleId", "in": "path", "required": true, "type": "string"},
                    {"name": "updateRepeat", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateScheduleRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"}
                }
            },
            "delete": {
                "tags": ["Schedules"],
                "summary": "Delete one occurrence or its whole series",
                "parameters": [
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "scheduleId", "in": "path", "required": true, "type": "string"},
                    {"name": "deleteRepeat", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/couples/{coupleId}/datings": {
            "get": {
                "tags": ["Datings"],
                "summary": "List dating events",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "day", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Datings"],
                "summary": "Create a dating event with its recurrence",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDatingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/couples/{coupleId}/datings/{datingId}": {
            "put": {
                "tags": ["Datings"],
                "summary": "Edit one occurrence or its whole series",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "datingId", "in": "path", "required": true, "type": "string"},
                    {"name": "updateRepeat", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDatingRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"}
                }
            },
            "delete": {
                "tags": ["Datings"],
                "summary": "Delete one occurrence or its whole series",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "datingId", "in": "path", "required": true, "type": "string"},
                    {"name": "deleteRepeat", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/couples/{coupleId}/anniversary": {
            "get": {
                "tags": ["Anniversaries"],
                "summary": "List anniversaries",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "day", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Anniversaries"],
                "summary": "Create an anniversary with its recurrence",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAnniversaryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/couples/{coupleId}/anniversary/dates": {
            "get": {
                "tags": ["Anniversaries"],
                "summary": "List deduplicated anniversary dates",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/couples/{coupleId}/anniversary/{anniversaryId}": {
            "put": {
                "tags": ["Anniversaries"],
                "summary": "Edit one occurrence or its whole series",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "anniversaryId", "in": "path", "required": true, "type": "string"},
                    {"name": "updateRepeat", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAnniversaryRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"}
                }
            },
            "delete": {
                "tags": ["Anniversaries"],
                "summary": "Delete one occurrence or its whole series",
                "parameters": [
                    {"name": "coupleId", "in": "path", "required": true, "type": "string"},
                    {"name": "anniversaryId", "in": "path", "required": true, "type": "string"},
                    {"name": "deleteRepeat", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/members/{memberId}/calendar/date": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Merged per-date calendar view",
                "parameters": [
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/members/{memberId}/calendar/export": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Download the calendar view as CSV or PDF",
                "parameters": [
                    {"name": "memberId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "month", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "ConnectCoupleRequest": {
            "type": "object",
            "required": ["partnerId", "firstDate"],
            "properties": {
                "partnerId": {"type": "string"},
                "firstDate": {"type": "string", "format": "date"}
            }
        },
        "CreateScheduleRequest": {
            "type": "object",
            "required": ["title", "startDateTime", "endDateTime", "repeatRule"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "location": {"type": "string"},
                "startDateTime": {"type": "string", "format": "date-time"},
                "endDateTime": {"type": "string", "format": "date-time"},
                "repeatRule": {"type": "string", "enum": ["N", "D", "W", "M", "Y"]},
                "repeatEndTime": {"type": "string", "format": "date-time"}
            }
        },
        "UpdateScheduleRequest": {
            "type": "object",
            "required": ["title", "startDateTime", "endDateTime"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "location": {"type": "string"},
                "startDateTime": {"type": "string", "format": "date-time"},
                "endDateTime": {"type": "string", "format": "date-time"}
            }
        },
        "CreateDatingRequest": {
            "type": "object",
            "required": ["title", "startDateTime", "endDateTime", "repeatRule"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "location": {"type": "string"},
                "startDateTime": {"type": "string", "format": "date-time"},
                "endDateTime": {"type": "string", "format": "date-time"},
                "repeatRule": {"type": "string", "enum": ["N", "D", "W", "M", "Y"]},
                "repeatEndTime": {"type": "string", "format": "date-time"}
            }
        },
        "UpdateDatingRequest": {
            "type": "object",
            "required": ["title", "startDateTime", "endDateTime"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "location": {"type": "string"},
                "startDateTime": {"type": "string", "format": "date-time"},
                "endDateTime": {"type": "string", "format": "date-time"}
            }
        },
        "CreateAnniversaryRequest": {
            "type": "object",
            "required": ["title", "repeatRule", "date"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "repeatRule": {"type": "string", "enum": ["N", "Y"]},
                "date": {"type": "string", "format": "date"}
            }
        },
        "UpdateAnniversaryRequest": {
            "type": "object",
            "required": ["title", "date"],
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "date": {"type": "string", "format": "date"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
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
