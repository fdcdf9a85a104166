package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Archive Records API",
        "description": "Role-based management of physical archive records, loans and activity logs",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, logout and profile"},
        {"name": "Dashboard", "description": "Role-scoped home statistics"},
        {"name": "Records", "description": "Physical document catalog"},
        {"name": "Loans", "description": "Borrow and return transactions"},
        {"name": "Locations", "description": "Archive room shelf layout"},
        {"name": "Logs", "description": "Activity log and exports"},
        {"name": "Users", "description": "Account administration"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/home": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Role-scoped home dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records": {
            "get": {
                "tags": ["Records"],
                "summary": "Browse the full catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Records"],
                "summary": "Catalog a new document",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRecordRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate file code"}
                }
            }
        },
        "/records/search": {
            "get": {
                "tags": ["Records"],
                "summary": "Search the catalog",
                "parameters": [
                    {"name": "course_code", "in": "query", "type": "string"},
                    {"name": "course_name", "in": "query", "type": "string"},
                    {"name": "lecturer", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "doc_type", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/filter/{status}": {
            "get": {
                "tags": ["Records"],
                "summary": "List records by canned filter",
                "parameters": [
                    {"name": "status", "in": "path", "required": true, "type": "string", "enum": ["available", "borrowed", "new-month"]}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Unknown filter"}
                }
            }
        },
        "/records/{id}": {
            "get": {
                "tags": ["Records"],
                "summary": "Fetch one record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Records"],
                "summary": "Update a record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateRecordRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Records"],
                "summary": "Delete a record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Record is out on loan"}
                }
            }
        },
        "/records/{id}/borrow": {
            "post": {
                "tags": ["Loans"],
                "summary": "Borrow a record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already borrowed"}
                }
            }
        },
        "/loans": {
            "get": {
                "tags": ["Loans"],
                "summary": "Borrow-return overview",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/loans/{id}/return": {
            "post": {
                "tags": ["Loans"],
                "summary": "Return a borrowed record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the borrower"},
                    "409": {"description": "Loan already returned"}
                }
            }
        },
        "/locations": {
            "get": {
                "tags": ["Locations"],
                "summary": "List locations",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Locations"],
                "summary": "Add a location",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LocationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/locations/{id}": {
            "put": {
                "tags": ["Locations"],
                "summary": "Update a location",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Locations"],
                "summary": "Delete an empty location",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Location still holds records"}
                }
            }
        },
        "/logs": {
            "get": {
                "tags": ["Logs"],
                "summary": "Activity log within the retention window",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/logs/export": {
            "get": {
                "tags": ["Logs"],
                "summary": "Export the activity log",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate email"}
                }
            }
        },
        "/users/{id}/deactivate": {
            "post": {
                "tags": ["Users"],
                "summary": "Deactivate account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Cannot deactivate own account"}
                }
            }
        },
        "/users/{id}/activate": {
            "post": {
                "tags": ["Users"],
                "summary": "Reactivate account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/users/{id}/reset-password": {
            "post": {
                "tags": ["Users"],
                "summary": "Reset account password to the default",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
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
        "CreateUserRequest": {
            "type": "object",
            "required": ["email", "full_name", "role", "password", "password_confirm"],
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "SECRETARY", "LECTURER"]},
                "password": {"type": "string"},
                "password_confirm": {"type": "string"}
            }
        },
        "CreateRecordRequest": {
            "type": "object",
            "required": ["file_code", "course_code", "course_name", "lecturer_name", "semester", "academic_year", "document_type", "location_id"],
            "properties": {
                "file_code": {"type": "string"},
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "lecturer_name": {"type": "string"},
                "semester": {"type": "string", "enum": ["Fall", "Spring", "Summer"]},
                "academic_year": {"type": "string"},
                "exam_type": {"type": "string", "enum": ["Midterm", "Final", "Quiz"]},
                "document_type": {"type": "string", "enum": ["Exam", "Internship Report", "Grad Project"]},
                "cloud_file_id": {"type": "string"},
                "cloud_file_link": {"type": "string"},
                "has_digital_copy": {"type": "boolean"},
                "location_id": {"type": "string"}
            }
        },
        "UpdateRecordRequest": {
            "type": "object",
            "required": ["course_code", "course_name", "lecturer_name", "semester", "academic_year", "document_type", "location_id"],
            "properties": {
                "course_code": {"type": "string"},
                "course_name": {"type": "string"},
                "lecturer_name": {"type": "string"},
                "semester": {"type": "string"},
                "academic_year": {"type": "string"},
                "exam_type": {"type": "string"},
                "document_type": {"type": "string"},
                "cloud_file_id": {"type": "string"},
                "cloud_file_link": {"type": "string"},
                "has_digital_copy": {"type": "boolean"},
                "location_id": {"type": "string"}
            }
        },
        "LocationRequest": {
            "type": "object",
            "required": ["shelf_number", "bay_code", "section_number"],
            "properties": {
                "shelf_number": {"type": "integer"},
                "bay_code": {"type": "string"},
                "section_number": {"type": "integer"}
            }
        },
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
