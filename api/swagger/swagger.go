package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Brightwood School API",
        "description": "Backend for the Brightwood School website: admissions, notices, inquiries and the admin back office",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Session login and self-service account operations"},
        {"name": "Admins", "description": "Admin account management (super admin only)"},
        {"name": "Admissions", "description": "Admission applications and review workflow"},
        {"name": "Notices", "description": "Public notice board and back-office editing"},
        {"name": "Inquiries", "description": "Contact form submissions and triage"},
        {"name": "Exports", "description": "Asynchronous admissions register exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin and set the session cookie",
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
                "summary": "Clear the session cookie",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No valid session"}
                }
            }
        },
        "/auth/password": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Change own password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Current password incorrect"}
                }
            }
        },
        "/admins": {
            "get": {
                "tags": ["Admins"],
                "summary": "List admin accounts",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admins"],
                "summary": "Create admin account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already in use"}
                }
            },
            "delete": {
                "tags": ["Admins"],
                "summary": "Bulk delete admin accounts",
                "description": "Refused when the batch would remove every super admin",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkDeleteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Cannot delete all Super Admins. At least one must remain."}
                }
            }
        },
        "/admins/{id}": {
            "get": {
                "tags": ["Admins"],
                "summary": "Get admin account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Admins"],
                "summary": "Update admin account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAdminRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admins"],
                "summary": "Delete admin account",
                "description": "Refused for the last remaining super admin",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "422": {"description": "Cannot delete the last Super Admin"}
                }
            }
        },
        "/admins/{id}/toggle-status": {
            "patch": {
                "tags": ["Admins"],
                "summary": "Activate or deactivate an account",
                "description": "Refused when it would deactivate the last active super admin",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Cannot deactivate the last active Super Admin"}
                }
            }
        },
        "/admins/{id}/reset-password": {
            "post": {
                "tags": ["Admins"],
                "summary": "Reset an account password",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResetPasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admissions": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Submit admission application",
                "description": "Public form. Assigns the next sequential application number for the academic year.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateApplicationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate Aadhar number"}
                }
            }
        },
        "/admissions/track/{number}": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Track application by number",
                "parameters": [
                    {"name": "number", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown application number"}
                }
            }
        },
        "/admin/admissions": {
            "get": {
                "tags": ["Admissions"],
                "summary": "List applications",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "academic_year", "in": "query", "type": "string"},
                    {"name": "class", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/admissions/{id}": {
            "get": {
                "tags": ["Admissions"],
                "summary": "Get application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admissions"],
                "summary": "Delete application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/admissions/{id}/status": {
            "patch": {
                "tags": ["Admissions"],
                "summary": "Review application",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateApplicationStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/admissions/bulk-status": {
            "post": {
                "tags": ["Admissions"],
                "summary": "Review applications in bulk",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkApplicationStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notices": {
            "get": {
                "tags": ["Notices"],
                "summary": "List published notices",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notices/slug/{slug}": {
            "get": {
                "tags": ["Notices"],
                "summary": "Get published notice by slug",
                "parameters": [
                    {"name": "slug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or unpublished notice"}
                }
            }
        },
        "/notices/{id}/views": {
            "post": {
                "tags": ["Notices"],
                "summary": "Count a notice view",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/notices": {
            "get": {
                "tags": ["Notices"],
                "summary": "List all notices including drafts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Notices"],
                "summary": "Create notice",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNoticeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Slug already in use"}
                }
            }
        },
        "/admin/notices/{id}": {
            "get": {
                "tags": ["Notices"],
                "summary": "Get notice",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Notices"],
                "summary": "Update notice",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateNoticeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Notices"],
                "summary": "Delete notice",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/inquiries": {
            "post": {
                "tags": ["Inquiries"],
                "summary": "Submit contact inquiry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInquiryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/inquiries": {
            "get": {
                "tags": ["Inquiries"],
                "summary": "List contact inquiries",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/inquiries/{id}/status": {
            "patch": {
                "tags": ["Inquiries"],
                "summary": "Update inquiry status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateInquiryStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue admissions register export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Get export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download rendered export",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "Admin": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["SUPER_ADMIN", "ADMIN", "EDITOR", "VIEWER"]},
                "is_active": {"type": "boolean"},
                "last_login": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "AdmissionApplication": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "application_number": {"type": "string"},
                "student_first_name": {"type": "string"},
                "student_last_name": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "class_applying_for": {"type": "string"},
                "academic_year": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "UNDER_REVIEW", "APPROVED", "REJECTED", "WAITLISTED"]},
                "remarks": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Notice": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "content": {"type": "string"},
                "category": {"type": "string"},
                "priority": {"type": "string"},
                "publish_date": {"type": "string"},
                "expiry_date": {"type": "string"},
                "is_published": {"type": "boolean"},
                "is_pinned": {"type": "boolean"},
                "views": {"type": "integer"},
                "attachments": {"type": "array", "items": {"type": "object"}}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "current_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["current_password", "new_password"]
        },
        "CreateAdminRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["SUPER_ADMIN", "ADMIN", "EDITOR", "VIEWER"]}
            },
            "required": ["name", "email", "password", "role"]
        },
        "UpdateAdminRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "ResetPasswordRequest": {
            "type": "object",
            "properties": {
                "new_password": {"type": "string"}
            },
            "required": ["new_password"]
        },
        "BulkDeleteRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["ids"]
        },
        "CreateApplicationRequest": {
            "type": "object",
            "properties": {
                "student_first_name": {"type": "string"},
                "student_last_name": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "gender": {"type": "string"},
                "category": {"type": "string"},
                "class_applying_for": {"type": "string"},
                "academic_year": {"type": "string"},
                "father_name": {"type": "string"},
                "father_phone": {"type": "string"},
                "mother_name": {"type": "string"},
                "current_address": {"type": "string"},
                "current_city": {"type": "string"},
                "current_state": {"type": "string"},
                "current_pincode": {"type": "string"}
            },
            "required": ["student_first_name", "student_last_name", "date_of_birth", "class_applying_for", "academic_year"]
        },
        "UpdateApplicationStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "remarks": {"type": "string"}
            },
            "required": ["status"]
        },
        "BulkApplicationStatusRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"}
            },
            "required": ["ids", "status"]
        },
        "CreateNoticeRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "content": {"type": "string"},
                "category": {"type": "string"},
                "priority": {"type": "string"},
                "publish_date": {"type": "string"},
                "expiry_date": {"type": "string"},
                "is_published": {"type": "boolean"},
                "is_pinned": {"type": "boolean"}
            },
            "required": ["title", "slug", "content", "category"]
        },
        "UpdateNoticeRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "content": {"type": "string"},
                "category": {"type": "string"},
                "priority": {"type": "string"},
                "is_published": {"type": "boolean"},
                "is_pinned": {"type": "boolean"},
                "is_active": {"type": "boolean"}
            }
        },
        "CreateInquiryRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            },
            "required": ["name", "email", "subject", "message"]
        },
        "UpdateInquiryStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "response": {"type": "string"}
            },
            "required": ["status"]
        },
        "CreateExportRequest": {
            "type": "object",
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "academic_year": {"type": "string"},
                "status": {"type": "string"}
            },
            "required": ["format"]
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
