// Package docs holds the OpenAPI description served at /swagger/.
// Regenerate with: swag init -g internal/fastkep/http/router.go -o api/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/fastkep"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "description": "Creates a user after checking the password policy and returns an access and refresh token pair.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "Registration details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/fastkepsdk.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/fastkepsdk.AuthResponse"}},
                    "400": {"description": "invalid_request or weak_password", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "409": {"description": "email_taken", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "429": {"description": "rate_limit_exceeded", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticates with email and password. Unknown email, wrong password and inactive account return the same error.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/fastkepsdk.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fastkepsdk.AuthResponse"}},
                    "400": {"description": "invalid_request", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "401": {"description": "invalid_credentials", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "429": {"description": "rate_limit_exceeded", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "description": "Issues a new access token. The refresh token may be sent in the body or as a bearer token; it is not rotated.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Refresh",
                "parameters": [
                    {
                        "description": "Refresh token",
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/fastkepsdk.RefreshRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fastkepsdk.AccessTokenResponse"}},
                    "400": {"description": "invalid_request", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "503": {"description": "temporarily_unavailable", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Revokes the access token used to call this endpoint. The refresh token stays valid until it expires.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fastkepsdk.MessageResponse"}},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "503": {"description": "temporarily_unavailable", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fastkepsdk.MeResponse"}},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}}
                }
            }
        },
        "/documents/templates": {
            "get": {
                "description": "Returns every document type with its display name, description and required fields.",
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "List document templates",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/fastkepsdk.TemplatesResponse"}}
                }
            }
        },
        "/documents/generate/{doc_type}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Renders the named document type from a flat JSON object of fields. full_name, generated_at, verification_code and verification_qr are always computed by the server.",
                "consumes": ["application/json"],
                "produces": ["text/html", "application/pdf"],
                "tags": ["Documents"],
                "summary": "Generate document",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document type, e.g. ypefthini_dilosi or ypefthini-dilosi",
                        "name": "doc_type",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Template fields",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/fastkepsdk.GenerateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Rendered document as an attachment", "schema": {"type": "file"}},
                    "400": {"description": "invalid_request or missing_fields", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "401": {"description": "invalid_token", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "404": {"description": "unknown_doc_type", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}},
                    "503": {"description": "temporarily_unavailable", "schema": {"$ref": "#/definitions/fastkepsdk.APIError"}}
                }
            }
        },
        "/livez": {
            "get": {
                "description": "Liveness probe endpoint returning basic service health status, uptime, and version information\nThis endpoint always returns 200 OK if the service is running",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {"description": "status, uptime, version", "schema": {"$ref": "#/definitions/fastkepsdk.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe endpoint returning the status of the database and the revocation store",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "status, checks", "schema": {"$ref": "#/definitions/fastkepsdk.HealthResponse"}},
                    "503": {"description": "status, checks - service not ready", "schema": {"$ref": "#/definitions/fastkepsdk.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "fastkepsdk.APIError": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"},
                "missing_fields": {"type": "array", "items": {"type": "string"}}
            }
        },
        "fastkepsdk.AccessTokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "token_type": {"type": "string"}
            }
        },
        "fastkepsdk.AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "identity": {"$ref": "#/definitions/fastkepsdk.Identity"},
                "message": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"}
            }
        },
        "fastkepsdk.GenerateRequest": {
            "type": "object",
            "additionalProperties": {"type": "string"}
        },
        "fastkepsdk.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "fastkepsdk.Identity": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "full_name": {"type": "string"},
                "id": {"type": "string"},
                "is_active": {"type": "boolean"},
                "last_name": {"type": "string"}
            }
        },
        "fastkepsdk.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "fastkepsdk.MeResponse": {
            "type": "object",
            "properties": {
                "identity": {"$ref": "#/definitions/fastkepsdk.Identity"}
            }
        },
        "fastkepsdk.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "fastkepsdk.RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "fastkepsdk.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "fastkepsdk.TemplateInfo": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "name": {"type": "string"},
                "required_fields": {"type": "array", "items": {"type": "string"}}
            }
        },
        "fastkepsdk.TemplatesResponse": {
            "type": "object",
            "additionalProperties": {"$ref": "#/definitions/fastkepsdk.TemplateInfo"}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT access token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "FastKEP API",
	Description:      "Account registration, JWT session management and generation of Greek declaration documents.\n\nAccess and refresh tokens are JWTs; logout revokes the presented access token.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
