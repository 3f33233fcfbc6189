// Package docs registers the API description served at /swagger/*
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/admin/login": {
            "post": {
                "tags": ["Admin"],
                "summary": "Operator login, sets the admin_token cookie",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginPayload"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/admin/logout": {
            "post": {"tags": ["Admin"], "summary": "Clear the session cookie", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/session": {
            "get": {"tags": ["Admin"], "summary": "Current session", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/images": {
            "get": {"tags": ["Site"], "summary": "Site configuration", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Site"], "summary": "Update site configuration", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/images/import": {
            "post": {"tags": ["Site"], "summary": "Import hosted images into the site configuration", "responses": {"200": {"description": "OK"}}}
        },
        "/categories": {
            "get": {"tags": ["Gallery"], "summary": "List categories or get one by id", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Gallery"], "summary": "Create category", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Gallery"], "summary": "Update category", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Gallery"], "summary": "Delete category", "responses": {"200": {"description": "OK"}}}
        },
        "/prices": {
            "get": {"tags": ["Pricing"], "summary": "Current price", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Pricing"], "summary": "Replace the price record", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Pricing"], "summary": "Update the price record", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Pricing"], "summary": "Delete the price record", "responses": {"200": {"description": "OK"}}}
        },
        "/reviews": {
            "get": {"tags": ["Reviews"], "summary": "List reviews", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Reviews"], "summary": "Submit a review", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["Reviews"], "summary": "Update a review", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["Reviews"], "summary": "Delete a review", "responses": {"200": {"description": "OK"}}}
        },
        "/reviews/summary": {
            "get": {"tags": ["Reviews"], "summary": "Rating statistics", "responses": {"200": {"description": "OK"}}}
        },
        "/register": {
            "post": {"tags": ["Registrations"], "summary": "Submit a booking inquiry", "responses": {"200": {"description": "OK"}}}
        },
        "/registrations": {
            "get": {"tags": ["Registrations"], "summary": "List inquiries", "responses": {"200": {"description": "OK"}}}
        },
        "/registrations/export": {
            "get": {"tags": ["Registrations"], "summary": "Export inquiries as csv or xlsx", "responses": {"200": {"description": "OK"}}}
        },
        "/cloudinary/list": {
            "get": {"tags": ["Media"], "summary": "List hosted images of a folder", "responses": {"200": {"description": "OK"}}}
        },
        "/upload": {
            "post": {"tags": ["Media"], "summary": "Upload one image", "responses": {"200": {"description": "OK"}}}
        },
        "/upload/batch": {
            "post": {"tags": ["Media"], "summary": "Upload several images", "responses": {"200": {"description": "OK"}}}
        },
        "/cloudinary/delete": {
            "delete": {"tags": ["Media"], "summary": "Delete a hosted image", "responses": {"200": {"description": "OK"}}}
        },
        "/google-reviews": {
            "get": {"tags": ["Reviews"], "summary": "Google reviews of the property", "responses": {"200": {"description": "OK"}}}
        },
        "/health": {
            "get": {"tags": ["System"], "summary": "Liveness and database check", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "loginPayload": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "River House Belgrade API",
	Description:      "Public site and admin panel API of River House Belgrade.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
