package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>note-app-api — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the main endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "note-app-api", "version": "v0.1.0" },
  "paths": {
    "/auth/register": {
      "post": {
        "summary": "Register a local account",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"fullName":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "201": { "description": "account created" }, "409": { "description": "email already in use" } }
      }
    },
    "/auth/login": {
      "post": {
        "summary": "Login with email and password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "access token returned" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/auth/microsoft/signup": {
      "post": { "summary": "Sign in with a Microsoft Entra access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"accessToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "existing account" }, "201": { "description": "account created" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and revoke the current access token", "responses": { "200": { "description": "logged out" } } }
    },
    "/auth/profile": {
      "get": { "summary": "Authenticated account profile", "responses": { "200": { "description": "user" }, "401": { "description": "unauthorized" } } }
    },
    "/add-note": {
      "post": { "summary": "Create a note", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"title":{"type":"string"},"content":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}},"isPinned":{"type":"boolean"}}}}}}, "responses": { "200": { "description": "note created" } } }
    },
    "/get-all-notes": {
      "get": { "summary": "List the caller's notes, pinned first", "responses": { "200": { "description": "notes" } } }
    },
    "/search-notes": {
      "get": { "summary": "Search the caller's notes", "parameters": [ { "name": "query", "in": "query", "required": true, "schema": { "type": "string" } } ], "responses": { "200": { "description": "matching notes" }, "400": { "description": "empty query" } } }
    },
    "/public-notes/{userId}": {
      "get": { "summary": "List a user's public notes", "parameters": [ { "name": "userId", "in": "path", "required": true, "schema": { "type": "string" } } ], "responses": { "200": { "description": "public notes" }, "400": { "description": "invalid user id" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
