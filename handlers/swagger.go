package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the clinic API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>clinic booking API - Swagger</title>
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

// OpenAPI document for the services, doctors and bookings endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "clinic-booking", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Error": { "type": "object", "properties": { "message": { "type": "string" } } },
      "Service": { "type": "object", "properties": { "_id": {"type":"string"}, "name": {"type":"string"}, "description": {"type":"string"}, "doctorName": {"type":"string"}, "duration": {"type":"number"}, "createdAt": {"type":"string","format":"date-time"} } },
      "Doctor": { "type": "object", "properties": { "_id": {"type":"string"}, "name": {"type":"string"}, "specialization": {"type":"string"}, "services": {"type":"array","items":{"type":"string"}}, "createdAt": {"type":"string","format":"date-time"} } },
      "Booking": { "type": "object", "properties": { "_id": {"type":"string"}, "patientName": {"type":"string"}, "phone": {"type":"string"}, "date": {"type":"string","format":"date-time"}, "service": {"type":"string"}, "doctor": {"type":"string"}, "createdAt": {"type":"string","format":"date-time"} } }
    }
  },
  "paths": {
    "/services": {
      "get": { "summary": "List services", "responses": { "200": { "description": "all services" }, "500": { "description": "storage error" } } },
      "post": {
        "summary": "Create a service",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name"],"properties":{"name":{"type":"string"},"description":{"type":"string"},"doctorName":{"type":"string"},"duration":{"type":"number"}}}}}},
        "responses": { "201": { "description": "created service" }, "400": { "description": "missing field or duplicate name" }, "500": { "description": "storage error" } }
      }
    },
    "/doctors": {
      "get": { "summary": "List doctors with their services expanded", "responses": { "200": { "description": "all doctors" }, "500": { "description": "storage error" } } },
      "post": {
        "summary": "Create a doctor",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name","specialization"],"properties":{"name":{"type":"string"},"specialization":{"type":"string"},"services":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": { "201": { "description": "created doctor" }, "400": { "description": "validation error" }, "500": { "description": "storage error" } }
      }
    },
    "/bookings": {
      "get": { "summary": "List bookings, latest date first", "responses": { "200": { "description": "all bookings" }, "500": { "description": "storage error" } } },
      "post": {
        "summary": "Create a booking",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["patientName","phone","date","service","doctor"],"properties":{"patientName":{"type":"string"},"phone":{"type":"string"},"date":{"type":"string"},"service":{"type":"string"},"doctor":{"type":"string"}}}}}},
        "responses": { "201": { "description": "created booking" }, "400": { "description": "All fields are required" }, "500": { "description": "storage error" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
