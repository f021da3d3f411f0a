// Package docs holds the Swagger specification served at /swagger. The
// template tracks the handler annotations; regenerate with `swag init`
// after changing them.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Service is up"}
                }
            }
        },
        "/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Predict"],
                "summary": "Serve a prediction",
                "parameters": [
                    {
                        "description": "Feature name to value",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object", "additionalProperties": {"type": "number"}}
                    }
                ],
                "responses": {
                    "200": {"description": "Prediction"},
                    "400": {"description": "Invalid feature vector"},
                    "500": {"description": "Prediction failed"}
                }
            }
        },
        "/monitor/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Monitor"],
                "summary": "Monitoring status",
                "responses": {
                    "200": {"description": "Current monitoring status"}
                }
            }
        },
        "/monitor/trigger_now": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Monitor"],
                "summary": "Trigger a drift analysis run",
                "responses": {
                    "200": {"description": "Run completed or skipped for insufficient data"},
                    "409": {"description": "A run is already in progress"},
                    "500": {"description": "Run failed"}
                }
            }
        },
        "/monitor/generate_report": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Monitor"],
                "summary": "Generate a drift report (legacy alias)",
                "responses": {
                    "200": {"description": "Run completed or skipped for insufficient data"},
                    "409": {"description": "A run is already in progress"},
                    "500": {"description": "Run failed"}
                }
            }
        },
        "/reports/{name}": {
            "get": {
                "produces": ["text/html"],
                "tags": ["Reports"],
                "summary": "Fetch a stored drift report",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Report filename",
                        "name": "name",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "Report HTML"},
                    "400": {"description": "Invalid report name"},
                    "404": {"description": "Report not found"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Driftwatch API",
	Description:      "Online inference service with continuous input drift monitoring.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
