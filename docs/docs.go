// Package docs registers the Swagger document served at /swagger.
// Regenerate the paths with `swag init -g cmd/server/main.go`.
package docs

import "github.com/swaggo/swag"

// @tag.name Users
// @tag.description Registration and login

// @tag.name Boards
// @tag.description Board management operations

// @tag.name Columns
// @tag.description Column management and ordering

// @tag.name Tasks
// @tag.description Task management and ordering

// @tag.name Labels
// @tag.description Label management operations

// @tag.name Board Sharing
// @tag.description Board sharing operations

// @tag.name Actions
// @tag.description Undo window for deletes and archives

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
    "paths": {},
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Ideaboard API",
	Description:      "Boards of ordered columns and tasks, with a short undo window on destructive actions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
