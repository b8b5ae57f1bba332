// Package docs регистрирует swagger-описание API для /swagger/*.
// Формат совпадает с выводом swag init; при изменении аннотаций хендлеров обновлять вручную.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/explore": {
            "post": {
                "description": "Анализирует скриншот, проект и ключевые слова; возвращает до 6 результатов",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["explore"],
                "summary": "Подборка вдохновения",
                "parameters": [
                    {"description": "Источники контекста", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ExploreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ExploreResponse"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Некорректный JSON или внутренняя ошибка", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/projects": {
            "get": {
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Список проектов",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListProjectsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Создание проекта",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateProjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.ProjectResponse"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Проект по id",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProjectResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Обновление проекта",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateProjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ProjectResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["projects"],
                "summary": "Удаление проекта",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/assets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["assets"],
                "summary": "Список ассетов",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "tags", "in": "query"},
                    {"type": "string", "name": "project_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListAssetsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assets"],
                "summary": "Создание ассета",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateAssetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.AssetResponse"}},
                    "400": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/assets/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["assets"],
                "summary": "Ассет по id",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AssetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["assets"],
                "summary": "Обновление ассета",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateAssetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AssetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["assets"],
                "summary": "Удаление ассета",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.Metadata": {
            "type": "object",
            "properties": {
                "keywords": {"type": "string"},
                "emotion": {"type": "string"},
                "look_and_feel": {"type": "string"}
            }
        },
        "dto.ExploreRequest": {
            "type": "object",
            "properties": {
                "screenshot": {"type": "string"},
                "projectId": {"type": "string"},
                "keywords": {"type": "string"}
            }
        },
        "dto.ResultItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "enum": ["asset", "generated"]},
                "image_url": {"type": "string"},
                "metadata": {"$ref": "#/definitions/dto.Metadata"},
                "similarity_score": {"type": "number"},
                "prompt_used": {"type": "string"},
                "metadata_variation": {"type": "string"}
            }
        },
        "dto.SourceMetadata": {
            "type": "object",
            "properties": {
                "screenshot_analysis": {"$ref": "#/definitions/dto.Metadata"},
                "screenshot_analysis_error": {"type": "string"},
                "project_metadata": {"$ref": "#/definitions/dto.Metadata"},
                "project_fetch_error": {"type": "string"},
                "project_error": {"type": "string"},
                "asset_search_error": {"type": "string"},
                "image_generation_error": {"type": "string"},
                "combined_search_query": {"type": "string"},
                "assets_found": {"type": "integer"},
                "assets_used": {"type": "integer"},
                "images_generated": {"type": "integer"},
                "temporary_images": {"type": "integer"},
                "image_expiration_warning": {"type": "string"},
                "temporary_solution_note": {"type": "string"},
                "storage_success_note": {"type": "string"}
            }
        },
        "dto.ExploreResponse": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/dto.ResultItem"}},
                "total_count": {"type": "integer"},
                "source_metadata": {"$ref": "#/definitions/dto.SourceMetadata"}
            }
        },
        "dto.CreateProjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "brief": {"type": "string"},
                "keywords": {"type": "string"},
                "emotion": {"type": "string"},
                "look_and_feel": {"type": "string"},
                "auto_analyze": {"type": "boolean"}
            }
        },
        "dto.UpdateProjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "brief": {"type": "string"},
                "keywords": {"type": "string"},
                "emotion": {"type": "string"},
                "look_and_feel": {"type": "string"}
            }
        },
        "dto.Project": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "brief": {"type": "string"},
                "keywords": {"type": "string"},
                "emotion": {"type": "string"},
                "look_and_feel": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.ProjectResponse": {
            "type": "object",
            "properties": {
                "project": {"$ref": "#/definitions/dto.Project"},
                "message": {"type": "string"},
                "auto_analyzed": {"type": "boolean"}
            }
        },
        "dto.ListProjectsResponse": {
            "type": "object",
            "properties": {
                "projects": {"type": "array", "items": {"$ref": "#/definitions/dto.Project"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "hasMore": {"type": "boolean"}
            }
        },
        "dto.CreateAssetRequest": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "file_url": {"type": "string"},
                "project_id": {"type": "string"},
                "keywords": {"type": "string"},
                "emotion": {"type": "string"},
                "look_and_feel": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "auto_analyze": {"type": "boolean"}
            }
        },
        "dto.UpdateAssetRequest": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "file_url": {"type": "string"},
                "project_id": {"type": "string"},
                "keywords": {"type": "string"},
                "emotion": {"type": "string"},
                "look_and_feel": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.Asset": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "project_id": {"type": "string"},
                "filename": {"type": "string"},
                "file_url": {"type": "string"},
                "keywords": {"type": "string"},
                "emotion": {"type": "string"},
                "look_and_feel": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "is_public": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "dto.AssetResponse": {
            "type": "object",
            "properties": {
                "asset": {"$ref": "#/definitions/dto.Asset"},
                "message": {"type": "string"},
                "auto_analyzed": {"type": "boolean"}
            }
        },
        "dto.ListAssetsResponse": {
            "type": "object",
            "properties": {
                "assets": {"type": "array", "items": {"$ref": "#/definitions/dto.Asset"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "project_id": {"type": "string"},
                "hasMore": {"type": "boolean"}
            }
        },
        "dto.MessageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Nudge API",
	Description:      "Подбор визуального вдохновения: поиск по каталогу ассетов и генерация изображений.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
