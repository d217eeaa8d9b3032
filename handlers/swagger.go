package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorhub/go-services/internal/resource"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON generated
//   from the resource registry
func RegisterSwagger(rg *gin.Engine, defs []resource.Config) {
	doc := openAPIDoc(defs)
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, doc)
	})
}

func openAPIDoc(defs []resource.Config) gin.H {
	paths := gin.H{
		"/health":    gin.H{"get": gin.H{"summary": "Liveness check", "responses": gin.H{"200": gin.H{"description": "healthy"}}}},
		"/ready":     gin.H{"get": gin.H{"summary": "Readiness check", "responses": gin.H{"200": gin.H{"description": "ready"}, "503": gin.H{"description": "not ready"}}}},
		"/dev-login": gin.H{"post": gin.H{"summary": "Issue a local access token (non-production)", "responses": gin.H{"200": gin.H{"description": "access token"}}}},
	}
	listParams := []gin.H{
		{"name": "name", "in": "query", "schema": gin.H{"type": "string"}},
		{"name": "after_id", "in": "query", "schema": gin.H{"type": "string"}},
		{"name": "limit", "in": "query", "schema": gin.H{"type": "integer", "default": resource.DefaultLimit, "minimum": resource.MinLimit, "maximum": resource.MaxLimit}},
		{"name": "sort_by", "in": "query", "schema": gin.H{"type": "string", "default": resource.DefaultSortField}},
		{"name": "order", "in": "query", "schema": gin.H{"type": "string", "enum": []string{"asc", "desc"}, "default": "asc"}},
	}
	body := gin.H{"content": gin.H{"application/json": gin.H{"schema": gin.H{"type": "object"}}}}
	for _, def := range defs {
		base := "/api/" + def.Name
		ops := gin.H{
			"get": gin.H{
				"summary":    "List " + def.Name + " documents (infinite scroll)",
				"parameters": listParams,
				"responses":  gin.H{"200": gin.H{"description": "batch of documents"}, "400": gin.H{"description": "invalid parameters"}},
			},
		}
		if def.SupportsCreate {
			ops["post"] = gin.H{
				"summary":     "Create a " + def.Name + " document",
				"requestBody": body,
				"responses":   gin.H{"201": gin.H{"description": "created document"}},
			}
		}
		paths[base] = ops
		idOps := gin.H{
			"get": gin.H{
				"summary":   "Get a " + def.Name + " document by id",
				"responses": gin.H{"200": gin.H{"description": "document"}, "404": gin.H{"description": "not found"}},
			},
		}
		if def.SupportsUpdate {
			idOps["patch"] = gin.H{
				"summary":     "Partially update a " + def.Name + " document",
				"requestBody": body,
				"responses":   gin.H{"200": gin.H{"description": "updated document"}, "404": gin.H{"description": "not found"}},
			}
		}
		paths[base+"/{id}"] = idOps
	}
	return gin.H{
		"openapi": "3.0.0",
		"info":    gin.H{"title": "mentorhub-api", "version": "v0.1.0"},
		"paths":   paths,
	}
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>mentorhub-api Swagger</title>
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
