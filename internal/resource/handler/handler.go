package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mentorhub/go-services/internal/resource"
	"github.com/mentorhub/go-services/pkg/logger"
	"github.com/mentorhub/go-services/pkg/metrics"
	"github.com/mentorhub/go-services/pkg/middleware"
)

// Register mounts the REST surface for one resource under the given
// (already authenticated) router group. Which verbs exist follows the
// resource's capability flags; reads are always exposed.
func Register(rg *gin.RouterGroup, svc *resource.Service) {
	cfg := svc.Config()
	grp := rg.Group("/" + cfg.Name)
	grp.GET("", list(svc))
	grp.GET("/:id", get(svc))
	if cfg.SupportsCreate {
		grp.POST("", create(svc))
	}
	if cfg.SupportsUpdate {
		grp.PATCH("/:id", update(svc))
	}
}

func create(svc *resource.Service) gin.HandlerFunc {
	name := svc.Config().Name
	return func(c *gin.Context) {
		tok, bc := identity(c)
		body := resource.Document{}
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, name, resource.OpCreate, resource.Validationf("invalid request body: %v", err))
			return
		}
		doc, err := svc.Create(c.Request.Context(), tok, bc, body)
		if err != nil {
			writeError(c, name, resource.OpCreate, err)
			return
		}
		metrics.ResourceOperations.WithLabelValues(name, resource.OpCreate, "ok").Inc()
		c.JSON(http.StatusCreated, doc)
	}
}

func list(svc *resource.Service) gin.HandlerFunc {
	name := svc.Config().Name
	return func(c *gin.Context) {
		tok, _ := identity(c)
		params := resource.ListParams{
			Name:    c.Query("name"),
			AfterID: c.Query("after_id"),
			Limit:   c.Query("limit"),
			SortBy:  c.Query("sort_by"),
			Order:   c.Query("order"),
		}
		page, err := svc.List(c.Request.Context(), tok, params)
		if err != nil {
			writeError(c, name, resource.OpRead, err)
			return
		}
		metrics.ResourceOperations.WithLabelValues(name, resource.OpRead, "ok").Inc()
		c.JSON(http.StatusOK, page)
	}
}

func get(svc *resource.Service) gin.HandlerFunc {
	name := svc.Config().Name
	return func(c *gin.Context) {
		tok, _ := identity(c)
		doc, err := svc.Get(c.Request.Context(), tok, c.Param("id"))
		if err != nil {
			writeError(c, name, resource.OpRead, err)
			return
		}
		metrics.ResourceOperations.WithLabelValues(name, resource.OpRead, "ok").Inc()
		c.JSON(http.StatusOK, doc)
	}
}

func update(svc *resource.Service) gin.HandlerFunc {
	name := svc.Config().Name
	return func(c *gin.Context) {
		tok, _ := identity(c)
		patch := resource.Document{}
		if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, name, resource.OpUpdate, resource.Validationf("invalid request body: %v", err))
			return
		}
		doc, err := svc.Update(c.Request.Context(), tok, c.Param("id"), patch)
		if err != nil {
			writeError(c, name, resource.OpUpdate, err)
			return
		}
		metrics.ResourceOperations.WithLabelValues(name, resource.OpUpdate, "ok").Inc()
		c.JSON(http.StatusOK, doc)
	}
}

// identity pulls the verified token and breadcrumb the auth middleware
// stored on the request context.
func identity(c *gin.Context) (resource.Token, resource.Breadcrumb) {
	var tok resource.Token
	var bc resource.Breadcrumb
	if v, ok := c.Get(middleware.TokenKey); ok {
		if t, ok2 := v.(resource.Token); ok2 {
			tok = t
		}
	}
	if v, ok := c.Get(middleware.BreadcrumbKey); ok {
		if b, ok2 := v.(resource.Breadcrumb); ok2 {
			bc = b
		}
	}
	return tok, bc
}

// writeError maps the error taxonomy to boundary status codes.
// Internal detail is logged here and never serialized to the caller.
func writeError(c *gin.Context, name, op string, err error) {
	var re *resource.Error
	if !errors.As(err, &re) {
		re = resource.Internal(err, "internal server error")
	}
	if re.Kind == resource.KindInternal {
		logger.Errorf("%s %s: %v", op, name, err)
	}
	metrics.ResourceOperations.WithLabelValues(name, op, re.Kind.String()).Inc()
	c.JSON(re.Kind.HTTPStatus(), gin.H{"error": re.Message})
}
