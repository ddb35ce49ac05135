package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/business_site/internal/middleware/auth"
	"github.com/Skotchmaster/business_site/internal/middleware/metrics"
)

type Deps struct {
	ServerName     string
	Ready          func(ctx context.Context) error
	Auth           *authmw.Middleware
	AuthHandler    *AuthHTTP
	UsersHandler   *UsersHTTP
	CatalogHandler *CatalogHTTP
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Server is running on "+d.ServerName)
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")

	api.POST("/auth/login", d.AuthHandler.Login)
	api.POST("/auth/refresh", d.AuthHandler.Refresh)
	api.GET("/users/profile", d.AuthHandler.Profile, d.Auth.RequireAuth)

	api.GET("/categories", d.CatalogHandler.Categories)
	api.GET("/services", d.CatalogHandler.Services)
	api.GET("/services/search", d.CatalogHandler.Search)
	api.GET("/services/:slug", d.CatalogHandler.ServiceBySlug)

	admin := api.Group("/admin", d.Auth.RequireAdmin)

	admin.GET("/users", d.UsersHandler.List)
	admin.POST("/users", d.UsersHandler.Create)
	admin.PUT("/users/:email", d.UsersHandler.Update)
	admin.DELETE("/users/:email", d.UsersHandler.Delete)

	admin.GET("/categories", d.CatalogHandler.AdminCategories)
	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.PUT("/categories/:id", d.CatalogHandler.UpdateCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)

	admin.GET("/services", d.CatalogHandler.AdminServices)
	admin.POST("/services", d.CatalogHandler.CreateService)
	admin.PUT("/services/:id", d.CatalogHandler.UpdateService)
	admin.DELETE("/services/:id", d.CatalogHandler.DeleteService)
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := d.Ready(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.NoContent(http.StatusOK)
}
