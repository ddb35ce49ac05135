package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/business_site/internal/logging"
	"github.com/Skotchmaster/business_site/internal/service"
	"github.com/Skotchmaster/business_site/internal/transport"
	"github.com/Skotchmaster/business_site/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.categories")

	items, err := h.Svc.Categories(ctx)
	if err != nil {
		l.Error("get_categories_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get categories")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) Services(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.services")

	items, err := h.Svc.CategoriesWithServices(ctx)
	if err != nil {
		l.Error("get_services_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get services")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) ServiceBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.service_by_slug")

	item, err := h.Svc.ServiceBySlug(ctx, c.Param("slug"))
	if err != nil {
		code, msg := statusFor(err)
		if code == http.StatusNotFound {
			msg = "service not found or not published"
		}
		l.Warn("get_service_failed", "status", code, "slug", c.Param("slug"), "error", err)
		return echo.NewHTTPError(code, msg)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		l.Error("search_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *CatalogHTTP) AdminCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.categories")

	items, err := h.Svc.ListCategories(ctx)
	if err != nil {
		l.Error("list_categories_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get categories")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.create_category")

	var req transport.CreateCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	category, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		code, msg := statusFor(err)
		l.Warn("category_create_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	l.Info("category_created", "category_id", category.ID)
	return c.JSON(http.StatusCreated, category)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.update_category")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("category_update_error", "status", 400, "reason", "id is not uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not uuid")
	}

	var req transport.PatchCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("category_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	category, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		code, msg := statusFor(err)
		if code == http.StatusNotFound {
			msg = "category not found"
		}
		l.Warn("category_update_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.delete_category")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("category_delete_error", "status", 400, "reason", "id is not uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not uuid")
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		code, msg := statusFor(err)
		switch code {
		case http.StatusNotFound:
			msg = "category not found"
		case http.StatusConflict:
			msg = "category still has services"
		}
		l.Warn("category_delete_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) AdminServices(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.services")

	items, err := h.Svc.ListServices(ctx)
	if err != nil {
		l.Error("list_services_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get services")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CreateService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.create_service")

	var req transport.CreateServiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("service_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	svc, err := h.Svc.CreateService(ctx, req)
	if err != nil {
		code, msg := statusFor(err)
		if code == http.StatusConflict {
			msg = "slug already taken"
		}
		l.Warn("service_create_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	l.Info("service_created", "service_id", svc.ID)
	return c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHTTP) UpdateService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.update_service")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("service_update_error", "status", 400, "reason", "id is not uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not uuid")
	}

	var req transport.PatchServiceRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("service_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	svc, err := h.Svc.UpdateService(ctx, id, req)
	if err != nil {
		code, msg := statusFor(err)
		switch code {
		case http.StatusNotFound:
			msg = "service not found"
		case http.StatusConflict:
			msg = "slug already taken"
		}
		l.Warn("service_update_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	return c.JSON(http.StatusOK, svc)
}

func (h *CatalogHTTP) DeleteService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_catalog.delete_service")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("service_delete_error", "status", 400, "reason", "id is not uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not uuid")
	}

	if err := h.Svc.DeleteService(ctx, id); err != nil {
		code, msg := statusFor(err)
		if code == http.StatusNotFound {
			msg = "service not found"
		}
		l.Warn("service_delete_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	return c.NoContent(http.StatusNoContent)
}
