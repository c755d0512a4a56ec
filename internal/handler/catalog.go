package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/repository"
)

// CatalogHandler serves the service catalog: public browse endpoints and
// the staff/admin create endpoint.
type CatalogHandler struct {
    Services *repository.ServiceRepo
}

func NewCatalogHandler(s *repository.ServiceRepo) *CatalogHandler {
    if s == nil {
        panic("nil repository passed to NewCatalogHandler")
    }
    return &CatalogHandler{Services: s}
}

// ListServices handles GET /v1/services.  Public, cached.
func (h *CatalogHandler) ListServices(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    services, err := h.Services.ListActive(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"services": services})
}

// GetService handles GET /v1/services/:id.  Public, cached.  Inactive
// services stay browsable here; they only become unorderable.
func (h *CatalogHandler) GetService(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    s, err := h.Services.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "service not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, s)
}

type createServiceReq struct {
    Name        string `json:"name"`
    Description string `json:"description"`
    PriceCents  uint32 `json:"price_cents"`
    IsActive    *bool  `json:"is_active"`
}

// CreateService handles POST /v1/admin/services.  Staff/admin only
// (enforced by route middleware).
func (h *CatalogHandler) CreateService(c echo.Context) error {
    var req createServiceReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    if req.PriceCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_cents must be positive"})
    }
    active := true
    if req.IsActive != nil {
        active = *req.IsActive
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    id, err := h.Services.Create(ctx, req.Name, req.Description, req.PriceCents, active)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create service failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": id})
}
