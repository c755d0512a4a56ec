package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/authz"
    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/config"
    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/repository"
    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/utils"
)

// OrderHandler implements order creation, listing, detail and status
// transitions.  All methods assume the auth middleware already resolved
// the caller; ownership and role decisions go through the authz package
// so the rules live in one place.
type OrderHandler struct {
	Cfg      config.Config
	Orders   *repository.OrderRepo
	Services *repository.ServiceRepo
}

func NewOrderHandler(cfg config.Config, orders *repository.OrderRepo, services *repository.ServiceRepo) *OrderHandler {
	if orders == nil || services == nil {
		panic("nil repository passed to NewOrderHandler")
	}
	return &OrderHandler{Cfg: cfg, Orders: orders, Services: services}
}

// ----- DTOs -----

// createOrderReq deliberately has no price field: whatever the client
// sends for money is never even bound, the total is recomputed from the
// catalog.
type createOrderReq struct {
	Items []struct {
		ServiceID uint64 `json:"service_id"`
		Quantity  int64  `json:"quantity"`
	} `json:"items"`
	ScheduledDate string `json:"scheduled_date"`
}

type orderDetailResp struct {
	model.Order
	Items   []model.OrderItem    `json:"items"`
	History []model.StatusChange `json:"history"`
}

// CreateOrder handles POST /v1/orders.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return errUnauthorized(c)
	}

	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items is required"})
	}
	for _, it := range req.Items {
		if it.ServiceID == 0 || it.Quantity <= 0 || it.Quantity > 1<<32-1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be a positive integer"})
		}
	}
	scheduled, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Resolve every service and price the order from the catalog.
	items := make([]model.OrderItem, 0, len(req.Items))
	var total uint64
	for _, it := range req.Items {
		svc, err := h.Services.GetByID(ctx, it.ServiceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown service", "service_id": it.ServiceID})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !svc.IsActive {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "service is not active", "service_id": it.ServiceID})
		}
		// The stored total is 32-bit, so bound each item before the
		// multiply can overflow the running sum.
		if svc.PriceCents > 0 && uint64(it.Quantity) > (1<<32-1)/uint64(svc.PriceCents) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "order total too large"})
		}
		items = append(items, model.OrderItem{
			ServiceID:      svc.ID,
			Quantity:       uint32(it.Quantity),
			UnitPriceCents: svc.PriceCents,
		})
		total += uint64(it.Quantity) * uint64(svc.PriceCents)
	}
	if total > 1<<32-1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order total too large"})
	}

	order := &model.Order{
		OwnerID:       id.ID,
		Status:        model.StatusPending,
		TotalCents:    uint32(total),
		ScheduledDate: scheduled,
	}

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := h.Orders.CreateTx(ctx, tx, order, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	for i := range items {
		items[i].OrderID = order.ID
	}
	return c.JSON(http.StatusCreated, orderDetailResp{Order: *order, Items: items})
}

// ListOrders handles GET /v1/orders and GET /v1/admin/orders.  A
// customer only ever sees their own orders no matter what filters they
// send; staff and admin may query across owners.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return errUnauthorized(c)
	}

	page, ok := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("page_size"), 20, h.Cfg.MaxPageSize)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pagination"})
	}

	var filter repository.OrderFilter
	if s := c.QueryParam("status"); s != "" {
		st := model.OrderStatus(s)
		if !st.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
		}
		filter.Status = st
	}
	if authz.CanManage(id, model.RoleStaff, model.RoleAdmin) == authz.Allow {
		if o := c.QueryParam("owner_id"); o != "" {
			n, err := strconv.ParseUint(o, 10, 64)
			if err != nil || n == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid owner_id filter"})
			}
			filter.OwnerID = &n
		}
	} else {
		// Customers are pinned to their own orders.
		owner := id.ID
		filter.OwnerID = &owner
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.Orders.List(ctx, filter, page)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orders":    orders,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

// GetOrder handles GET /v1/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return errUnauthorized(c)
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if authz.CanAccess(id, order.OwnerID, model.RoleStaff, model.RoleAdmin) != authz.Allow {
		return errForbidden(c)
	}

	items, err := h.Orders.Items(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	history, err := h.Orders.History(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, orderDetailResp{Order: order, Items: items, History: history})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /v1/orders/:id/status.  Staff/admin only;
// the transition is validated against the state machine and applied as a
// compare-and-swap so concurrent updates cannot both win.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return errUnauthorized(c)
	}
	if authz.CanManage(id, model.RoleStaff, model.RoleAdmin) != authz.Allow {
		return errForbidden(c)
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	newStatus := model.OrderStatus(req.Status)
	if !newStatus.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !model.CanTransition(order.Status, newStatus) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid status transition",
			"from":  order.Status,
			"to":    newStatus,
		})
	}

	// The read above is only advisory; the update re-checks the starting
	// status so a concurrent transition makes this one fail, not double-apply.
	if err := h.Orders.TransitionStatus(ctx, orderID, order.Status, newStatus, id.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": orderID, "status": newStatus})
}
