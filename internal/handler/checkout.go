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
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/payment"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/queue"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/repository"
	queuepublisher "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/service"
)

// CheckoutHandler coordinates payment flows for orders: starting a
// checkout, confirming it against the stored payment intent, and the
// final transition of the order to confirmed.
type CheckoutHandler struct {
	Cfg      config.Config
	Orders   *repository.OrderRepo
	Sessions *repository.CheckoutRepo
	Gateway  payment.Gateway
}

func NewCheckoutHandler(cfg config.Config, orders *repository.OrderRepo, sessions *repository.CheckoutRepo, gw payment.Gateway) *CheckoutHandler {
	if orders == nil || sessions == nil || gw == nil {
		panic("nil dependency passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Cfg: cfg, Orders: orders, Sessions: sessions, Gateway: gw}
}

type processCheckoutReq struct {
	PaymentMethod string `json:"payment_method"`
}

// ProcessCheckout handles POST /v1/orders/:id/checkout.  Only a pending
// order can start a checkout, and only one session per order is ever
// live: the unique index means a concurrent second call loses cleanly
// with 409, while a session whose payment failed is revived for the
// retry.  A gateway failure leaves the order exactly as it was.
func (h *CheckoutHandler) ProcessCheckout(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return errUnauthorized(c)
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req processCheckoutReq
	if err := c.Bind(&req); err != nil || req.PaymentMethod == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method required"})
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
	if order.Status != model.StatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already processed"})
	}

	// Ask the gateway for an intent under its own timeout budget.  No
	// local state has been written yet, so a failure here mutates nothing.
	gwCtx, gwCancel := context.WithTimeout(c.Request().Context(),
		time.Duration(h.Cfg.GatewayTimeoutMS)*time.Millisecond)
	defer gwCancel()
	intentID, err := h.Gateway.CreateIntent(gwCtx, order.ID, order.TotalCents, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayTimeout) {
			return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "payment gateway timeout"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway error"})
	}

	if err := h.Sessions.Create(ctx, order.ID, req.PaymentMethod, intentID); err != nil {
		if !errors.Is(err, repository.ErrAlreadyProcessed) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create checkout failed"})
		}
		// A session already exists.  If its payment failed, the customer
		// may try again: revive it with the new intent.  A live or
		// confirmed session stays a conflict.
		if err := h.Sessions.Reinitiate(ctx, order.ID, req.PaymentMethod, intentID); err != nil {
			if errors.Is(err, repository.ErrAlreadyProcessed) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "order already processed"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create checkout failed"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id":          order.ID,
		"payment_intent_id": intentID,
		"status":            model.CheckoutInitiated,
	})
}

type confirmCheckoutReq struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// ConfirmCheckout handles POST /v1/orders/:id/confirm.  The caller must
// present the payment intent id of the stored session; anything else is
// rejected without touching the order.
func (h *CheckoutHandler) ConfirmCheckout(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return errUnauthorized(c)
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req confirmCheckoutReq
	if err := c.Bind(&req); err != nil || req.PaymentIntentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_intent_id required"})
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

	session, err := h.Sessions.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no checkout session for order"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if session.PaymentIntentID != req.PaymentIntentID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment intent mismatch"})
	}

	if err := h.Orders.TransitionStatus(ctx, orderID, model.StatusPending, model.StatusConfirmed, id.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "order already processed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
		}
	}
	if err := h.Sessions.SetStatus(ctx, orderID, model.CheckoutInitiated, model.CheckoutConfirmed); err != nil &&
		!errors.Is(err, repository.ErrAlreadyProcessed) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}

	// Best effort: downstream consumers (notifications, analytics) pick
	// this up from the broker; a broker outage does not fail the confirm.
	_ = queuepublisher.PublishOrderConfirmed(ctx, queue.OrderConfirmedEvent{
		OrderID:         order.ID,
		OwnerID:         order.OwnerID,
		TotalCents:      order.TotalCents,
		PaymentIntentID: session.PaymentIntentID,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"id": orderID, "status": model.StatusConfirmed})
}
