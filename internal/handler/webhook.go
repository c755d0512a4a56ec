package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/config"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/payment"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/queue"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/repository"
	queuepublisher "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/service"
)

// signatureHeader carries the gateway's timestamped HMAC over the raw body.
const signatureHeader = "Payment-Signature"

// systemActor is recorded in the status history for transitions driven by
// the gateway rather than an authenticated user.
const systemActor uint64 = 0

// maxWebhookBody caps how much of a webhook request we are willing to read.
const maxWebhookBody = 1 << 20

// WebhookHandler receives asynchronous payment events from the gateway.
// Every event id is processed at most once; redeliveries of an already
// handled event are acknowledged without touching any order.
type WebhookHandler struct {
	Cfg      config.Config
	Orders   *repository.OrderRepo
	Sessions *repository.CheckoutRepo
	Events   *repository.WebhookRepo
}

func NewWebhookHandler(cfg config.Config, orders *repository.OrderRepo, sessions *repository.CheckoutRepo, events *repository.WebhookRepo) *WebhookHandler {
	if orders == nil || sessions == nil || events == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Cfg: cfg, Orders: orders, Sessions: sessions, Events: events}
}

// paymentEvent is the gateway's wire format for webhook deliveries.
type paymentEvent struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	OrderID         uint64 `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// HandleWebhook handles POST /v1/webhooks/payment. The signature is checked
// against the raw body before anything is parsed. A verified duplicate or an
// event type we do not handle is acknowledged with 200 so the gateway stops
// redelivering it; a processing failure releases the dedup claim and returns
// 500 so the gateway retries.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}

	sig := c.Request().Header.Get(signatureHeader)
	if err := payment.VerifySignature([]byte(h.Cfg.WebhookSecret), sig, body, time.Now(), payment.DefaultTolerance); err != nil {
		log.Printf("webhook: signature rejected: %v", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	var ev paymentEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" || ev.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed event"})
	}

	switch ev.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		// Verified but not ours to handle. Ack so the gateway moves on.
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	claimed, err := h.Events.Claim(ctx, ev.ID, ev.Type)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !claimed {
		// Redelivery of an event we already handled.
		return c.JSON(http.StatusOK, echo.Map{"received": true, "duplicate": true})
	}

	if err := h.process(ctx, ev); err != nil {
		if errors.Is(err, repository.ErrIntentMismatch) {
			// Redelivering this event would mismatch forever; keep the
			// claim and ack so the gateway stops.  The log line is the
			// trail for reconciliation.
			log.Printf("webhook: event %s carries intent %s which does not match order %d's session",
				ev.ID, ev.PaymentIntentID, ev.OrderID)
			return c.JSON(http.StatusOK, echo.Map{"received": true})
		}
		// Transient failure: give the claim back so the gateway's retry
		// can succeed later.
		if relErr := h.Events.Release(ctx, ev.ID); relErr != nil {
			log.Printf("webhook: release claim for %s failed: %v", ev.ID, relErr)
		}
		log.Printf("webhook: processing %s (%s) failed: %v", ev.ID, ev.Type, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "processing failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *WebhookHandler) process(ctx context.Context, ev paymentEvent) error {
	session, err := h.Sessions.GetByOrderID(ctx, ev.OrderID)
	if err != nil {
		return err
	}
	if ev.PaymentIntentID != "" && session.PaymentIntentID != ev.PaymentIntentID {
		return repository.ErrIntentMismatch
	}

	switch ev.Type {
	case "payment_intent.succeeded":
		err := h.Orders.TransitionStatus(ctx, ev.OrderID, model.StatusPending, model.StatusConfirmed, systemActor)
		if errors.Is(err, repository.ErrInvalidTransition) {
			order, gerr := h.Orders.GetByID(ctx, ev.OrderID)
			if gerr != nil {
				return gerr
			}
			if order.Status == model.StatusCancelled {
				// Money was captured for an order cancelled in the
				// meantime.  There is no state to move; the log line is
				// what the refund reconciliation works from.
				log.Printf("webhook: payment %s succeeded for cancelled order %d, refund reconciliation needed",
					session.PaymentIntentID, ev.OrderID)
				return nil
			}
			// The confirm endpoint beat us to it. The order is already
			// past pending, which is where this event wanted it.
			return nil
		}
		if err != nil {
			return err
		}
		if err := h.Sessions.SetStatus(ctx, ev.OrderID, model.CheckoutInitiated, model.CheckoutConfirmed); err != nil &&
			!errors.Is(err, repository.ErrAlreadyProcessed) {
			return err
		}
		order, err := h.Orders.GetByID(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		_ = queuepublisher.PublishOrderConfirmed(ctx, queue.OrderConfirmedEvent{
			OrderID:         order.ID,
			OwnerID:         order.OwnerID,
			TotalCents:      order.TotalCents,
			PaymentIntentID: session.PaymentIntentID,
			ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
		})
		return nil

	case "payment_intent.payment_failed":
		// The order stays pending; the session records the failure.
		if err := h.Sessions.SetStatus(ctx, ev.OrderID, model.CheckoutInitiated, model.CheckoutFailed); err != nil &&
			!errors.Is(err, repository.ErrAlreadyProcessed) {
			return err
		}
		return nil
	}
	return nil
}
