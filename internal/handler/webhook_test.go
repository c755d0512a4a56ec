package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/config"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/payment"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/repository"
)

const webhookTestSecret = "whsec_handler_test"

func newWebhookHandler(t *testing.T) (*WebhookHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.Config{WebhookSecret: webhookTestSecret}
	return NewWebhookHandler(cfg,
		repository.NewOrderRepo(db),
		repository.NewCheckoutRepo(db),
		repository.NewWebhookRepo(db)), mock
}

func deliver(t *testing.T, h *WebhookHandler, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Payment-Signature", sig)
	rec := httptest.NewRecorder()
	require.NoError(t, h.HandleWebhook(e.NewContext(req, rec)))
	return rec
}

func signedBody(t *testing.T, body []byte) string {
	t.Helper()
	return payment.SignPayload([]byte(webhookTestSecret), time.Now(), body)
}

func expectClaim(mock sqlmock.Sqlmock, eventID, eventType string, rows int64) {
	mock.ExpectExec("INSERT IGNORE INTO webhook_events (event_id, event_type) VALUES (?,?)").
		WithArgs(eventID, eventType).
		WillReturnResult(sqlmock.NewResult(0, rows))
}

func expectSessionLookup(mock sqlmock.Sqlmock, orderID int, intentID string) {
	mock.ExpectQuery("SELECT id, order_id, payment_method, payment_intent_id, status, processed_at, created_at FROM checkout_sessions WHERE order_id=? LIMIT 1").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "order_id", "payment_method", "payment_intent_id", "status", "processed_at", "created_at"}).
			AddRow(1, orderID, "card", intentID, "initiated", nil, time.Now()))
}

// Delivering the same event id twice must process it exactly once: the
// second delivery stops at the dedup claim and acks without any further
// database work.
func TestHandleWebhookDuplicateIsNoOp(t *testing.T) {
	h, mock := newWebhookHandler(t)
	body := []byte(`{"id":"evt_9","type":"payment_intent.payment_failed","order_id":7,"payment_intent_id":"pi_9"}`)
	sig := signedBody(t, body)

	// First delivery: claim wins, session is marked failed.
	expectClaim(mock, "evt_9", "payment_intent.payment_failed", 1)
	expectSessionLookup(mock, 7, "pi_9")
	mock.ExpectExec("UPDATE checkout_sessions SET status=?, processed_at=NOW() WHERE order_id=? AND status=?").
		WithArgs("failed", 7, "initiated").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Second delivery: claim loses, nothing else touches the database.
	expectClaim(mock, "evt_9", "payment_intent.payment_failed", 0)

	rec := deliver(t, h, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = deliver(t, h, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"duplicate":true`)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookBadSignature(t *testing.T) {
	h, mock := newWebhookHandler(t)
	body := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","order_id":7}`)
	sig := signedBody(t, []byte("something else entirely"))

	rec := deliver(t, h, body, sig)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	// No claim, no lookups: the payload is untouched on signature failure.
	require.NoError(t, mock.ExpectationsWereMet())
}

// An intent mismatch is permanent: redelivery would mismatch forever, so
// the claim is kept and the event acked instead of released for retry.
func TestHandleWebhookIntentMismatchIsAcked(t *testing.T) {
	h, mock := newWebhookHandler(t)
	body := []byte(`{"id":"evt_5","type":"payment_intent.succeeded","order_id":7,"payment_intent_id":"pi_wrong"}`)
	sig := signedBody(t, body)

	expectClaim(mock, "evt_5", "payment_intent.succeeded", 1)
	expectSessionLookup(mock, 7, "pi_actual")
	// No Release DELETE expected: ExpectationsWereMet would fail on one.

	rec := deliver(t, h, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A success event for an order cancelled in the meantime is acked, not
// retried: there is no legal transition, and redelivery cannot change
// that.  The reconciliation trail is the log, checked by eye here.
func TestHandleWebhookSucceededForCancelledOrder(t *testing.T) {
	h, mock := newWebhookHandler(t)
	body := []byte(`{"id":"evt_6","type":"payment_intent.succeeded","order_id":7,"payment_intent_id":"pi_9"}`)
	sig := signedBody(t, body)

	expectClaim(mock, "evt_6", "payment_intent.succeeded", 1)
	expectSessionLookup(mock, 7, "pi_9")
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?").
		WithArgs("confirmed", 7, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM orders WHERE id=?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectRollback()
	mock.ExpectQuery("SELECT id, owner_id, status, total_cents, scheduled_date, created_at, updated_at FROM orders WHERE id=? LIMIT 1").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "owner_id", "status", "total_cents", "scheduled_date", "created_at", "updated_at"}).
			AddRow(7, 3, "cancelled", 5000, time.Now(), time.Now(), time.Now()))

	rec := deliver(t, h, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookUnknownTypeAcked(t *testing.T) {
	h, mock := newWebhookHandler(t)
	body := []byte(`{"id":"evt_7","type":"charge.refunded","order_id":7}`)
	sig := signedBody(t, body)

	rec := deliver(t, h, body, sig)
	require.Equal(t, http.StatusOK, rec.Code)
	// Verified but unhandled types never reach the claim.
	require.NoError(t, mock.ExpectationsWereMet())
}
