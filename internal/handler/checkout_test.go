package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/config"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/payment"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/repository"
)

func newCheckoutHandler(t *testing.T) (*CheckoutHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.Config{GatewayTimeoutMS: 1000}
	return NewCheckoutHandler(cfg,
		repository.NewOrderRepo(db),
		repository.NewCheckoutRepo(db),
		&payment.LocalGateway{}), mock
}

func checkoutCall(t *testing.T, h *CheckoutHandler, who model.Identity, orderID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders/"+orderID+"/checkout",
		strings.NewReader(`{"payment_method":"card"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(orderID)
	c.Set("identity", who)
	require.NoError(t, h.ProcessCheckout(c))
	return rec
}

func expectPendingOrder(mock sqlmock.Sqlmock, orderID, ownerID int) {
	mock.ExpectQuery("SELECT id, owner_id, status, total_cents, scheduled_date, created_at, updated_at FROM orders WHERE id=? LIMIT 1").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "owner_id", "status", "total_cents", "scheduled_date", "created_at", "updated_at"}).
			AddRow(orderID, ownerID, "pending", 5000, time.Now(), time.Now(), time.Now()))
}

// A second checkout on the same pending order must lose: the unique
// session index rejects the insert, and a session that is still live
// refuses revival, so the caller gets 409 and nothing changes.
func TestProcessCheckoutTwiceConflicts(t *testing.T) {
	h, mock := newCheckoutHandler(t)
	owner := model.Identity{ID: 3, Email: "priya@example.in", Role: model.RoleCustomer}

	// First call creates the session.
	expectPendingOrder(mock, 7, 3)
	mock.ExpectExec("INSERT INTO checkout_sessions (order_id, payment_method, payment_intent_id, status) VALUES (?,?,?,?)").
		WithArgs(7, "card", sqlmock.AnyArg(), "initiated").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Second call: duplicate insert, then the revival update finds no
	// failed session to revive.
	expectPendingOrder(mock, 7, 3)
	mock.ExpectExec("INSERT INTO checkout_sessions (order_id, payment_method, payment_intent_id, status) VALUES (?,?,?,?)").
		WithArgs(7, "card", sqlmock.AnyArg(), "initiated").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'order_id'"})
	mock.ExpectExec("UPDATE checkout_sessions SET status=?, payment_method=?, payment_intent_id=?, processed_at=NULL WHERE order_id=? AND status=?").
		WithArgs("initiated", "card", sqlmock.AnyArg(), 7, "failed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := checkoutCall(t, h, owner, "7")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"payment_intent_id"`)

	rec = checkoutCall(t, h, owner, "7")
	require.Equal(t, http.StatusConflict, rec.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

// After a failed payment the customer can check out again: the failed
// session is revived with the fresh intent instead of blocking forever.
func TestProcessCheckoutRetryAfterFailure(t *testing.T) {
	h, mock := newCheckoutHandler(t)
	owner := model.Identity{ID: 3, Email: "priya@example.in", Role: model.RoleCustomer}

	expectPendingOrder(mock, 7, 3)
	mock.ExpectExec("INSERT INTO checkout_sessions (order_id, payment_method, payment_intent_id, status) VALUES (?,?,?,?)").
		WithArgs(7, "card", sqlmock.AnyArg(), "initiated").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'order_id'"})
	mock.ExpectExec("UPDATE checkout_sessions SET status=?, payment_method=?, payment_intent_id=?, processed_at=NULL WHERE order_id=? AND status=?").
		WithArgs("initiated", "card", sqlmock.AnyArg(), 7, "failed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := checkoutCall(t, h, owner, "7")
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessCheckoutForbiddenForStranger(t *testing.T) {
	h, mock := newCheckoutHandler(t)
	stranger := model.Identity{ID: 42, Email: "rohan@example.in", Role: model.RoleCustomer}

	expectPendingOrder(mock, 7, 3)

	rec := checkoutCall(t, h, stranger, "7")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
