package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func newCheckoutMock(t *testing.T) (*CheckoutRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCheckoutRepo(db), mock
}

func TestCheckoutCreate(t *testing.T) {
	repo, mock := newCheckoutMock(t)

	mock.ExpectExec("INSERT INTO checkout_sessions (order_id, payment_method, payment_intent_id, status) VALUES (?,?,?,?)").
		WithArgs(7, "card", "pi_1", "initiated").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), 7, "card", "pi_1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// The unique order_id index is the double-checkout guard: the second
// insert collides and surfaces as ErrAlreadyProcessed.
func TestCheckoutCreateDuplicate(t *testing.T) {
	repo, mock := newCheckoutMock(t)

	mock.ExpectExec("INSERT INTO checkout_sessions (order_id, payment_method, payment_intent_id, status) VALUES (?,?,?,?)").
		WithArgs(7, "card", "pi_2", "initiated").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'checkout_sessions.order_id'"})

	err := repo.Create(context.Background(), 7, "card", "pi_2")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutReinitiateFailedSession(t *testing.T) {
	repo, mock := newCheckoutMock(t)

	mock.ExpectExec("UPDATE checkout_sessions SET status=?, payment_method=?, payment_intent_id=?, processed_at=NULL WHERE order_id=? AND status=?").
		WithArgs("initiated", "upi", "pi_3", 7, "failed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Reinitiate(context.Background(), 7, "upi", "pi_3"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Reinitiate only touches failed sessions; one that is initiated or
// confirmed matches no row and stays a conflict.
func TestCheckoutReinitiateLiveSession(t *testing.T) {
	repo, mock := newCheckoutMock(t)

	mock.ExpectExec("UPDATE checkout_sessions SET status=?, payment_method=?, payment_intent_id=?, processed_at=NULL WHERE order_id=? AND status=?").
		WithArgs("initiated", "card", "pi_4", 7, "failed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Reinitiate(context.Background(), 7, "card", "pi_4")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookClaimAndDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := NewWebhookRepo(db)

	mock.ExpectExec("INSERT IGNORE INTO webhook_events (event_id, event_type) VALUES (?,?)").
		WithArgs("evt_1", "payment_intent.succeeded").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT IGNORE INTO webhook_events (event_id, event_type) VALUES (?,?)").
		WithArgs("evt_1", "payment_intent.succeeded").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.Claim(context.Background(), "evt_1", "payment_intent.succeeded")
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = repo.Claim(context.Background(), "evt_1", "payment_intent.succeeded")
	require.NoError(t, err)
	require.False(t, claimed)

	require.NoError(t, mock.ExpectationsWereMet())
}
