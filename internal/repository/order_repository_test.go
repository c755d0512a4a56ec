package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
)

func newMockDB(t *testing.T) (*OrderRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewOrderRepo(db), mock
}

func TestTransitionStatusWinner(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?").
		WithArgs("confirmed", 5, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_status_history (order_id, status, changed_by) VALUES (?,?,?)").
		WithArgs(5, "confirmed", 9).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.TransitionStatus(context.Background(), 5, model.StatusPending, model.StatusConfirmed, 9)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestTransitionStatusLoser covers the exactly-one-wins property: a
// writer whose starting-status precondition no longer holds matches no
// row, and the follow-up existence check turns that into ErrInvalidTransition
// rather than a silent double-apply.
func TestTransitionStatusLoser(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?").
		WithArgs("confirmed", 5, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM orders WHERE id=?").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectRollback()

	err := repo.TransitionStatus(context.Background(), 5, model.StatusPending, model.StatusConfirmed, 9)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatusMissingOrder(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?").
		WithArgs("confirmed", 404, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM orders WHERE id=?").
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.TransitionStatus(context.Background(), 404, model.StatusPending, model.StatusConfirmed, 9)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// No history row may be written when the conditional update lost: the
// audit trail only ever records transitions that actually happened.
func TestTransitionStatusLoserWritesNoHistory(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?").
		WithArgs("cancelled", 5, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM orders WHERE id=?").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectRollback()

	err := repo.TransitionStatus(context.Background(), 5, model.StatusPending, model.StatusCancelled, 9)
	require.ErrorIs(t, err, ErrInvalidTransition)
	// ExpectationsWereMet fails if an unexpected INSERT had been issued.
	require.NoError(t, mock.ExpectationsWereMet())
}
