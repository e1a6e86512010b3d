package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Fanout(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_notifications")).
		WithArgs(5, pq.Int64Array{1, 2, 3}).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewNotificationRepository(db).Fanout(context.Background(), 5, []int{1, 2, 3})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_FanoutEmpty(t *testing.T) {
	db, mock := newMock(t)
	n, err := NewNotificationRepository(db).Fanout(context.Background(), 5, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_ListAndMarkRead(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_notifications un")).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nid", "title", "description", "read", "created_at"}).
			AddRow(10, 2, "Hello", "World", false, now))
	list, err := repo.ListForUser(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hello", list[0].Title)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE user_notifications SET read = TRUE")).
		WithArgs(10, 4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	n, err := repo.MarkRead(context.Background(), 4, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
