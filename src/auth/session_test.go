package auth

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudnews/cloudnews/src/models"
)

func TestMakeSessionId(t *testing.T) {
	id1 := makeSessionId()
	id2 := makeSessionId()
	assert.Len(t, id1, 40)
	assert.NotEqual(t, id1, id2)
}

func TestGetSession(t *testing.T) {
	ctx := context.Background()
	sessionColumns := []string{"id", "user_id", "first_name", "full_name", "email", "birthday", "profile_link", "expires_at"}

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		birthday := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT .+ FROM session WHERE id = \$1`).
			WithArgs("session-id").
			WillReturnRows(pgxmock.NewRows(sessionColumns).AddRow(
				"session-id", "user-1", "Ada", "Ada Lovelace", "ada@example.com",
				birthday, "https://example.com/ada", time.Now().Add(time.Hour),
			))

		sess, err := GetSession(ctx, mock, "session-id")
		require.NoError(t, err)
		assert.Equal(t, "user-1", sess.UserID)
		assert.Equal(t, "Ada Lovelace", sess.FullName)
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM session WHERE id = \$1`).
			WithArgs("nope").
			WillReturnRows(pgxmock.NewRows(sessionColumns))

		_, err = GetSession(ctx, mock, "nope")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestCreateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	birthday := time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO session`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Ada", "Ada Lovelace", "ada@example.com", birthday, "https://example.com/ada", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sess, err := CreateSession(context.Background(), mock, models.SessionInfo{
		UserID:      "user-1",
		FirstName:   "Ada",
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		Birthday:    birthday,
		ProfileLink: "https://example.com/ada",
	})
	require.NoError(t, err)
	assert.Len(t, sess.ID, 40)
	assert.Equal(t, "user-1", sess.UserID)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}
