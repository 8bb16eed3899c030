package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cloudnews/cloudnews/src/config"
	"github.com/cloudnews/cloudnews/src/db"
	"github.com/cloudnews/cloudnews/src/jobs"
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/cloudnews/cloudnews/src/oops"
)

const SessionCookieName = "CloudNewsSession"

const sessionDuration = time.Hour * 24 * 14

func makeSessionId() string {
	idBytes := make([]byte, 40)
	_, err := io.ReadFull(rand.Reader, idBytes)
	if err != nil {
		panic(err)
	}

	return base64.StdEncoding.EncodeToString(idBytes)[:40]
}

var ErrNoSession = errors.New("no session found")

func GetSession(ctx context.Context, conn db.ConnOrTx, id string) (*models.Session, error) {
	sess, err := db.QueryOne[models.Session](ctx, conn, "SELECT $columns FROM session WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrNoSession
		} else {
			return nil, oops.New(err, "failed to get session")
		}
	}

	return sess, nil
}

// Creates a session for a logged-in writer, capturing the profile the login
// provider vouched for.
func CreateSession(ctx context.Context, conn db.ConnOrTx, info models.SessionInfo) (*models.Session, error) {
	session := models.Session{
		ID:          makeSessionId(),
		UserID:      info.UserID,
		FirstName:   info.FirstName,
		FullName:    info.FullName,
		Email:       info.Email,
		Birthday:    info.Birthday,
		ProfileLink: info.ProfileLink,
		ExpiresAt:   time.Now().Add(sessionDuration),
	}

	_, err := conn.Exec(ctx,
		`
		INSERT INTO session (id, user_id, first_name, full_name, email, birthday, profile_link, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
		session.ID,
		session.UserID,
		session.FirstName,
		session.FullName,
		session.Email,
		session.Birthday,
		session.ProfileLink,
		session.ExpiresAt,
	)
	if err != nil {
		return nil, oops.New(err, "failed to persist session")
	}

	return &session, nil
}

// Deletes a session by id. If no session with that id exists, no
// error is returned.
func DeleteSession(ctx context.Context, conn db.ConnOrTx, id string) error {
	_, err := conn.Exec(ctx, "DELETE FROM session WHERE id = $1", id)
	if err != nil {
		return oops.New(err, "failed to delete session")
	}

	return nil
}

func NewSessionCookie(session *models.Session) *http.Cookie {
	return &http.Cookie{
		Name:  SessionCookieName,
		Value: session.ID,

		Domain:  config.Config.Auth.CookieDomain,
		Expires: time.Now().Add(sessionDuration),

		Secure:   config.Config.Auth.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteDefaultMode,
	}
}

var DeleteSessionCookie = &http.Cookie{
	Name:   SessionCookieName,
	Domain: config.Config.Auth.CookieDomain,
	MaxAge: -1,
}

func DeleteExpiredSessions(ctx context.Context, conn db.ConnOrTx) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM session WHERE expires_at <= CURRENT_TIMESTAMP")
	if err != nil {
		return 0, oops.New(err, "failed to delete expired sessions")
	}

	return tag.RowsAffected(), nil
}

func PeriodicallyDeleteExpiredSessions(conn db.ConnOrTx) *jobs.Job {
	job := jobs.New("delete expired sessions")
	go func() {
		defer job.Finish()

		t := time.NewTicker(1 * time.Hour)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				n, err := DeleteExpiredSessions(job.Ctx, conn)
				if err == nil {
					if n > 0 {
						job.Logger.Info().Int64("num deleted sessions", n).Msg("Deleted expired sessions")
					}
				} else {
					job.Logger.Error().Err(err).Msg("Failed to delete expired sessions")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
