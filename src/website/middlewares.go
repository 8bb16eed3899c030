package website

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudnews/cloudnews/src/auth"
	"github.com/cloudnews/cloudnews/src/oops"
)

func panicCatcherMiddleware(h Handler) Handler {
	return func(c *RequestContext) (res ResponseData) {
		defer func() {
			if recovered := recover(); recovered != nil {
				maybeError, ok := recovered.(*error)
				var err error
				if ok {
					err = *maybeError
				} else {
					err = oops.New(nil, fmt.Sprintf("Recovered from panic with value: %v", recovered))
				}
				res = c.ErrorResponse(http.StatusInternalServerError, "there was a problem handling your request", err)
			}
		}()

		return h(c)
	}
}

func logRequestsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		start := time.Now()
		res := h(c)
		c.Logger.Info().
			Str("method", c.Req.Method).
			Str("path", c.Req.URL.Path).
			Int("status", res.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("Served request")
		return res
	}
}

/*
Resolves the caller's session and rejects the request when there is none.
Sessions come either from a bearer token (the usual path for the mobile
client) or from the session cookie.
*/
func needsAuth(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		sessionId := ""
		if header := c.Req.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			sessionId = strings.TrimPrefix(header, "Bearer ")
		} else if cookie, err := c.Req.Cookie(auth.SessionCookieName); err == nil {
			sessionId = cookie.Value
		}

		if sessionId == "" {
			return c.ErrorResponse(http.StatusUnauthorized, "login required")
		}

		session, err := auth.GetSession(c, c.Conn, sessionId)
		if err != nil {
			if errors.Is(err, auth.ErrNoSession) {
				return c.ErrorResponse(http.StatusUnauthorized, "login required")
			}
			return c.ErrorResponse(http.StatusInternalServerError, "there was a problem handling your request", err)
		}
		if session.ExpiresAt.Before(time.Now()) {
			return c.ErrorResponse(http.StatusUnauthorized, "login required")
		}

		c.CurrentSession = session
		return h(c)
	}
}

func logContextErrors(c *RequestContext, errs ...error) {
	for _, err := range errs {
		c.Logger.Error().Timestamp().Stack().Str("Requested", c.Req.URL.String()).Err(err).Msg("error occurred during request")
	}
}

func logContextErrorsMiddleware(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		res := h(c)
		logContextErrors(c, res.Errors...)
		return res
	}
}
