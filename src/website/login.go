package website

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cloudnews/cloudnews/src/auth"
	"github.com/cloudnews/cloudnews/src/fb"
)

type loginRequest struct {
	AccessToken string `json:"access_token"`
}

type sessionInfoJson struct {
	UserID      string    `json:"user_id"`
	FirstName   string    `json:"first_name"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Birthday    time.Time `json:"birthday"`
	ProfileLink string    `json:"profile_link"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Profile sessionInfoJson `json:"profile"`
}

/*
Logs a writer in with a Facebook access token. The token's profile must be
complete; a profile missing any required field is rejected and no session is
created. On success the session id doubles as the API bearer token and is
also set as a cookie.
*/
func Login(c *RequestContext) ResponseData {
	body, err := io.ReadAll(c.Req.Body)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, "failed to read request", err)
	}
	var req loginRequest
	err = json.Unmarshal(body, &req)
	if err != nil || req.AccessToken == "" {
		return c.ErrorResponse(http.StatusUnprocessableEntity, "an access token is required")
	}

	info, err := c.FBClient.CurrentUser(c, req.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, fb.ErrBadToken):
			return c.ErrorResponse(http.StatusUnauthorized, "access token was rejected")
		case errors.Is(err, fb.ErrIncompleteProfile):
			return c.ErrorResponse(http.StatusUnprocessableEntity, "profile is missing required fields")
		default:
			return c.ErrorResponse(http.StatusInternalServerError, "failed to log in", err)
		}
	}

	session, err := auth.CreateSession(c, c.Conn, *info)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, "failed to log in", err)
	}

	var res ResponseData
	res.SetCookie(auth.NewSessionCookie(session))
	res.WriteJson(loginResponse{
		Token: session.ID,
		Profile: sessionInfoJson{
			UserID:      info.UserID,
			FirstName:   info.FirstName,
			FullName:    info.FullName,
			Email:       info.Email,
			Birthday:    info.Birthday,
			ProfileLink: info.ProfileLink,
		},
	})
	return res
}

func SessionInfo(c *RequestContext) ResponseData {
	sess := c.CurrentSession

	var res ResponseData
	res.WriteJson(sessionInfoJson{
		UserID:      sess.UserID,
		FirstName:   sess.FirstName,
		FullName:    sess.FullName,
		Email:       sess.Email,
		Birthday:    sess.Birthday,
		ProfileLink: sess.ProfileLink,
	})
	return res
}

func Logout(c *RequestContext) ResponseData {
	err := auth.DeleteSession(c, c.Conn, c.CurrentSession.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, "failed to log out", err)
	}

	var res ResponseData
	res.SetCookie(auth.DeleteSessionCookie)
	res.WriteJson(map[string]any{"ok": true})
	return res
}
