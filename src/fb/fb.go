package fb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cloudnews/cloudnews/src/config"
	"github.com/cloudnews/cloudnews/src/models"
	"github.com/cloudnews/cloudnews/src/oops"
)

// A profile that is missing any of the fields we require. The login flow
// rejects these outright rather than creating half-filled sessions.
var ErrIncompleteProfile = errors.New("profile is missing required fields")

var ErrBadToken = errors.New("access token was rejected")

// Facebook reports birthdays as MM/DD/YYYY.
const birthdayFormat = "01/02/2006"

const profileFields = "id,first_name,name,email,birthday,link"

// A client for the Facebook Graph API. The zero BaseUrl means the configured
// production endpoint; tests point it at a local server.
type Client struct {
	BaseUrl string

	// Used for requests that are not made on behalf of a logged-in user.
	AppAccessToken string

	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseUrl:        config.Config.Facebook.GraphUrl,
		AppAccessToken: config.Config.Facebook.AppAccessToken,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type profileResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Birthday  string `json:"birthday"`
	Link      string `json:"link"`
}

/*
Fetches the profile of the user the access token belongs to and validates it
into a SessionInfo. Every profile field is required; a token whose user
withheld any of them cannot log in.
*/
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*models.SessionInfo, error) {
	query := url.Values{}
	query.Set("fields", profileFields)
	query.Set("access_token", accessToken)

	res, err := c.get(ctx, "/me", query)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusBadRequest {
		return nil, ErrBadToken
	}
	if res.StatusCode != http.StatusOK {
		return nil, oops.New(nil, "received status %d from the graph API", res.StatusCode)
	}

	var profile profileResponse
	err = readJson(res, &profile)
	if err != nil {
		return nil, err
	}

	if profile.ID == "" ||
		profile.FirstName == "" ||
		profile.Name == "" ||
		profile.Email == "" ||
		profile.Birthday == "" ||
		profile.Link == "" {
		return nil, ErrIncompleteProfile
	}

	birthday, err := time.Parse(birthdayFormat, profile.Birthday)
	if err != nil {
		return nil, oops.New(err, "failed to parse profile birthday '%s'", profile.Birthday)
	}

	return &models.SessionInfo{
		UserID:      profile.ID,
		FirstName:   profile.FirstName,
		FullName:    profile.Name,
		Email:       profile.Email,
		Birthday:    birthday,
		ProfileLink: profile.Link,
	}, nil
}

// Resolves a user id to their public display name, using the app access
// token since no user token is in play.
func (c *Client) UserName(ctx context.Context, userID string) (string, error) {
	query := url.Values{}
	query.Set("fields", "name")
	query.Set("access_token", c.AppAccessToken)

	res, err := c.get(ctx, "/"+url.PathEscape(userID), query)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", oops.New(nil, "received status %d from the graph API", res.StatusCode)
	}

	var profile profileResponse
	err = readJson(res, &profile)
	if err != nil {
		return "", err
	}
	if profile.Name == "" {
		return "", oops.New(nil, "graph API returned no name for user %s", userID)
	}

	return profile.Name, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s?%s", c.BaseUrl, path, query.Encode()), nil)
	if err != nil {
		panic(err)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, oops.New(err, "failed to reach the graph API")
	}
	return res, nil
}

func readJson(res *http.Response, dest any) error {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return oops.New(err, "failed to read graph API response")
	}
	err = json.Unmarshal(body, dest)
	if err != nil {
		return oops.New(err, "failed to unmarshal graph API response")
	}
	return nil
}
