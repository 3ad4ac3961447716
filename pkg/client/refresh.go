package client

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

// TokenGrant is the body returned by the login, register and refresh
// endpoints.
type TokenGrant struct {
	User         *credentials.User `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresher exchanges the stored refresh token for a new token pair.
type Refresher struct {
	client *Client
	path   string

	// group is nil unless single-flight refresh is enabled.
	group *singleflight.Group
}

func newRefresher(c *Client, path string, singleFlight bool) *Refresher {
	r := &Refresher{
		client: c,
		path:   path,
	}
	if singleFlight {
		r.group = &singleflight.Group{}
	}
	return r
}

// Refresh reports whether a new token pair was installed. It returns false
// without a network call when there is no refresh token or no user. On any
// failure the credential store is left untouched. Refresh never retries.
func (r *Refresher) Refresh(ctx context.Context) bool {
	if r.group == nil {
		return r.refresh(ctx)
	}

	// The shared call outlives any one caller: it keeps the first caller's
	// values but not its cancellation, and each caller waits on its own ctx.
	ch := r.group.DoChan("refresh", func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx)), nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			r.client.logger.Debug("joined in-flight token refresh")
		}
		return res.Val.(bool)
	case <-ctx.Done():
		r.client.logger.Debug("stopped waiting for token refresh", "error", ctx.Err())
		return false
	}
}

func (r *Refresher) refresh(ctx context.Context) bool {
	c := r.client
	creds := c.store.Get()
	if creds.RefreshToken == "" || creds.User == nil {
		c.logger.Debug("no refresh token, skipping refresh")
		return false
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: creds.RefreshToken})
	if err != nil {
		return false
	}

	req, err := newRequest(ctx, http.MethodPost, c.resolve(r.path, nil), body)
	if err != nil {
		c.logger.Debug("building refresh request", "error", err)
		return false
	}
	c.headers.set(req, nil)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, newRequestID())

	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug("refresh request failed", "error", err)
		return false
	}
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	defer discard(resp)

	if !successful(resp.StatusCode) {
		c.logger.Debug("refresh rejected", "status", resp.StatusCode)
		return false
	}

	var grant TokenGrant
	if err := decodeJSON(resp.Body, &grant); err != nil {
		c.logger.Debug("decoding refresh response", "error", err)
		return false
	}

	if grant.User == nil || grant.AccessToken == "" {
		c.logger.Debug("refresh response is missing the user or access token")
		return false
	}

	// The server may keep the refresh token unrotated and omit it.
	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		refreshToken = creds.RefreshToken
	}

	if err := c.store.Install(grant.User, grant.AccessToken, refreshToken); err != nil {
		c.logger.Debug("installing refreshed tokens", "error", err)
		return false
	}

	c.logger.Debug("access token refreshed", "user_id", grant.User.ID)
	return true
}
