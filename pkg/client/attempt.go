package client

import (
	"context"
	"io"
	"net/http"
)

// attempt is the position of one logical call in the refresh-and-retry
// sequence:
//
//	initial --401--> refreshing --refreshed--> retried
//
// Every state is entered at most once, so a call makes at most two network
// attempts and at most one refresh.
type attempt int

const (
	attemptInitial attempt = iota
	attemptRefreshing
	attemptRetried
)

func (a attempt) String() string {
	switch a {
	case attemptInitial:
		return "initial"
	case attemptRefreshing:
		return "refreshing"
	case attemptRetried:
		return "retried"
	default:
		return "unknown"
	}
}

// requestBuilder builds a fresh *http.Request for each network attempt.
type requestBuilder func() (*http.Request, error)

// exchange runs one logical call through the attempt states and returns the
// final response. The caller owns the returned body. A transport failure on
// either attempt is returned as an *Error without a status.
func (c *Client) exchange(ctx context.Context, build requestBuilder) (*http.Response, error) {
	requestID := newRequestID()
	state := attemptInitial

	var resp *http.Response
	for {
		switch state {
		case attemptInitial, attemptRetried:
			var err error
			resp, err = c.send(requestID, state, build)
			if err != nil {
				return nil, err
			}
			if state == attemptRetried || resp.StatusCode != http.StatusUnauthorized {
				return resp, nil
			}

			c.logger.Debug("access token rejected",
				"request_id", requestID,
				"url", resp.Request.URL.Path,
			)
			state = attemptRefreshing

		case attemptRefreshing:
			if !c.refresher.Refresh(ctx) {
				// The original 401 becomes the caller's error.
				c.logger.Debug("refresh failed, not retrying", "request_id", requestID)
				return resp, nil
			}

			discard(resp)
			state = attemptRetried
		}
	}
}

// send performs a single network attempt with the access token that is
// current at this instant.
func (c *Client) send(requestID string, state attempt, build requestBuilder) (*http.Response, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}

	authorize(req, requestID, c.store.Get().AccessToken)

	c.logger.Debug("sending request",
		"method", req.Method,
		"url", req.URL.Path,
		"request_id", requestID,
		"attempt", state.String(),
	)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.Body == nil {
		resp.Body = http.NoBody
	}

	// Doers other than *http.Client may leave Request unset.
	if resp.Request == nil {
		resp.Request = req
	}

	return resp, nil
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
