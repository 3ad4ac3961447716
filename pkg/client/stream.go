package client

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/papercomputeco/ragdesk/pkg/sse"
)

// Stream executes a JSON request against an event-stream endpoint and calls
// fn with every decoded event, in order, on the calling goroutine.
//
// Authentication and the single refresh-and-retry happen before any byte of
// the stream is read; a non-2xx response or a response without a body is an
// *Error. Once decoding starts no further authentication is attempted. An
// error returned by fn stops the stream and is returned as is.
func (c *Client) Stream(ctx context.Context, req Request, fn sse.Handler) error {
	body, err := req.encode()
	if err != nil {
		return err
	}

	if req.Method == "" {
		req.Method = http.MethodPost
	}

	target := c.resolve(req.Path, req.Query)
	resp, err := c.exchange(ctx, func() (*http.Request, error) {
		r, err := newRequest(ctx, req.method(), target, body)
		if err != nil {
			return nil, err
		}
		c.headers.set(r, req.Header)
		if body != nil {
			r.Header.Set("Content-Type", "application/json")
		}
		r.Header.Set("Accept", "text/event-stream")
		r.Header.Set("Cache-Control", "no-cache")
		return r, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !successful(resp.StatusCode) {
		return normalizeResponse(resp)
	}

	if resp.StatusCode == http.StatusNoContent || resp.Body == http.NoBody {
		return &Error{
			Message: "response has no event stream",
			Status:  resp.StatusCode,
		}
	}

	var r io.Reader = resp.Body
	if c.streamTap != nil {
		r = io.TeeReader(r, c.streamTap)
	}

	var handlerErr error
	events := 0
	err = sse.Decode(r, func(ev sse.Event) error {
		events++
		if err := fn(ev); err != nil {
			handlerErr = err
			return err
		}
		return nil
	})

	c.logger.Debug("event stream ended",
		"url", resp.Request.URL.Path,
		"events", events,
	)

	switch {
	case err == nil:
		return nil
	case handlerErr != nil && errors.Is(err, handlerErr):
		return handlerErr
	default:
		return &Error{Message: "reading event stream", Err: err}
	}
}
