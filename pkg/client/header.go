package client

import "net/http"

// RequestIDHeader correlates the attempts of one logical call. The retry
// after a refresh carries the same id as the first attempt.
const RequestIDHeader = "X-Request-ID"

// reserved is the set of caller headers that are never copied onto an
// outgoing request because the client sets them itself.
var reserved = map[string]struct{}{
	// The bearer token always comes from the credential store.
	"Authorization": {},

	// JSON and multipart bodies declare their own content type; a multipart
	// boundary in particular cannot be supplied by the caller.
	"Content-Type": {},

	// Computed by net/http from the body.
	"Content-Length": {},

	RequestIDHeader: {},
}

// headers sets the request headers shared by every call.
type headers struct {
	userAgent string
}

func (h headers) set(req *http.Request, extra http.Header) {
	for k, values := range extra {
		if _, skip := reserved[http.CanonicalHeaderKey(k)]; skip {
			continue
		}
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
}

// authorize attaches the bearer token. An empty token sends no
// Authorization header at all.
func authorize(req *http.Request, requestID, accessToken string) {
	req.Header.Set(RequestIDHeader, requestID)

	if accessToken == "" {
		req.Header.Del("Authorization")
		return
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
}
