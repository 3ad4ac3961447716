package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragdesk/pkg/client"
	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

// fakeAPI is a workspace API double. Routes are keyed by "METHOD /path" and
// every request is counted per route.
type fakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	calls    map[string]int
	requests []*http.Request

	refreshes atomic.Int32
}

func newFakeAPI() *fakeAPI {
	api := &fakeAPI{
		routes: map[string]http.HandlerFunc{},
		calls:  map[string]int{},
	}
	api.server = httptest.NewServer(http.HandlerFunc(api.serve))
	return api
}

func (a *fakeAPI) handle(route string, h http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[route] = h
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path

	a.mu.Lock()
	a.calls[route]++
	a.requests = append(a.requests, r.Clone(r.Context()))
	h, ok := a.routes[route]
	a.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

func (a *fakeAPI) count(route string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[route]
}

func (a *fakeAPI) lastRequest() *http.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return nil
	}
	return a.requests[len(a.requests)-1]
}

func (a *fakeAPI) allRequests() []*http.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*http.Request(nil), a.requests...)
}

func (a *fakeAPI) close() {
	a.server.Close()
}

// acceptToken answers 200 with body only for the given bearer token and 401
// otherwise.
func acceptToken(token string, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// grantRefresh answers refresh calls with a new token pair.
func (a *fakeAPI) grantRefresh(access, refresh string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.refreshes.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"user":          map[string]any{"id": 1, "email": "ada@example.com", "name": "Ada"},
			"access_token":  access,
			"refresh_token": refresh,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func loggedInStore(access, refresh string) *credentials.Store {
	store := credentials.NewStore()
	Expect(store.Install(&credentials.User{ID: 1, Email: "ada@example.com", Name: "Ada"}, access, refresh)).To(Succeed())
	return store
}

func newClient(api *fakeAPI, store client.CredentialStore, opts ...client.Option) *client.Client {
	c, err := client.New(api.server.URL, store, opts...)
	Expect(err).NotTo(HaveOccurred())
	return c
}

func jsonUnmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
