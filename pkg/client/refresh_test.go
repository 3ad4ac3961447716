package client_test

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragdesk/pkg/client"
	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

var _ = Describe("Refresher", func() {
	var (
		api *fakeAPI
		ctx context.Context
	)

	BeforeEach(func() {
		api = newFakeAPI()
		ctx = context.Background()
	})

	AfterEach(func() {
		api.close()
	})

	It("returns false without a network call when logged out", func() {
		api.handle("POST /auth/refresh", api.grantRefresh("a", "r"))
		c := newClient(api, credentials.NewStore())

		Expect(c.Refresher().Refresh(ctx)).To(BeFalse())
		Expect(api.count("POST /auth/refresh")).To(BeZero())
	})

	It("sends the refresh token without a bearer header", func() {
		var body map[string]string
		api.handle("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Authorization")).To(BeEmpty())
			data, _ := io.ReadAll(r.Body)
			Expect(jsonUnmarshal(data, &body)).To(Succeed())
			api.grantRefresh("new-access", "new-refresh")(w, r)
		})
		store := loggedInStore("old-access", "old-refresh")
		c := newClient(api, store)

		Expect(c.Refresher().Refresh(ctx)).To(BeTrue())
		Expect(body).To(Equal(map[string]string{"refresh_token": "old-refresh"}))
		Expect(store.Get().AccessToken).To(Equal("new-access"))
	})

	It("keeps the current refresh token when the server does not rotate it", func() {
		api.handle("POST /auth/refresh", api.grantRefresh("new-access", ""))
		store := loggedInStore("old-access", "old-refresh")
		c := newClient(api, store)

		Expect(c.Refresher().Refresh(ctx)).To(BeTrue())
		Expect(store.Get().RefreshToken).To(Equal("old-refresh"))
	})

	DescribeTable("leaves the store untouched on failure",
		func(h http.HandlerFunc) {
			api.handle("POST /auth/refresh", h)
			store := loggedInStore("old-access", "old-refresh")
			installs := 0
			store.OnChange(func(credentials.Credentials) { installs++ })
			c := newClient(api, store)

			Expect(c.Refresher().Refresh(ctx)).To(BeFalse())
			Expect(store.Get().AccessToken).To(Equal("old-access"))
			Expect(store.Get().RefreshToken).To(Equal("old-refresh"))
			Expect(installs).To(BeZero())
		},
		Entry("non-2xx status", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "revoked"})
		})),
		Entry("malformed body", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{not json"))
		})),
		Entry("empty body", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
		Entry("missing user", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "a", "refresh_token": "r"})
		})),
		Entry("missing access token", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": 1}, "refresh_token": "r"})
		})),
	)

	It("returns false on a transport failure", func() {
		store := loggedInStore("a", "r")
		c := newClient(api, store)
		api.close()

		Expect(c.Refresher().Refresh(ctx)).To(BeFalse())
		Expect(store.Get().AccessToken).To(Equal("a"))
	})

	Context("with concurrent 401s", func() {
		const callers = 8

		var release chan struct{}

		BeforeEach(func() {
			release = make(chan struct{})
			api.handle("GET /documents", acceptToken("fresh", []document{}))
			api.handle("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
				<-release
				api.grantRefresh("fresh", "rotated")(w, r)
			})
		})

		run := func(c *client.Client) {
			var wg sync.WaitGroup
			for range callers {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(c.Do(ctx, client.Request{Path: "/documents"}, nil)).To(Succeed())
				}()
			}

			// Hold the refresh endpoint until every caller has been rejected once.
			Eventually(func() int {
				return api.count("GET /documents")
			}).WithTimeout(5 * time.Second).Should(Equal(callers))
			time.Sleep(100 * time.Millisecond)
			close(release)
			wg.Wait()
		}

		It("refreshes once per rejected request by default", func() {
			run(newClient(api, loggedInStore("stale", "refresh")))
			Expect(int(api.refreshes.Load())).To(Equal(callers))
		})

		It("collapses refreshes with single-flight enabled", func() {
			run(newClient(api, loggedInStore("stale", "refresh"), client.WithSingleFlightRefresh()))
			Expect(int(api.refreshes.Load())).To(Equal(1))
			Expect(api.count("GET /documents")).To(Equal(2 * callers))
		})

		It("keeps a joined refresh alive when the first caller gives up", func() {
			store := loggedInStore("stale", "refresh")
			c := newClient(api, store, client.WithSingleFlightRefresh())

			firstCtx, cancelFirst := context.WithCancel(ctx)
			first := make(chan bool, 1)
			go func() { first <- c.Refresher().Refresh(firstCtx) }()

			Eventually(func() int {
				return api.count("POST /auth/refresh")
			}).WithTimeout(5 * time.Second).Should(Equal(1))

			second := make(chan bool, 1)
			go func() { second <- c.Refresher().Refresh(ctx) }()
			time.Sleep(100 * time.Millisecond)

			cancelFirst()
			Eventually(first).WithTimeout(time.Second).Should(Receive(BeFalse()))

			close(release)
			Eventually(second).WithTimeout(5 * time.Second).Should(Receive(BeTrue()))
			Expect(store.Get().AccessToken).To(Equal("fresh"))
			Expect(int(api.refreshes.Load())).To(Equal(1))
		})
	})
})
