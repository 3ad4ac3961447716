package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragdesk/pkg/client"
)

var _ = Describe("Error", func() {
	It("includes the cause in the message", func() {
		err := &client.Error{Message: "request failed", Err: errors.New("connection refused")}
		Expect(err.Error()).To(Equal("request failed: connection refused"))
		Expect(errors.Unwrap(err)).To(MatchError("connection refused"))
	})

	It("finds the status through wrapping", func() {
		err := fmt.Errorf("listing documents: %w", &client.Error{Message: "nope", Status: http.StatusUnauthorized})
		Expect(client.StatusCode(err)).To(Equal(http.StatusUnauthorized))
		Expect(client.IsUnauthorized(err)).To(BeTrue())
		Expect(client.StatusCode(errors.New("plain"))).To(BeZero())
	})

	Describe("message priority", func() {
		var api *fakeAPI

		BeforeEach(func() {
			api = newFakeAPI()
		})

		AfterEach(func() {
			api.close()
		})

		DescribeTable("derives the message from the error body",
			func(status int, body string, expected string) {
				api.handle("GET /thing", func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(status)
					_, _ = w.Write([]byte(body))
				})
				c := newClient(api, loggedInStore("a", ""))

				err := c.Do(context.Background(), client.Request{Path: "/thing"}, nil)

				var apiErr *client.Error
				Expect(errors.As(err, &apiErr)).To(BeTrue())
				Expect(apiErr.Message).To(Equal(expected))
				Expect(apiErr.Status).To(Equal(status))
			},
			Entry("explicit message", 400, `{"message":"bad question","detail":[{"msg":"ignored"}]}`, "bad question"),
			Entry("first validation detail", 422, `{"detail":[{"msg":"field required"},{"msg":"second"}]}`, "field required"),
			Entry("string detail", 404, `{"detail":"Document not found"}`, "Document not found"),
			Entry("empty detail list", 422, `{"detail":[]}`, "HTTP 422"),
			Entry("no known fields", 500, `{"error":"boom"}`, "HTTP 500"),
			Entry("non-JSON body", 502, `<html>bad gateway</html>`, "HTTP 502"),
			Entry("empty body", 503, ``, "HTTP 503"),
			Entry("401 without refresh token", 401, `{"message":"token expired"}`, "token expired"),
		)
	})
})
