package credentials_test

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

func signedToken(claims jwt.RegisteredClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	Expect(err).NotTo(HaveOccurred())
	return token
}

var _ = Describe("InspectToken", func() {
	It("reads registered claims without the signing key", func() {
		exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
		token := signedToken(jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "workspace",
			ExpiresAt: jwt.NewNumericDate(exp),
		})

		claims, err := credentials.InspectToken(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Subject).To(Equal("42"))
		Expect(claims.Issuer).To(Equal("workspace"))
		Expect(claims.ExpiresAt.Equal(exp)).To(BeTrue())
		Expect(claims.Expired(time.Now())).To(BeFalse())
		Expect(claims.Expired(exp.Add(time.Second))).To(BeTrue())
	})

	It("treats tokens without exp as never expiring", func() {
		claims, err := credentials.InspectToken(signedToken(jwt.RegisteredClaims{Subject: "1"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.ExpiresAt.IsZero()).To(BeTrue())
		Expect(claims.Expired(time.Now().Add(1000 * time.Hour))).To(BeFalse())
	})

	It("rejects opaque tokens", func() {
		_, err := credentials.InspectToken("not-a-jwt")
		Expect(err).To(HaveOccurred())
	})

	It("rejects empty tokens", func() {
		_, err := credentials.InspectToken("")
		Expect(err).To(HaveOccurred())
	})
})
