package credentials_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

var _ = Describe("Store", func() {
	var (
		store *credentials.Store
		user  *credentials.User
	)

	BeforeEach(func() {
		store = credentials.NewStore()
		user = &credentials.User{ID: 7, Email: "ada@example.com", Name: "Ada"}
	})

	It("starts unauthenticated", func() {
		c := store.Get()
		Expect(c.Authenticated()).To(BeFalse())
		Expect(c.CanRefresh()).To(BeFalse())
	})

	Describe("Install", func() {
		It("replaces the session", func() {
			Expect(store.Install(user, "access-1", "refresh-1")).To(Succeed())

			c := store.Get()
			Expect(c.AccessToken).To(Equal("access-1"))
			Expect(c.RefreshToken).To(Equal("refresh-1"))
			Expect(c.User).To(Equal(user))
			Expect(c.Authenticated()).To(BeTrue())
			Expect(c.CanRefresh()).To(BeTrue())
		})

		It("rejects a token without a user", func() {
			Expect(store.Install(nil, "access", "refresh")).To(MatchError(credentials.ErrIncomplete))
			Expect(store.Get().Authenticated()).To(BeFalse())
		})

		It("rejects a user without a token", func() {
			Expect(store.Install(user, "", "refresh")).To(MatchError(credentials.ErrIncomplete))
		})

		It("keeps the stored user isolated from the caller", func() {
			Expect(store.Install(user, "a", "r")).To(Succeed())
			user.Name = "changed"

			got := store.Get()
			Expect(got.User.Name).To(Equal("Ada"))

			got.User.Name = "also changed"
			Expect(store.Get().User.Name).To(Equal("Ada"))
		})
	})

	Describe("Clear", func() {
		It("drops the session", func() {
			Expect(store.Install(user, "a", "r")).To(Succeed())
			store.Clear()

			c := store.Get()
			Expect(c.AccessToken).To(BeEmpty())
			Expect(c.RefreshToken).To(BeEmpty())
			Expect(c.User).To(BeNil())
		})
	})

	Describe("OnChange", func() {
		It("notifies observers after install and clear", func() {
			var seen []credentials.Credentials
			store.OnChange(func(c credentials.Credentials) { seen = append(seen, c) })

			Expect(store.Install(user, "a", "r")).To(Succeed())
			store.Clear()

			Expect(seen).To(HaveLen(2))
			Expect(seen[0].AccessToken).To(Equal("a"))
			Expect(seen[1].Authenticated()).To(BeFalse())
		})

		It("does not notify on a rejected install", func() {
			calls := 0
			store.OnChange(func(credentials.Credentials) { calls++ })
			_ = store.Install(nil, "a", "r")
			Expect(calls).To(BeZero())
		})
	})

	Describe("Restore", func() {
		It("hydrates without notifying observers", func() {
			calls := 0
			store.OnChange(func(credentials.Credentials) { calls++ })

			err := store.Restore(credentials.Credentials{AccessToken: "a", RefreshToken: "r", User: user})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.Get().AccessToken).To(Equal("a"))
			Expect(calls).To(BeZero())
		})

		It("accepts empty credentials", func() {
			Expect(store.Install(user, "a", "r")).To(Succeed())
			Expect(store.Restore(credentials.Credentials{})).To(Succeed())
			Expect(store.Get().Authenticated()).To(BeFalse())
		})

		It("rejects an orphaned token", func() {
			err := store.Restore(credentials.Credentials{AccessToken: "a"})
			Expect(err).To(MatchError(credentials.ErrIncomplete))
		})
	})

	It("never returns a torn snapshot under concurrent installs", func() {
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				u := &credentials.User{ID: int64(i)}
				_ = store.Install(u, "a", "r")
			}()
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				c := store.Get()
				Expect(c.AccessToken == "").To(Equal(c.User == nil))
			}()
		}
		wg.Wait()
	})
})
