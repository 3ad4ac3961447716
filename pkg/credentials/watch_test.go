package credentials_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragdesk/pkg/credentials"
	"github.com/papercomputeco/ragdesk/pkg/logger"
)

var _ = Describe("Manager.Watch", func() {
	var (
		tmpDir string
		mgr    *credentials.Manager
		store  *credentials.Store
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-watch-*")
		Expect(err).NotTo(HaveOccurred())

		mgr, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		store = credentials.NewStore()

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		Expect(mgr.Watch(ctx, store, logger.Nop())).To(Succeed())
	})

	AfterEach(func() {
		cancel()
		os.RemoveAll(tmpDir)
	})

	It("picks up a session saved by another process", func() {
		other, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		user := &credentials.User{ID: 1, Email: "a@example.com"}
		Expect(other.Save(credentials.Credentials{AccessToken: "from-disk", User: user})).To(Succeed())

		Eventually(func() string {
			return store.Get().AccessToken
		}).WithTimeout(2 * time.Second).Should(Equal("from-disk"))
	})

	It("clears the store when the file is removed", func() {
		Expect(store.Install(&credentials.User{ID: 1}, "a", "r")).To(Succeed())
		Expect(mgr.Save(store.Get())).To(Succeed())
		Expect(mgr.Remove()).To(Succeed())

		Eventually(func() bool {
			return store.Get().Authenticated()
		}).WithTimeout(2 * time.Second).Should(BeFalse())
	})

	It("ignores unrelated files in the directory", func() {
		Expect(store.Install(&credentials.User{ID: 1}, "keep", "r")).To(Succeed())
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("version = 0\n"), 0o600)).To(Succeed())

		Consistently(func() string {
			return store.Get().AccessToken
		}).WithTimeout(200 * time.Millisecond).Should(Equal("keep"))
	})

	It("keeps the live session when the file is truncated in place", func() {
		Expect(store.Install(&credentials.User{ID: 1}, "live", "r")).To(Succeed())
		Expect(mgr.Save(store.Get())).To(Succeed())

		f, err := os.OpenFile(mgr.GetTarget(), os.O_WRONLY|os.O_TRUNC, 0o600)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Close()).To(Succeed())

		Consistently(func() string {
			return store.Get().AccessToken
		}).WithTimeout(300 * time.Millisecond).Should(Equal("live"))
	})

	It("keeps the live session when a file without a session is written", func() {
		Expect(store.Install(&credentials.User{ID: 1}, "live", "r")).To(Succeed())
		Expect(os.WriteFile(mgr.GetTarget(), []byte("version = 0\n"), 0o600)).To(Succeed())

		Consistently(func() string {
			return store.Get().AccessToken
		}).WithTimeout(300 * time.Millisecond).Should(Equal("live"))
	})

	It("never observes a logged out store while this process saves", func() {
		user := &credentials.User{ID: 1}
		Expect(store.Install(user, "token-0", "r")).To(Succeed())
		Expect(mgr.Save(store.Get())).To(Succeed())

		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			for i := 1; i <= 50; i++ {
				Expect(mgr.Save(credentials.Credentials{AccessToken: "token-n", RefreshToken: "r", User: user})).To(Succeed())
			}
		}()

		Consistently(func() bool {
			return store.Get().Authenticated()
		}).WithTimeout(300 * time.Millisecond).WithPolling(time.Millisecond).Should(BeTrue())
		Eventually(done).Should(BeClosed())
	})
})

var _ = Describe("Manager.Watch through a symlinked directory", func() {
	var (
		realDir string
		cancel  context.CancelFunc
	)

	BeforeEach(func() {
		var err error
		realDir, err = os.MkdirTemp("", "credentials-real-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if cancel != nil {
			cancel()
		}
		os.RemoveAll(realDir)
	})

	It("resolves the target and still sees changes", func() {
		linkParent, err := os.MkdirTemp("", "credentials-link-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, linkParent)

		link := filepath.Join(linkParent, "ragdesk")
		Expect(os.Symlink(realDir, link)).To(Succeed())

		mgr, err := credentials.NewManager(link)
		Expect(err).NotTo(HaveOccurred())

		resolved, err := filepath.EvalSymlinks(realDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.GetTarget()).To(Equal(filepath.Join(resolved, "credentials.toml")))

		store := credentials.NewStore()
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		Expect(mgr.Watch(ctx, store, logger.Nop())).To(Succeed())

		writer, err := credentials.NewManager(realDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Save(credentials.Credentials{
			AccessToken: "via-link",
			User:        &credentials.User{ID: 2},
		})).To(Succeed())

		Eventually(func() string {
			return store.Get().AccessToken
		}).WithTimeout(2 * time.Second).Should(Equal("via-link"))
	})
})
