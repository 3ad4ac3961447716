package session_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

var _ = Describe("Open", func() {
	var (
		configDir string
		stderr    *bytes.Buffer
	)

	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().Bool("debug", false, "")
		cmd.Flags().String("config-dir", "", "")
		cmd.Flags().String("log-file", "", "")
		config.AddClientFlags(cmd)
		cmd.SetErr(stderr)
		Expect(cmd.ParseFlags(append([]string{"--config-dir", configDir}, args...))).To(Succeed())
		return cmd
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		stderr = &bytes.Buffer{}
	})

	It("uses the defaults without a config file", func() {
		s, err := session.Open(newCmd(), session.Options{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		Expect(s.Config.Client.APITarget).To(Equal("http://localhost:8000"))
		Expect(s.Manager).NotTo(BeNil())
		Expect(s.Store.Get().Authenticated()).To(BeFalse())
	})

	It("prefers flags over config.toml", func() {
		cfg := "version = 0\n[client]\napi_target = \"https://file.example.com\"\nrequest_timeout = \"5s\"\n"
		Expect(os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(cfg), 0o600)).To(Succeed())

		s, err := session.Open(newCmd("--api-target", "https://flag.example.com"), session.Options{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		Expect(s.Config.Client.APITarget).To(Equal("https://flag.example.com"))
		Expect(s.Config.Client.RequestTimeout).To(Equal("5s"))
	})

	It("hydrates the stored session", func() {
		mgr, err := credentials.NewManager(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.Save(credentials.Credentials{
			AccessToken:  "access",
			RefreshToken: "refresh",
			User:         &credentials.User{ID: 1, Email: "ada@example.com"},
		})).To(Succeed())

		s, err := session.Open(newCmd(), session.Options{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		Expect(s.Store.Get().AccessToken).To(Equal("access"))
	})

	It("skips credentials.toml when persistence is off", func() {
		s, err := session.Open(newCmd("--persist=false"), session.Options{})
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		Expect(s.Manager).To(BeNil())
		Expect(s.Store.Install(&credentials.User{ID: 1}, "a", "r")).To(Succeed())
		_, err = os.Stat(filepath.Join(configDir, "credentials.toml"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("rejects an invalid timeout", func() {
		_, err := session.Open(newCmd("--timeout", "soon"), session.Options{})
		Expect(err).To(MatchError(ContainSubstring("client.request_timeout")))
	})

	It("rejects an API target that is not a URL", func() {
		_, err := session.Open(newCmd("--api-target", "ftp://example.com"), session.Options{})
		Expect(err).To(HaveOccurred())
	})

	It("writes JSON logs to --log-file", func() {
		logPath := filepath.Join(configDir, "ragdesk.log")
		s, err := session.Open(newCmd("--log-file", logPath), session.Options{})
		Expect(err).NotTo(HaveOccurred())
		s.Close()

		data, err := os.ReadFile(logPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"session opened"`))
	})

	It("logs debug records with their caller under --debug", func() {
		s, err := session.Open(newCmd("--debug"), session.Options{})
		Expect(err).NotTo(HaveOccurred())
		s.Close()

		Expect(stderr.String()).To(ContainSubstring("session opened"))
		Expect(stderr.String()).To(ContainSubstring("session.go"))
	})

	It("keeps stderr quiet without --debug", func() {
		s, err := session.Open(newCmd(), session.Options{})
		Expect(err).NotTo(HaveOccurred())
		s.Close()

		Expect(stderr.String()).NotTo(ContainSubstring("session opened"))
	})

	Describe("RequestContext", func() {
		It("applies client.request_timeout", func() {
			s, err := session.Open(newCmd("--timeout", "2s"), session.Options{})
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			ctx, cancel := s.RequestContext(context.Background())
			defer cancel()
			deadline, ok := ctx.Deadline()
			Expect(ok).To(BeTrue())
			Expect(time.Until(deadline)).To(BeNumerically("<=", 2*time.Second))
		})

		It("has no deadline when the timeout is zero", func() {
			s, err := session.Open(newCmd("--timeout", "0"), session.Options{})
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			ctx, cancel := s.RequestContext(context.Background())
			defer cancel()
			_, ok := ctx.Deadline()
			Expect(ok).To(BeFalse())
		})
	})
})
