package logger_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragdesk/pkg/logger"
)

// decodeLines parses one JSON record per line.
func decodeLines(data []byte) []map[string]any {
	var records []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var rec map[string]any
		Expect(json.Unmarshal(sc.Bytes(), &rec)).To(Succeed())
		records = append(records, rec)
	}
	return records
}

var timeZero time.Time

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

var _ = Describe("New", func() {
	It("writes text records at Info level by default", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf))
		l.Debug("hidden")
		l.Info("request sent", "path", "/documents")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("msg=\"request sent\""))
		Expect(buf.String()).To(ContainSubstring("path=/documents"))
	})

	It("lets JSON win over pretty regardless of order", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithPretty(true))
		l.Info("structured", "status", 401)

		records := decodeLines(buf.Bytes())
		Expect(records).To(HaveLen(1))
		Expect(records[0]["status"]).To(BeNumerically("==", 401))
	})

	It("falls back to text when pretty is switched off again", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithPretty(false))
		l.Info("plain")

		Expect(buf.String()).To(ContainSubstring("level=INFO"))
	})

	It("adds the source location when asked", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true))
		l.Info("where")

		records := decodeLines(buf.Bytes())
		Expect(records[0]).To(HaveKey("source"))
	})

	It("ignores a nil writer", func() {
		Expect(logger.New(logger.WithWriter(nil)).Handler()).NotTo(BeNil())
	})
})

var _ = Describe("CLI", func() {
	It("hides debug records unless debug is on", func() {
		var quiet, loud bytes.Buffer
		logger.CLI(&quiet, false).Debug("refresh attempt")
		logger.CLI(&loud, true).Debug("refresh attempt")

		Expect(quiet.String()).To(BeEmpty())
		Expect(loud.String()).To(ContainSubstring("refresh attempt"))
	})

	It("reports the caller in debug mode", func() {
		var buf bytes.Buffer
		logger.CLI(&buf, true).Info("session opened")

		Expect(buf.String()).To(ContainSubstring("logger_test.go"))
	})
})

var _ = Describe("OpenFile", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "ragdesk.log")
	})

	It("appends JSON debug records with restricted permissions", func() {
		l, f, err := logger.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		l.Debug("first")
		Expect(f.Close()).To(Succeed())

		l, f, err = logger.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		l.Info("second", "user_id", 7)
		Expect(f.Close()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		records := decodeLines(data)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["msg"]).To(Equal("first"))
		Expect(records[0]["level"]).To(Equal("DEBUG"))
		Expect(records[1]["user_id"]).To(BeNumerically("==", 7))

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
	})

	It("fails when the directory does not exist", func() {
		_, _, err := logger.OpenFile(filepath.Join(path, "missing", "ragdesk.log"))
		Expect(err).To(MatchError(ContainSubstring("opening log file")))
	})
})

var _ = Describe("Multi", func() {
	It("sends debug records only to the loggers that want them", func() {
		var stderr, file bytes.Buffer
		l := logger.Multi(
			logger.CLI(&stderr, false),
			logger.New(logger.WithWriter(&file), logger.WithJSON(true), logger.WithDebug(true)),
		)

		l.Debug("retrying with refreshed token", "request_id", "abc")
		l.Warn("could not persist credentials")

		Expect(stderr.String()).NotTo(ContainSubstring("retrying"))
		Expect(stderr.String()).To(ContainSubstring("could not persist credentials"))

		records := decodeLines(file.Bytes())
		Expect(records).To(HaveLen(2))
		Expect(records[0]["request_id"]).To(Equal("abc"))
	})

	It("carries attributes and groups to every logger", func() {
		var a, b bytes.Buffer
		l := logger.Multi(
			logger.New(logger.WithWriter(&a), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&b), logger.WithJSON(true)),
		)

		l.With("command", "chat").WithGroup("stream").Info("event", "name", "token")

		for _, buf := range []*bytes.Buffer{&a, &b} {
			records := decodeLines(buf.Bytes())
			Expect(records).To(HaveLen(1))
			Expect(records[0]["command"]).To(Equal("chat"))
			Expect(records[0]["stream"]).To(HaveKeyWithValue("name", "token"))
		}
	})

	It("keeps writing to the other loggers when one fails", func() {
		var buf bytes.Buffer
		broken := logger.New(logger.WithWriter(failingWriter{}), logger.WithJSON(true))
		ok := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))

		err := logger.Multi(broken, ok).Handler().Handle(context.Background(),
			slog.NewRecord(timeZero, slog.LevelInfo, "still here", 0))

		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(buf.String()).To(ContainSubstring("still here"))
	})

	It("skips nil loggers and returns a lone logger unchanged", func() {
		l := logger.Nop()
		Expect(logger.Multi(nil, l)).To(BeIdenticalTo(l))
		Expect(logger.Multi().Handler().Enabled(context.Background(), slog.LevelError)).To(BeFalse())
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		h := logger.Nop().Handler()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			Expect(h.Enabled(context.Background(), level)).To(BeFalse())
		}
	})
})
