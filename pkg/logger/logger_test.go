package logger_test

import (
	"bytes"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/detour-dev/detour/pkg/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("NewLoggerWithWriters", func() {
	It("writes info lines", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf)
		l.Info("hello", zap.String("key", "value"))

		output := buf.String()
		Expect(output).To(ContainSubstring("hello"))
		Expect(output).To(ContainSubstring("value"))
	})

	It("filters debug lines when debug is off", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf)
		l.Debug("hidden")

		Expect(buf.String()).To(BeEmpty())
	})

	It("emits debug lines when debug is on", func() {
		var buf bytes.Buffer
		l := logger.NewLoggerWithWriters(true, &buf)
		l.Debug("visible")

		Expect(buf.String()).To(ContainSubstring("visible"))
	})

	It("supports multiple writers", func() {
		var buf1, buf2 bytes.Buffer
		l := logger.NewLoggerWithWriters(false, &buf1, &buf2)
		l.Info("multi")

		Expect(buf1.String()).To(ContainSubstring("multi"))
		Expect(buf2.String()).To(ContainSubstring("multi"))
	})
})

var _ = Describe("NewLeveledLogger", func() {
	It("starts at info and can be raised to debug at runtime", func() {
		var buf bytes.Buffer
		l, level := logger.NewLeveledLogger(false, &buf)

		l.Debug("before")
		Expect(buf.String()).To(BeEmpty())

		level.SetLevel(zap.DebugLevel)
		l.Debug("after")
		Expect(buf.String()).To(ContainSubstring("after"))
	})

	It("starts at debug when asked", func() {
		var buf bytes.Buffer
		l, _ := logger.NewLeveledLogger(true, &buf)

		l.Debug("immediately")
		Expect(buf.String()).To(ContainSubstring("immediately"))
	})
})
