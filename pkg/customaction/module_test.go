package customaction

import (
	"io"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/containers/refreshenv/pkg/config"
)

var _ = Describe("Module lifecycle", func() {
	var (
		module *Module
		logger *logrus.Logger
		cfg    *config.Config
	)

	BeforeEach(func() {
		logger, _ = test.NewNullLogger()
		cfg = config.Default()
		module = NewModule(Options{
			Config: cfg,
			Opener: &fakeOpener{},
			Sender: &fakeSender{},
			Logger: logger,
			Output: io.Discard,
		})
	})

	It("starts detached", func() {
		Expect(module.Attached()).To(BeFalse())
		Expect(module.Instance()).To(BeZero())
	})

	It("attaches on process attach and records the instance", func() {
		Expect(module.Main(0x180000000, DLL_PROCESS_ATTACH)).To(BeTrue())
		Expect(module.Attached()).To(BeTrue())
		Expect(module.Instance()).To(Equal(uintptr(0x180000000)))
	})

	It("detaches on process detach", func() {
		Expect(module.Main(0x1000, DLL_PROCESS_ATTACH)).To(BeTrue())
		Expect(module.Main(0x1000, DLL_PROCESS_DETACH)).To(BeTrue())
		Expect(module.Attached()).To(BeFalse())
		Expect(module.Instance()).To(BeZero())
	})

	DescribeTable("ignores other reasons",
		func(attached bool, reason uint32) {
			if attached {
				Expect(module.Attach(0x1000)).To(Succeed())
			}
			Expect(module.Main(0x2000, reason)).To(BeTrue())
			Expect(module.Attached()).To(Equal(attached))
			if attached {
				Expect(module.Instance()).To(Equal(uintptr(0x1000)))
			}
		},
		Entry("thread attach while detached", false, uint32(DLL_THREAD_ATTACH)),
		Entry("thread detach while detached", false, uint32(DLL_THREAD_DETACH)),
		Entry("thread attach while attached", true, uint32(DLL_THREAD_ATTACH)),
		Entry("thread detach while attached", true, uint32(DLL_THREAD_DETACH)),
		Entry("unknown reason", true, uint32(42)),
	)

	It("initializes only once", func() {
		Expect(module.Attach(0x1000)).To(Succeed())
		Expect(module.Attach(0x2000)).To(Succeed())
		Expect(module.Instance()).To(Equal(uintptr(0x1000)))
	})

	It("tolerates a detach without an attach", func() {
		Expect(module.Main(0, DLL_PROCESS_DETACH)).To(BeTrue())
		Expect(module.Attached()).To(BeFalse())
	})

	It("applies the configured level", func() {
		cfg.Log.Level = "debug"
		Expect(module.Attach(0x1000)).To(Succeed())
		Expect(logger.GetLevel()).To(Equal(logrus.DebugLevel))
	})

	It("writes to the configured log file until detached", func() {
		dir, err := os.MkdirTemp("", "refreshenv")
		Expect(err).ToNot(HaveOccurred())
		defer os.RemoveAll(dir)

		cfg.Log.File = filepath.Join(dir, "action.log")
		Expect(module.Attach(0x1000)).To(Succeed())
		logger.Info("while attached")
		module.Detach()
		logger.Info("after detach")

		b, err := os.ReadFile(cfg.Log.File)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(ContainSubstring("while attached"))
		Expect(string(b)).ToNot(ContainSubstring("after detach"))
	})

	It("falls back to the default output when the log file cannot be opened", func() {
		cfg.Log.File = filepath.Join(os.DevNull, "missing", "action.log")
		Expect(module.Attach(0x1000)).To(MatchError(ContainSubstring("falling back")))
		Expect(module.Attached()).To(BeTrue())
		Expect(module.Main(0x1000, DLL_PROCESS_ATTACH)).To(BeTrue())
	})
})
