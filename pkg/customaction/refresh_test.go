package customaction

import (
	"io"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/containers/refreshenv/pkg/broadcast"
	"github.com/containers/refreshenv/pkg/config"
	"github.com/containers/refreshenv/pkg/msi"
)

var _ = Describe("RefreshEnvironmentVariables", func() {
	var (
		module *Module
		opener *fakeOpener
		sender *fakeSender
		hook   *test.Hook
		cfg    *config.Config
	)

	BeforeEach(func() {
		var logger *logrus.Logger
		logger, hook = test.NewNullLogger()
		cfg = config.Default()
		opener = &fakeOpener{}
		sender = &fakeSender{}
		module = NewModule(Options{
			Config: cfg,
			Opener: opener,
			Sender: sender,
			Logger: logger,
			Output: io.Discard,
		})
		Expect(module.Main(0x1000, DLL_PROCESS_ATTACH)).To(BeTrue())
	})

	AfterEach(func() {
		module.Main(0x1000, DLL_PROCESS_DETACH)
	})

	Context("with a valid session", func() {
		It("returns success", func() {
			Expect(module.RefreshEnvironmentVariables(42)).To(Equal(uint32(msi.ERROR_SUCCESS)))
		})

		It("opens the session with the handle and action name", func() {
			module.RefreshEnvironmentVariables(42)
			Expect(opener.handles).To(Equal([]msi.Handle{42}))
			Expect(opener.actions).To(Equal([]string{"RefreshEnvironmentVariables"}))
		})

		It("logs Initialized once", func() {
			module.RefreshEnvironmentVariables(42)
			Expect(opener.sessions).To(HaveLen(1))
			Expect(opener.sessions[0].logs).To(Equal([]string{"Initialized."}))
		})

		It("broadcasts Environment narrow and then wide", func() {
			module.RefreshEnvironmentVariables(42)
			Expect(sender.sent).To(HaveLen(2))
			Expect(sender.sent[0].Encoding).To(Equal(broadcast.Narrow))
			Expect(sender.sent[1].Encoding).To(Equal(broadcast.Wide))
			for _, msg := range sender.sent {
				Expect(msg.Area).To(Equal("Environment"))
				Expect(msg.Flags).To(Equal(uint32(broadcast.SMTO_ABORTIFHUNG)))
				Expect(msg.Timeout).To(Equal(5000 * time.Millisecond))
			}
		})

		It("finalizes the session exactly once with success", func() {
			module.RefreshEnvironmentVariables(42)
			Expect(opener.sessions[0].finalized).To(Equal([]uint32{msi.ERROR_SUCCESS}))
		})

		It("ignores broadcast failures", func() {
			sender.err = errors.New("window hung")
			Expect(module.RefreshEnvironmentVariables(42)).To(Equal(uint32(msi.ERROR_SUCCESS)))
			Expect(sender.sent).To(HaveLen(2))
			Expect(opener.sessions[0].finalized).To(HaveLen(1))
		})

		It("uses the configured action name", func() {
			cfg.Action.Name = "RefreshEnv"
			module.RefreshEnvironmentVariables(42)
			Expect(opener.actions).To(Equal([]string{"RefreshEnv"}))
		})

		It("opens a fresh session on every invocation", func() {
			module.RefreshEnvironmentVariables(1)
			module.RefreshEnvironmentVariables(2)
			Expect(opener.sessions).To(HaveLen(2))
			for _, s := range opener.sessions {
				Expect(s.finalized).To(HaveLen(1))
			}
			Expect(sender.sent).To(HaveLen(4))
		})
	})

	Context("when the session cannot be initialized", func() {
		BeforeEach(func() {
			opener.fail = true
		})

		It("returns failure", func() {
			Expect(module.RefreshEnvironmentVariables(0)).To(Equal(uint32(msi.ERROR_INSTALL_FAILURE)))
		})

		It("does not broadcast", func() {
			module.RefreshEnvironmentVariables(0)
			Expect(sender.sent).To(BeEmpty())
		})

		It("does not log through the session", func() {
			module.RefreshEnvironmentVariables(0)
			Expect(opener.sessions[0].logs).To(BeEmpty())
		})

		It("still finalizes the session exactly once", func() {
			module.RefreshEnvironmentVariables(0)
			Expect(opener.sessions[0].finalized).To(Equal([]uint32{msi.ERROR_INSTALL_FAILURE}))
		})

		It("reports the failure in the process log", func() {
			module.RefreshEnvironmentVariables(0)
			Expect(hook.LastEntry()).ToNot(BeNil())
			Expect(hook.LastEntry().Level).To(Equal(logrus.ErrorLevel))
			Expect(hook.LastEntry().Message).To(ContainSubstring("failed to initialize"))
		})
	})

	Context("when the module is not attached", func() {
		BeforeEach(func() {
			module.Main(0x1000, DLL_PROCESS_DETACH)
		})

		It("fails without opening a session", func() {
			Expect(module.RefreshEnvironmentVariables(42)).To(Equal(uint32(msi.ERROR_INSTALL_FAILURE)))
			Expect(opener.sessions).To(BeEmpty())
			Expect(sender.sent).To(BeEmpty())
		})
	})

	Context("with the standalone session", func() {
		It("succeeds and broadcasts", func() {
			logger, _ := test.NewNullLogger()
			standalone := NewModule(Options{
				Opener: msi.Standalone{Logger: logger},
				Sender: sender,
				Logger: logger,
				Output: io.Discard,
			})
			Expect(standalone.Attach(0)).To(Succeed())
			defer standalone.Detach()

			Expect(standalone.RefreshEnvironmentVariables(0)).To(Equal(uint32(msi.ERROR_SUCCESS)))
			Expect(sender.sent).To(HaveLen(2))
		})
	})
})
