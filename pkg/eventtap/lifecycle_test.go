package eventtap_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/offlinefirst/grabber/pkg/eventtap"
	"github.com/offlinefirst/grabber/pkg/eventtap/taptest"
)

var _ = Describe("Manager lifecycle", func() {
	var (
		platform *taptest.Platform
		logs     *observer.ObservedLogs
		logger   *zap.Logger
	)

	BeforeEach(func() {
		platform = taptest.NewPlatform()
		var core zapcore.Core
		core, logs = observer.New(zapcore.InfoLevel)
		logger = zap.New(core)
	})

	Context("with a counting observer and an identity transformer", func() {
		It("reports a primary button press and keeps its flags", func() {
			var kinds []eventtap.EventType
			m := eventtap.New(identity, func(typ eventtap.EventType) {
				kinds = append(kinds, typ)
			}, eventtap.Options{Platform: platform, Logger: logger})
			DeferCleanup(m.Close)

			out := platform.Loop().Deliver(eventtap.LeftMouseDown, taptest.NewEvent(0x00010000))

			Expect(kinds).To(Equal([]eventtap.EventType{eventtap.LeftMouseDown}))
			Expect(out).NotTo(BeNil())
			Expect(out.Flags()).To(Equal(eventtap.Flags(0x00010000)))
		})
	})

	Context("without an observer", func() {
		It("applies a transformer that clears shift", func() {
			clearShift := eventtap.FlagTransformerFunc(func(raw eventtap.Flags, _ eventtap.KeyCode) eventtap.Flags {
				return raw &^ 0x00020000
			})
			m := eventtap.New(clearShift, nil, eventtap.Options{Platform: platform, Logger: logger})
			DeferCleanup(m.Close)

			var out eventtap.Event
			Expect(func() {
				out = platform.Loop().Deliver(eventtap.MouseMoved, taptest.NewEvent(0x00020000))
			}).NotTo(Panic())
			Expect(out.Flags()).To(Equal(eventtap.Flags(0)))
		})
	})

	Context("when the platform hands over a null event", func() {
		It("returns null without touching anything", func() {
			observed := 0
			transformed := 0
			transformer := eventtap.FlagTransformerFunc(func(raw eventtap.Flags, _ eventtap.KeyCode) eventtap.Flags {
				transformed++
				return raw
			})
			m := eventtap.New(transformer, func(eventtap.EventType) { observed++ }, eventtap.Options{Platform: platform, Logger: logger})
			DeferCleanup(m.Close)
			before := logs.Len()

			Expect(platform.Loop().Deliver(eventtap.LeftMouseDown, nil)).To(BeNil())
			Expect(observed).To(BeZero())
			Expect(transformed).To(BeZero())
			Expect(logs.Len()).To(Equal(before))
		})
	})

	Context("when constructed and destroyed without events", func() {
		It("logs exactly the grab and the ungrab", func() {
			m := eventtap.New(identity, nil, eventtap.Options{Platform: platform, Logger: logger})
			Expect(m.Armed()).To(BeTrue())
			Expect(m.Close()).To(Succeed())

			entries := logs.AllUntimed()
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Message).To(Equal("event tap grabbed pointer events"))
			Expect(entries[1].Message).To(Equal("event tap ungrabbed pointer events"))

			Expect(platform.Taps).To(HaveLen(1))
			Expect(platform.Taps[0].Released).To(Equal(1))
			Expect(platform.Sources[0].Released).To(Equal(1))
			Expect(platform.Loop().Detaches).To(Equal(1))
		})
	})

	Context("when registration is refused", func() {
		BeforeEach(func() {
			platform.TapErr = eventtap.ErrUnsupported
		})

		It("stays out of the event path and tears down cleanly", func() {
			observed := 0
			m := eventtap.New(identity, func(eventtap.EventType) { observed++ }, eventtap.Options{Platform: platform, Logger: logger})

			Expect(m.Armed()).To(BeFalse())
			Expect(m.Err()).To(MatchError(eventtap.ErrRegistration))

			for _, typ := range eventtap.WatchedEvents {
				platform.Loop().Deliver(typ, taptest.NewEvent(eventtap.FlagCommand))
			}
			Expect(observed).To(BeZero())
			Expect(platform.Loop().Delivered).To(BeZero())

			Expect(m.Close()).To(Succeed())
			Expect(m.Close()).To(Succeed())
			Expect(logs.FilterMessage("event tap ungrabbed pointer events").Len()).To(Equal(1))
		})
	})
})
