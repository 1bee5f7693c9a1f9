package app_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chronogrid/internal/app"
	"github.com/san-kum/chronogrid/internal/audio"
	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/nav"
	"github.com/san-kum/chronogrid/internal/power"
	"github.com/san-kum/chronogrid/internal/store"
)

type fakeOutput struct {
	started bool
	closed  bool
}

func (f *fakeOutput) Start(func([][]float32)) error {
	f.started = true
	return nil
}

func (f *fakeOutput) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("App", func() {
	var (
		a        *app.App
		st       *store.Store
		out      *fakeOutput
		progress []int
		booted   int
	)

	build := func() {
		a = app.New(app.Options{
			Store:  st,
			Now:    time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
			Width:  1280,
			Height: 640,
			Output: out,
			Seed:   7,
		})
		progress = nil
		booted = 0
		bus.On(a.Bus, bus.BootProgressTopic, func(p bus.BootProgress) { progress = append(progress, p.Percent) })
		bus.On(a.Bus, bus.AppBooted, func(struct{}) { booted++ })
	}

	boot := func() {
		a.Boot()
		a.S.Advance(2 * time.Second)
	}

	BeforeEach(func() {
		st = store.NewMemory()
		out = &fakeOutput{}
		build()
	})

	AfterEach(func() {
		Expect(a.Close()).To(Succeed())
	})

	Describe("boot", func() {
		It("steps through the loading sequence before starting", func() {
			a.Boot()
			a.S.Advance(app.BootStepDelay)
			Expect(progress).To(Equal([]int{40}))
			Expect(a.Booted()).To(BeFalse())

			a.S.Advance(app.BootStepDelay)
			Expect(progress).To(Equal([]int{40, 80}))

			a.S.Advance(app.BootStepDelay)
			Expect(progress).To(Equal([]int{40, 80, 100}))
			Expect(a.Booted()).To(BeTrue())
			Expect(booted).To(Equal(1))
			Expect(a.Loading()).To(BeTrue())

			a.S.Advance(app.LoadingLinger)
			Expect(a.Loading()).To(BeFalse())
			Expect(a.Toasts.History()).To(ContainElement(app.ToastBooted))
		})

		It("lands on today", func() {
			boot()
			Expect(a.Nav.State()).To(Equal(nav.Idle))
			Expect(a.Nav.CurrentYear()).To(Equal(2024))
			Expect(a.Pool.Years()).To(ContainElement(2024))
		})

		It("starts audio when the user left it on", func() {
			boot()
			Expect(out.started).To(BeTrue())
			Expect(a.Mixer.Enabled()).To(BeTrue())
			Expect(a.Toasts.History()).NotTo(ContainElement(app.ToastAudioOn))
		})

		It("ignores shortcuts until booted", func() {
			Expect(a.HandleKey("x")).To(BeFalse())
			Expect(a.Scroll(100)).To(BeFalse())
		})
	})

	Describe("restoring", func() {
		It("applies the saved mode, theme and audio choice", func() {
			off := false
			idx := 990
			Expect(st.Save(store.Snapshot{Theme: "light", Mode: "random", AudioEnabled: &off, YearIndex: &idx})).To(Succeed())
			a.Close()
			build()
			boot()

			Expect(a.Nav.Mode()).To(Equal(layout.Randomized))
			Expect(a.Effects.Theme()).To(Equal("light"))
			Expect(a.AudioPreference()).To(BeFalse())
			Expect(a.Mixer.Enabled()).To(BeFalse())
		})

		It("falls back to defaults on a corrupt snapshot", func() {
			Expect(st.Set(store.KeyState, "not json")).To(Succeed())
			a.Close()
			build()
			a.S.Advance(100 * time.Millisecond)
			Expect(a.Toasts.Current()).To(Equal(store.ToastLoadFailed))
			Expect(a.Restored()).To(Equal(store.Snapshot{}))
		})
	})

	Describe("shortcuts", func() {
		BeforeEach(boot)

		It("warps to a random year with x", func() {
			Expect(a.HandleKey("x")).To(BeTrue())
			Expect(a.Nav.IsWarping()).To(BeTrue())
			a.S.Advance(3 * time.Second)
			Expect(a.Nav.IsWarping()).To(BeFalse())
		})

		It("switches layout modes with r and c", func() {
			a.HandleKey("r")
			Expect(a.Nav.Mode()).To(Equal(layout.Randomized))
			a.S.Advance(100 * time.Millisecond)
			Expect(a.Toasts.Current()).To(Equal(nav.ToastRandomMode))

			a.HandleKey("c")
			Expect(a.Nav.Mode()).To(Equal(layout.Chronological))
		})

		It("toggles the theme behind the veil", func() {
			Expect(a.HandleKey("t")).To(BeTrue())
			Expect(a.Effects.Veiled()).To(BeTrue())
			a.S.Advance(time.Second)
			Expect(a.Effects.Theme()).To(Equal("light"))
			a.S.Advance(time.Second)
			Expect(st.Get(store.KeyTheme)).To(Equal("light"))
		})

		It("toggles audio with m, announces it and remembers it", func() {
			Expect(a.HandleKey("m")).To(BeTrue())
			a.S.Advance(audio.MuteFade + 100*time.Millisecond)
			Expect(a.Mixer.Enabled()).To(BeFalse())
			Expect(a.Toasts.Current()).To(Equal(app.ToastAudioOff))
			Expect(a.AudioPreference()).To(BeFalse())

			a.S.Advance(time.Second)
			Expect(st.Get(store.KeyAudioEnabled)).To(Equal("false"))
		})

		It("scrolls by configured steps", func() {
			top := a.Nav.ScrollTop()
			Expect(a.HandleKey("down")).To(BeTrue())
			Expect(a.Nav.ScrollTop()).To(BeNumerically("~", top+0.25*640, 1e-9))
			Expect(a.Nav.IsScrolling()).To(BeTrue())
		})

		It("leaves unknown keys alone", func() {
			Expect(a.HandleKey("z")).To(BeFalse())
		})
	})

	Describe("power saving", func() {
		BeforeEach(boot)

		It("mutes on blur without changing the user's choice", func() {
			a.Blur()
			a.S.Advance(time.Second)
			Expect(a.Power.Enabled()).To(BeTrue())
			Expect(a.Mixer.Enabled()).To(BeFalse())
			Expect(a.Effects.Enabled()).To(BeFalse())
			Expect(a.AudioPreference()).To(BeTrue())
			Expect(a.Toasts.History()).To(ContainElement(power.ToastOn))
			Expect(a.Toasts.History()).NotTo(ContainElement(app.ToastAudioOff))

			a.Focus()
			a.S.Advance(time.Second)
			Expect(a.Mixer.Enabled()).To(BeTrue())
			Expect(a.Effects.Enabled()).To(BeTrue())
			Expect(a.Toasts.Current()).To(Equal(power.ToastOff))
		})
	})

	Describe("shutdown", func() {
		It("flushes the snapshot and closes the device", func() {
			boot()
			Expect(a.Close()).To(Succeed())
			Expect(out.closed).To(BeTrue())

			snap, err := st.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.YearIndex).NotTo(BeNil())
			Expect(*snap.YearIndex).To(Equal(layout.DefaultTotalYears / 2))
			Expect(snap.Mode).To(Equal("structured"))
			Expect(snap.Theme).To(Equal("dark"))
		})
	})
})
