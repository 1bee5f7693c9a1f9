package nav_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/fx"
	"github.com/san-kum/chronogrid/internal/gate"
	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/nav"
	"github.com/san-kum/chronogrid/internal/pool"
	"github.com/san-kum/chronogrid/internal/viewport"
)

const (
	width  = 1280.0
	height = 640.0
)

type scriptedRand struct {
	values []int
}

func (r *scriptedRand) Intn(n int) int {
	v := r.values[0]
	r.values = r.values[1:]
	return v % n
}

var _ = Describe("Controller", func() {
	var (
		s      *frame.Scheduler
		b      *bus.Bus
		rec    *fx.Recorder
		vp     *viewport.Viewport
		p      *pool.Pool
		g      *gate.Gate
		c      *nav.Controller
		rng    *scriptedRand
		saves  int
		states []string
		today  = layout.NewDate(2024, 6, 1)
	)

	topOf := func(year int) float64 {
		return float64(year-2024+layout.DefaultTotalYears/2) * height
	}

	BeforeEach(func() {
		s = frame.New(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
		b = bus.New(nil)
		rec = fx.NewRecorder()
		rec.Attach(b)
		em := fx.NewEmitter(b)
		vp = viewport.New(s, width, height)
		p = pool.New(s, pool.Options{Width: width, Height: height, Today: today})
		g = gate.New(s, em, 0)
		rng = &scriptedRand{values: []int{1850 - 2024 + 1000, 39}}
		saves = 0
		states = nil
		bus.On(b, bus.NavStateChanged, func(st bus.NavState) { states = append(states, st.To) })

		c = nav.New(nav.Deps{Scheduler: s, Viewport: vp, Pool: p, Gate: g, FX: em}, nav.Options{
			Config: nav.DefaultConfig(),
			Today:  today,
			Rand:   rng,
			Save:   func() { saves++ },
		})
		c.Initialize()
		s.Advance(100 * time.Millisecond)
		s.Advance(500 * time.Millisecond)
		rec.Reset()
		states = nil
		saves = 0
	})

	AfterEach(func() {
		c.Close()
	})

	Describe("boot", func() {
		It("lands on today with the home window rendered", func() {
			Expect(c.State()).To(Equal(nav.Idle))
			Expect(c.ScrollTop()).To(Equal(topOf(2024)))
			Expect(c.CurrentYear()).To(Equal(2024))
			Expect(p.Years()).To(Equal([]int{2022, 2023, 2024, 2025, 2026}))
			Expect(g.Locked()).To(BeFalse())

			blk, ok := p.Lookup(2024)
			Expect(ok).To(BeTrue())
			Expect(c.Landing().Cell).To(Equal(layout.CellIndex(blk.Geometry, today)))
			Expect(blk.Focus).To(Equal(c.Landing().Cell))
		})

		It("does nothing when already home", func() {
			Expect(c.JumpToToday(false)).To(BeFalse())
			Expect(rec.Commands).To(BeEmpty())
		})
	})

	Describe("random jump", func() {
		var firstScroll int

		BeforeEach(func() {
			firstScroll = -1
			vp.Listen(func(viewport.ScrollEvent) {
				if firstScroll < 0 {
					firstScroll = len(rec.Commands)
				}
			})
			Expect(c.JumpToRandom()).To(BeTrue())
		})

		It("pre-renders five years around the target", func() {
			for y := 1845; y <= 1855; y++ {
				_, ok := p.Lookup(y)
				Expect(ok).To(BeTrue(), "year %d", y)
			}
			Expect(p.IsKeptAlive(1850)).To(BeTrue())
		})

		It("cues the jump and bursts particles before scrolling", func() {
			s.Advance(100 * time.Millisecond)
			Expect(firstScroll).To(BeNumerically(">", 0))
			Expect(rec.Index("play:jump")).To(BeNumerically("<", firstScroll))
			Expect(rec.Count("spawn")).To(Equal(15))
			Expect(rec.Plays[0].Options.Volume).To(Equal(nav.RandomJumpVolume))
		})

		It("names the landing date", func() {
			Expect(rec.Toasts).To(ContainElement("Quantum Jump: Heading to Sat Feb 09 1850"))
		})

		It("rejects competing warps", func() {
			Expect(c.JumpToRandom()).To(BeFalse())
			Expect(c.JumpToToday(false)).To(BeFalse())
			Expect(c.JumpToToday(true)).To(BeFalse())
		})

		It("treats the target as current while warping", func() {
			w, ok := c.Warp()
			Expect(ok).To(BeTrue())
			Expect(w.Class).To(Equal(nav.ClassFar))
			Expect(w.Duration).To(Equal(2 * time.Second))
			Expect(c.CurrentYear()).To(Equal(1850))
			Expect(g.Locked()).To(BeTrue())
			Expect(c.Observer().Connected()).To(BeFalse())
		})

		It("returns to idle at the target after 2000ms", func() {
			s.Advance(1990 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Warping))

			s.Advance(20 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Idle))
			Expect(c.ScrollTop()).To(Equal(topOf(1850)))
			Expect(c.ScrollYear()).To(Equal(1850))
			Expect(c.Landing().Date).To(Equal(layout.NewDate(1850, 2, 9)))
			Expect(c.Observer().Connected()).To(BeTrue())
			Expect(saves).To(Equal(1))
			Expect(rec.Commands[len(rec.Commands)-1]).To(Equal("play:beep"))
		})

		It("never enters scrolling from its own smooth scroll", func() {
			s.Advance(3 * time.Second)
			Expect(states).To(Equal([]string{"warping", "idle"}))
		})
	})

	Describe("user scrolling", func() {
		It("moves through scrolling and back to idle after the debounce", func() {
			vp.SetScrollTop(topOf(2024) + 50)
			Expect(c.State()).To(Equal(nav.Scrolling))
			Expect(g.Locked()).To(BeTrue())
			Expect(rec.Commands).To(ContainElement("play:scroll"))

			s.Advance(100 * time.Millisecond)
			vp.SetScrollTop(topOf(2024) + 120)
			s.Advance(100 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Scrolling))

			s.Advance(100 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Idle))
			Expect(saves).To(Equal(1))
			Expect(g.Locked()).To(BeTrue())

			s.Advance(400 * time.Millisecond)
			Expect(g.Locked()).To(BeFalse())
			Expect(rec.Count("play:scroll")).To(Equal(1))
		})

		It("records scroll velocity as chroma", func() {
			vp.SetScrollTop(topOf(2024) + 300)
			s.Advance(20 * time.Millisecond)
			Expect(c.Chroma()).To(BeNumerically("~", 12, 0.001))
			s.Advance(200 * time.Millisecond)
			Expect(c.Chroma()).To(BeZero())
		})
	})

	Describe("jump to today", func() {
		BeforeEach(func() {
			vp.SetScrollTop(topOf(2029))
			s.Advance(200 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Idle))
			rec.Reset()
		})

		It("runs a near warp for five years", func() {
			Expect(c.JumpToToday(false)).To(BeTrue())
			Expect(rec.Toasts).To(Equal([]string{nav.ToastHomeNear}))
			Expect(rec.Commands).To(ContainElement("play:warp"))
			Expect(rec.Count("spawn")).To(BeZero())

			s.Advance(1190 * time.Millisecond)
			Expect(c.IsWarping()).To(BeTrue())
			s.Advance(20 * time.Millisecond)
			Expect(c.IsWarping()).To(BeFalse())
			Expect(c.ScrollTop()).To(Equal(topOf(2024)))
		})
	})

	Describe("far jump home", func() {
		BeforeEach(func() {
			vp.SetScrollTop(topOf(2060))
			s.Advance(200 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Idle))
			rec.Reset()
		})

		It("toasts, cues the jump and bursts before a 2000ms warp", func() {
			Expect(c.JumpToToday(false)).To(BeTrue())
			Expect(rec.Toasts).To(Equal([]string{nav.ToastHomeFar}))
			Expect(rec.Commands).To(ContainElement("play:jump"))
			Expect(rec.Count("spawn")).To(Equal(15))

			w, ok := c.Warp()
			Expect(ok).To(BeTrue())
			Expect(w.Class).To(Equal(nav.ClassFar))
			Expect(w.Duration).To(Equal(2 * time.Second))

			s.Advance(1990 * time.Millisecond)
			Expect(c.IsWarping()).To(BeTrue())
			s.Advance(20 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Idle))
			Expect(c.ScrollTop()).To(Equal(topOf(2024)))
		})
	})

	Describe("warp window at the end of the span", func() {
		It("renders nothing past the last year", func() {
			last := layout.NewSpan(layout.DefaultTotalYears, 2024).YearForIndex(layout.DefaultTotalYears - 1)
			rng.values = []int{layout.DefaultTotalYears - 1, 0}
			Expect(c.JumpToRandom()).To(BeTrue())

			Expect(p.Years()).To(ContainElement(last))
			Expect(p.Years()[len(p.Years())-1]).To(Equal(last))

			s.Advance(3 * time.Second)
			Expect(c.ScrollYear()).To(Equal(last))
			Expect(p.Years()[len(p.Years())-1]).To(Equal(last))
		})
	})

	Describe("resize", func() {
		It("holds resizes during a warp and applies the last one", func() {
			c.JumpToRandom()
			c.Resize(800, 400)
			c.Resize(900, 450)
			c.Resize(1000, 500)
			Expect(c.HasPendingResize()).To(BeTrue())
			Expect(vp.Height()).To(Equal(height))

			s.Advance(2100 * time.Millisecond)
			Expect(c.HasPendingResize()).To(BeFalse())
			Expect(c.State()).To(Equal(nav.Idle))
			Expect(vp.Height()).To(Equal(500.0))
			Expect(c.YearHeight()).To(Equal(500.0))
			Expect(c.ScrollTop()).To(Equal(float64(layout.DefaultTotalYears/2) * 500))
			Expect(rec.Commands).To(ContainElement("resize:1000x500"))

			blk, ok := p.Lookup(2024)
			Expect(ok).To(BeTrue())
			Expect(blk.Geometry).To(Equal(layout.Compute(2024, 1000, 500, layout.Chronological)))
			Expect(blk.TopOffset).To(Equal(c.ScrollTop()))
		})

		It("clears and re-renders immediately when idle", func() {
			c.Resize(1000, 500)
			s.Advance(50 * time.Millisecond)
			Expect(c.State()).To(Equal(nav.Idle))
			Expect(p.Years()).To(ContainElements(2023, 2024, 2025))
			for _, y := range p.Years() {
				blk, _ := p.Lookup(y)
				Expect(blk.Geometry.Columns).To(Equal(layout.Columns(1000, 500, layout.DayCount(y))))
			}
		})
	})

	Describe("mode switch", func() {
		It("re-renders every block with randomized offsets", func() {
			c.SetMode(layout.Randomized)

			Expect(c.Mode()).To(Equal(layout.Randomized))
			Expect(p.Len()).To(BeNumerically(">=", 3))
			blk, ok := p.Lookup(2024)
			Expect(ok).To(BeTrue())
			Expect(blk.Geometry.Offset).To(Equal(11))
			Expect(rec.Toasts).To(Equal([]string{nav.ToastRandomMode}))
			Expect(saves).To(Equal(1))

			c.SetMode(layout.Chronological)
			blk, _ = p.Lookup(2024)
			Expect(blk.Geometry.Offset).To(Equal(0))
			Expect(rec.Toasts).To(ContainElement(nav.ToastChronoMode))
		})
	})
})

var _ = Describe("Controller before boot", func() {
	var (
		s     *frame.Scheduler
		p     *pool.Pool
		c     *nav.Controller
		today = layout.NewDate(2024, 6, 1)
	)

	BeforeEach(func() {
		s = frame.New(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
		b := bus.New(nil)
		em := fx.NewEmitter(b)
		vp := viewport.New(s, width, height)
		p = pool.New(s, pool.Options{Width: width, Height: height, Today: today})
		g := gate.New(s, em, 0)
		c = nav.New(nav.Deps{Scheduler: s, Viewport: vp, Pool: p, Gate: g, FX: em}, nav.Options{
			Config: nav.DefaultConfig(),
			Today:  today,
			Rand:   &scriptedRand{values: []int{1850 - 2024 + 1000, 39}},
		})
		c.Initialize()
	})

	AfterEach(func() {
		c.Close()
	})

	It("lets the boot jump take over a warp in flight once", func() {
		s.Advance(20 * time.Millisecond)
		Expect(c.JumpToRandom()).To(BeTrue())
		Expect(c.IsWarping()).To(BeTrue())

		s.Advance(100 * time.Millisecond)
		Expect(c.State()).To(Equal(nav.Idle))
		Expect(c.CurrentYear()).To(Equal(2024))
		Expect(c.Landing().Date).To(Equal(today))

		s.Advance(2 * time.Second)
		Expect(c.State()).To(Equal(nav.Idle))
		Expect(c.CurrentYear()).To(Equal(2024))
	})

	It("drops the abandoned target once its keep-alive runs out", func() {
		s.Advance(20 * time.Millisecond)
		c.JumpToRandom()
		s.Advance(100 * time.Millisecond)

		Expect(p.Years()).To(ContainElement(1850))
		Expect(p.IsKeptAlive(1850)).To(BeTrue())

		s.Advance(3 * time.Second)
		Expect(p.IsKeptAlive(1850)).To(BeFalse())
		Expect(p.Years()).NotTo(ContainElement(1850))
		Expect(p.Years()).To(ContainElement(2024))
	})

	It("refuses a second initial jump during a later warp", func() {
		s.Advance(200 * time.Millisecond)
		Expect(c.JumpToRandom()).To(BeTrue())
		Expect(c.JumpToToday(true)).To(BeFalse())
	})
})

var _ = DescribeTable("distance classification",
	func(distance int, class nav.Class, d time.Duration) {
		Expect(nav.Classify(distance)).To(Equal(class))
		if class != nav.ClassNone {
			Expect(nav.DefaultDurations.For(distance, false)).To(Equal(d))
		}
	},
	Entry("already there", 0, nav.ClassNone, time.Duration(0)),
	Entry("one year", 1, nav.ClassLocal, 500*time.Millisecond),
	Entry("five years", 5, nav.ClassNear, 1200*time.Millisecond),
	Entry("twenty years", 20, nav.ClassNear, 1200*time.Millisecond),
	Entry("fifty years", 50, nav.ClassFar, 2000*time.Millisecond),
)

var _ = DescribeTable("pre-render window",
	func(distance, half int) {
		Expect(nav.PreRenderWindow(distance)).To(Equal(half))
	},
	Entry("near", 5, 2),
	Entry("far", 21, 3),
	Entry("very far", 51, 5),
)
