// Package pool owns the set of materialized year-blocks.
//
// Blocks are created lazily by EnsureRendered and destroyed by the eviction
// calls. Nothing outside the pool keeps a *Block across calls: callers hold
// year numbers and look blocks up when they need them.
package pool

import (
	"log/slog"
	"sort"
	"time"

	"github.com/san-kum/chronogrid/internal/frame"
	"github.com/san-kum/chronogrid/internal/layout"
)

// SafeDistance is the year distance from the current year within which a
// block is never evicted.
const SafeDistance = 2

// Block is one rendered year.
type Block struct {
	Year      int
	TopOffset float64
	Geometry  layout.Geometry
	Cells     []layout.Cell
	// Visible is maintained by the viewport observer.
	Visible bool
	Active  bool
	// Focus is the cell the block's own scroll container is brought to,
	// or -1.
	Focus int

	keepAlive *frame.Timer
}

func (b *Block) KeepAlive() bool { return b.keepAlive.Active() }

// Canvas receives the render nodes of blocks as they come and go.
type Canvas interface {
	Attach(b *Block)
	Move(b *Block)
	Detach(year int)
}

type Options struct {
	Mode   layout.Mode
	Width  float64
	Height float64
	Today  layout.Date
	Canvas Canvas
	Logger *slog.Logger
}

type Pool struct {
	s      *frame.Scheduler
	blocks map[int]*Block
	cells  *CellPool
	canvas Canvas
	logger *slog.Logger

	mode   layout.Mode
	width  float64
	height float64
	today  layout.Date

	// keep-alive timers outlive the block they protect so a block that is
	// cleared and re-rendered mid-warp is still protected.
	keep      map[int]*frame.Timer
	onRelease func(year int)
}

func New(s *frame.Scheduler, opts Options) *Pool {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		s:      s,
		blocks: make(map[int]*Block),
		cells:  NewCellPool(),
		canvas: opts.Canvas,
		logger: logger.With(slog.String("component", "pool")),
		mode:   opts.Mode,
		width:  opts.Width,
		height: opts.Height,
		today:  opts.Today,
		keep:   make(map[int]*frame.Timer),
	}
}

// EnsureRendered registers the block for year at topOffset, or only moves it
// when it already exists.
func (p *Pool) EnsureRendered(year int, topOffset float64) {
	if b, ok := p.blocks[year]; ok {
		if b.TopOffset != topOffset {
			b.TopOffset = topOffset
			if p.canvas != nil {
				p.canvas.Move(b)
			}
		}
		return
	}

	g := layout.Compute(year, p.width, p.height, p.mode)
	b := &Block{
		Year:      year,
		TopOffset: topOffset,
		Geometry:  g,
		Cells:     layout.BuildCells(p.cells.Get(), g, p.today),
		Focus:     -1,
		keepAlive: p.keep[year],
	}
	p.blocks[year] = b
	if p.canvas != nil {
		p.canvas.Attach(b)
	}
	p.logger.Debug("block rendered",
		slog.Int("year", year),
		slog.Int("columns", g.Columns),
		slog.Int("rows", g.Rows),
		slog.Int("offset", g.Offset))
}

// Evict removes the block for year unless it is absent, visible, kept alive
// or within SafeDistance of current. It reports whether a block was removed.
func (p *Pool) Evict(year, current int) bool {
	b, ok := p.blocks[year]
	if !ok || b.Visible || b.KeepAlive() || distance(year, current) <= SafeDistance {
		return false
	}
	p.remove(b)
	return true
}

// EvictFar evicts every eligible block and returns the evicted years.
func (p *Pool) EvictFar(current int) []int {
	var out []int
	for _, year := range p.Years() {
		if p.Evict(year, current) {
			out = append(out, year)
		}
	}
	return out
}

// EvictAllExcept unconditionally removes every block for which keep returns
// false. A nil keep clears the pool.
func (p *Pool) EvictAllExcept(keep func(*Block) bool) int {
	n := 0
	for _, year := range p.Years() {
		b := p.blocks[year]
		if keep != nil && keep(b) {
			continue
		}
		p.remove(b)
		n++
	}
	return n
}

func (p *Pool) Clear() {
	p.EvictAllExcept(nil)
}

// MarkKeepAlive protects year from eviction for d. Overlapping marks keep
// the later deadline.
func (p *Pool) MarkKeepAlive(year int, d time.Duration) {
	deadline := p.s.Now().Add(d)
	if t := p.keep[year]; t.Active() && !t.Deadline().Before(deadline) {
		return
	}
	p.keep[year].Stop()

	var t *frame.Timer
	t = p.s.After(d, func() {
		if p.keep[year] != t {
			return
		}
		delete(p.keep, year)
		if p.onRelease != nil {
			p.onRelease(year)
		}
	})
	p.keep[year] = t
	if b, ok := p.blocks[year]; ok {
		b.keepAlive = t
	}
}

// OnRelease registers fn to run when the keep-alive of a year runs out.
func (p *Pool) OnRelease(fn func(year int)) { p.onRelease = fn }

func (p *Pool) IsKeptAlive(year int) bool {
	return p.keep[year].Active()
}

func (p *Pool) Lookup(year int) (*Block, bool) {
	b, ok := p.blocks[year]
	return b, ok
}

// Years returns the materialized years in ascending order.
func (p *Pool) Years() []int {
	years := make([]int, 0, len(p.blocks))
	for y := range p.blocks {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (p *Pool) Len() int { return len(p.blocks) }

func (p *Pool) Mode() layout.Mode { return p.mode }

// SetMode changes the layout mode for blocks rendered from now on. Existing
// blocks keep their old geometry until they are evicted.
func (p *Pool) SetMode(m layout.Mode) { p.mode = m }

func (p *Pool) SetViewport(width, height float64) {
	p.width = width
	p.height = height
}

func (p *Pool) Viewport() (width, height float64) { return p.width, p.height }

func (p *Pool) SetToday(d layout.Date) { p.today = d }

// SetFocus records the landing cell of year and redraws it.
func (p *Pool) SetFocus(year, cell int) {
	b, ok := p.blocks[year]
	if !ok {
		return
	}
	b.Focus = cell
	if p.canvas != nil {
		p.canvas.Move(b)
	}
}

func (p *Pool) SetVisible(year int, visible bool) {
	if b, ok := p.blocks[year]; ok {
		b.Visible = visible
	}
}

func (p *Pool) remove(b *Block) {
	delete(p.blocks, b.Year)
	if p.canvas != nil {
		p.canvas.Detach(b.Year)
	}
	p.cells.Put(b.Cells)
	b.Cells = nil
	p.logger.Debug("block evicted", slog.Int("year", b.Year))
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
