package pool

import (
	"sync"

	"github.com/san-kum/chronogrid/internal/layout"
)

// CellPool recycles cell slices between evicted and newly rendered blocks.
type CellPool struct {
	pool sync.Pool
}

func NewCellPool() *CellPool {
	return &CellPool{
		pool: sync.Pool{
			New: func() interface{} {
				s := make([]layout.Cell, 0, 7*60)
				return &s
			},
		},
	}
}

func (p *CellPool) Get() []layout.Cell {
	return (*p.pool.Get().(*[]layout.Cell))[:0]
}

func (p *CellPool) Put(cells []layout.Cell) {
	if cap(cells) == 0 {
		return
	}
	cells = cells[:cap(cells)]
	for i := range cells {
		cells[i] = layout.Cell{}
	}
	cells = cells[:0]
	p.pool.Put(&cells)
}
