package memory

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/sosim/cpu"
)

const (
	DEFAULT_SIZE      = 1024 // Default physical memory size, in cells.
	DEFAULT_PAGE_SIZE = 8    // Default page (and frame) size, in cells.

	FRAME_FREE    = -1 // Owner of an unallocated frame.
	PAGE_UNMAPPED = -1 // Page table entry of an unmapped page.
)

// PageTable maps the logical pages of a process to physical frames.
type PageTable []int

// Manager is the paged memory manager, owning physical memory and its frames.
type Manager struct {
	Verbose bool // If set, logs allocations.

	Allocations   int // Successful allocations.
	Deallocations int // Deallocations.

	pageSize int
	cell     []cpu.Cell
	owner    []int
}

// NewManager creates a memory manager of size cells, in frames of pageSize cells.
func NewManager(size, pageSize int) (mm *Manager, err error) {
	if size <= 0 || pageSize <= 0 {
		err = fmt.Errorf("%w: size %d, page size %d", ErrConfigSize, size, pageSize)
		return
	}
	if size%pageSize != 0 {
		err = fmt.Errorf("%w: size %d, page size %d", ErrConfigPageSize, size, pageSize)
		return
	}

	mm = &Manager{
		pageSize: pageSize,
		cell:     make([]cpu.Cell, size),
		owner:    make([]int, size/pageSize),
	}

	for n := range mm.cell {
		mm.cell[n] = cpu.MakeData(0)
	}
	for n := range mm.owner {
		mm.owner[n] = FRAME_FREE
	}

	return
}

// Defines for the memory manager.
func (mm *Manager) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEMORY_SIZE": fmt.Sprintf("%d", mm.Size()),
		"PAGE_SIZE":   fmt.Sprintf("%d", mm.pageSize),
	})
}

// Size returns the physical memory size, in cells.
func (mm *Manager) Size() int {
	return len(mm.cell)
}

// PageSize returns the page size, in cells.
func (mm *Manager) PageSize() int {
	return mm.pageSize
}

// Frames returns the total number of frames.
func (mm *Manager) Frames() int {
	return len(mm.owner)
}

// FreeFrames returns the number of unallocated frames.
func (mm *Manager) FreeFrames() (count int) {
	for _, owner := range mm.owner {
		if owner == FRAME_FREE {
			count++
		}
	}
	return
}

// UsedFrames returns the number of allocated frames.
func (mm *Manager) UsedFrames() int {
	return mm.Frames() - mm.FreeFrames()
}

// Owner returns the owner of a frame, or FRAME_FREE.
func (mm *Manager) Owner(frame int) int {
	if frame < 0 || frame >= len(mm.owner) {
		return FRAME_FREE
	}
	return mm.owner[frame]
}

// Owners iterates over all frames and their owners.
func (mm *Manager) Owners() iter.Seq2[int, int] {
	return func(yield func(frame int, owner int) bool) {
		for frame, owner := range mm.owner {
			if !yield(frame, owner) {
				return
			}
		}
	}
}

// Pages returns the number of pages needed for words cells.
func (mm *Manager) Pages(words int) int {
	return (words + mm.pageSize - 1) / mm.pageSize
}

// Allocate reserves frames for at least words cells on behalf of owner,
// and loads image into them in logical order.
func (mm *Manager) Allocate(owner int, words int, image []cpu.Cell) (pt PageTable, err error) {
	words = max(words, len(image))
	if words <= 0 {
		err = fmt.Errorf("%w: %d words", ErrAllocationSize, words)
		return
	}

	pages := mm.Pages(words)
	if free := mm.FreeFrames(); free < pages {
		err = fmt.Errorf("%w: %d pages requested, %d free", ErrAllocation, pages, free)
		return
	}

	pt = make(PageTable, 0, pages)
	for frame, frameOwner := range mm.owner {
		if len(pt) == pages {
			break
		}
		if frameOwner != FRAME_FREE {
			continue
		}
		mm.owner[frame] = owner
		pt = append(pt, frame)
	}

	for addr, cell := range image {
		// Always valid, the frames were just reserved.
		phys, _ := mm.Translate(addr, pt)
		mm.cell[phys] = cell
	}

	mm.Allocations++

	if mm.Verbose {
		log.Printf("memory: pid %d: %d words in frames %v", owner, words, pt)
	}

	return
}

// Deallocate releases every frame of the page table still held by owner,
// zeroing it. Frames now held by another owner are left alone, so releasing
// a stale page table is harmless.
func (mm *Manager) Deallocate(owner int, pt PageTable) {
	released := 0
	for _, frame := range pt {
		if frame < 0 || frame >= len(mm.owner) || mm.owner[frame] != owner {
			continue
		}

		base := frame * mm.pageSize
		for n := range mm.pageSize {
			mm.cell[base+n] = cpu.MakeData(0)
		}
		mm.owner[frame] = FRAME_FREE
		released++
	}

	if released == 0 {
		return
	}

	mm.Deallocations++

	if mm.Verbose {
		log.Printf("memory: pid %d: released frames %v", owner, pt)
	}
}

// Translate maps a logical address through a page table to a physical address.
func (mm *Manager) Translate(addr int, pt PageTable) (phys int, err error) {
	if addr < 0 {
		err = &ErrAddress{Addr: addr, Why: f("negative")}
		return
	}

	page := addr / mm.pageSize
	offset := addr % mm.pageSize

	if page >= len(pt) {
		err = &ErrAddress{Addr: addr, Why: f("page %d out of range", page)}
		return
	}

	frame := pt[page]
	if frame < 0 {
		err = &ErrAddress{Addr: addr, Why: f("page %d unmapped", page)}
		return
	}

	phys = frame*mm.pageSize + offset
	if phys >= len(mm.cell) {
		err = &ErrAddress{Addr: addr, Why: f("physical address %d out of range", phys)}
		return
	}

	return
}

// Read returns the cell at a logical address.
func (mm *Manager) Read(addr int, pt PageTable) (cell cpu.Cell, err error) {
	phys, err := mm.Translate(addr, pt)
	if err != nil {
		return
	}

	cell = mm.cell[phys]

	return
}

// Write stores a copy of cell at a logical address.
func (mm *Manager) Write(addr int, cell cpu.Cell, pt PageTable) (err error) {
	phys, err := mm.Translate(addr, pt)
	if err != nil {
		return
	}

	mm.cell[phys] = cell

	return
}

// Physical returns the cell at a physical address.
func (mm *Manager) Physical(phys int) (cell cpu.Cell, err error) {
	if phys < 0 || phys >= len(mm.cell) {
		err = &ErrAddress{Addr: phys, Why: f("physical address %d out of range", phys)}
		return
	}

	cell = mm.cell[phys]

	return
}

// Map returns the view of memory through a page table.
func (mm *Manager) Map(pt PageTable) *Mapping {
	return &Mapping{Manager: mm, PageTable: pt}
}

// Mapping is the memory of a single process, as seen by the cpu.
type Mapping struct {
	*Manager
	PageTable PageTable
}

var _ cpu.Mmu = (*Mapping)(nil)

// Read returns the cell at a logical address of the mapping.
func (mp *Mapping) Read(addr int) (cell cpu.Cell, err error) {
	return mp.Manager.Read(addr, mp.PageTable)
}

// Write stores a cell at a logical address of the mapping.
func (mp *Mapping) Write(addr int, cell cpu.Cell) (err error) {
	return mp.Manager.Write(addr, cell, mp.PageTable)
}
