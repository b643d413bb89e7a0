package memory

import (
	"fmt"
	"io"
)

// Dump writes the physical cells in [start, end), with their frame owners.
func (mm *Manager) Dump(w io.Writer, start, end int) (err error) {
	start = max(start, 0)
	end = min(end, len(mm.cell))

	for phys := start; phys < end; phys++ {
		frame := phys / mm.pageSize
		owner := "-"
		if pid := mm.owner[frame]; pid != FRAME_FREE {
			owner = fmt.Sprintf("%d", pid)
		}
		_, err = fmt.Fprintf(w, "%04d [%3d:%3s] %v\n", phys, frame, owner, mm.cell[phys])
		if err != nil {
			return
		}
	}

	return
}

// DumpPageTable writes the page table, and every logical cell it maps.
func (mm *Manager) DumpPageTable(w io.Writer, pt PageTable) (err error) {
	_, err = fmt.Fprintf(w, "page table: %v\n", []int(pt))
	if err != nil {
		return
	}

	for addr := range len(pt) * mm.pageSize {
		phys, terr := mm.Translate(addr, pt)
		if terr != nil {
			_, err = fmt.Fprintf(w, "%04d -> ----: unmapped\n", addr)
		} else {
			_, err = fmt.Fprintf(w, "%04d -> %04d: %v\n", addr, phys, mm.cell[phys])
		}
		if err != nil {
			return
		}
	}

	return
}
