package cpu

import (
	"iter"
)

// Statement is a line of assembled code with its source location and generated cells.
type Statement struct {
	LineNo    int
	Addr      int
	Words     []string
	Cells     []Cell
	LinkLabel string
}

// Program is an assembled, named memory image.
type Program struct {
	Name       string
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug returns the statement that generated the cell at a logical address.
func (prog *Program) Debug(addr int) (dbg Debug) {
	for n, st := range prog.Statements {
		if addr >= st.Addr && addr < st.Addr+len(st.Cells) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     addr - st.Addr,
			}
			break
		}
	}

	return
}

// Cells iterates over the image, by logical address.
func (prog *Program) Cells() iter.Seq2[int, Cell] {
	return func(yield func(addr int, cell Cell) bool) {
		for _, st := range prog.Statements {
			for n, cell := range st.Cells {
				if !yield(st.Addr+n, cell) {
					return
				}
			}
		}
	}
}

// Image returns a copy of the memory image of the program.
func (prog *Program) Image() (image []Cell) {
	for _, cell := range prog.Cells() {
		image = append(image, cell)
	}

	return
}

// Len returns the number of cells in the image.
func (prog *Program) Len() (count int) {
	for _, st := range prog.Statements {
		count += len(st.Cells)
	}

	return
}
