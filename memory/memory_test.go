package memory

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/sosim/cpu"
)

func dataImage(values ...int) (image []cpu.Cell) {
	image = make([]cpu.Cell, len(values))
	for n, v := range values {
		image[n] = cpu.MakeData(v)
	}
	return
}

func TestNewManager(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(DEFAULT_SIZE, DEFAULT_PAGE_SIZE)
	assert.NoError(err)
	assert.Equal(DEFAULT_SIZE, mm.Size())
	assert.Equal(DEFAULT_PAGE_SIZE, mm.PageSize())
	assert.Equal(DEFAULT_SIZE/DEFAULT_PAGE_SIZE, mm.Frames())
	assert.Equal(mm.Frames(), mm.FreeFrames())
	assert.Equal(0, mm.UsedFrames())

	cell, err := mm.Physical(0)
	assert.NoError(err)
	assert.Equal(cpu.MakeData(0), cell)

	table := map[string]struct {
		size     int
		pageSize int
		err      error
	}{
		"zero-size":      {0, 8, ErrConfigSize},
		"negative-size":  {-8, 8, ErrConfigSize},
		"zero-page":      {64, 0, ErrConfigSize},
		"not-a-multiple": {100, 8, ErrConfigPageSize},
	}

	for name, entry := range table {
		t.Run(name, func(t *testing.T) {
			_, err := NewManager(entry.size, entry.pageSize)
			require.ErrorIs(t, err, entry.err)
		})
	}
}

func TestManagerDefines(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(64, 4)
	require.NoError(t, err)

	defines := map[string]string{}
	for k, v := range mm.Defines() {
		defines[k] = v
	}

	assert.Equal(map[string]string{"MEMORY_SIZE": "64", "PAGE_SIZE": "4"}, defines)
}

func TestManagerTranslate(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(64, 4)
	require.NoError(t, err)

	pt := PageTable{3, PAGE_UNMAPPED, 7}

	table := []struct {
		addr int
		phys int
		ok   bool
	}{
		{0, 12, true},
		{3, 15, true},
		{4, 0, false},
		{7, 0, false},
		{8, 28, true},
		{11, 31, true},
		{12, 0, false},
		{-1, 0, false},
	}

	for _, entry := range table {
		phys, err := mm.Translate(entry.addr, pt)
		if entry.ok {
			assert.NoError(err, entry.addr)
			assert.Equal(entry.phys, phys, entry.addr)
		} else {
			assert.ErrorIs(err, ErrInvalidAddress, entry.addr)
			var addr *ErrAddress
			assert.True(errors.As(err, &addr))
			assert.Equal(entry.addr, addr.Addr)
		}
	}

	_, err = mm.Translate(0, PageTable{16})
	assert.ErrorIs(err, ErrInvalidAddress)
}

func TestManagerAllocate(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(32, 4)
	require.NoError(t, err)

	pt, err := mm.Allocate(1, 0, dataImage(1, 2, 3, 4, 5))
	assert.NoError(err)
	assert.Equal(PageTable{0, 1}, pt)
	assert.Equal(1, mm.Owner(0))
	assert.Equal(1, mm.Owner(1))
	assert.Equal(FRAME_FREE, mm.Owner(2))
	assert.Equal(1, mm.Allocations)

	for addr, value := range []int{1, 2, 3, 4, 5, 0, 0, 0} {
		cell, err := mm.Read(addr, pt)
		assert.NoError(err)
		assert.Equal(cpu.MakeData(value), cell)
	}

	pt2, err := mm.Allocate(2, 12, nil)
	assert.NoError(err)
	assert.Equal(PageTable{2, 3, 4}, pt2)
	assert.Equal(5, mm.UsedFrames())

	_, err = mm.Allocate(3, 16, nil)
	assert.ErrorIs(err, ErrAllocation)
	assert.Equal(5, mm.UsedFrames())

	_, err = mm.Allocate(3, 0, nil)
	assert.ErrorIs(err, ErrAllocationSize)
}

func TestManagerReadWrite(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(32, 4)
	require.NoError(t, err)

	pt, err := mm.Allocate(1, 6, nil)
	require.NoError(t, err)

	cell := cpu.MustCell(cpu.OP_LDI, 1, cpu.REG_NONE, 42)
	assert.NoError(mm.Write(5, cell, pt))

	got, err := mm.Read(5, pt)
	assert.NoError(err)
	assert.Equal(cell, got)

	phys, err := mm.Translate(5, pt)
	assert.NoError(err)
	got, err = mm.Physical(phys)
	assert.NoError(err)
	assert.Equal(cell, got)

	assert.ErrorIs(mm.Write(8, cell, pt), ErrInvalidAddress)
	_, err = mm.Read(-2, pt)
	assert.ErrorIs(err, ErrInvalidAddress)
	_, err = mm.Physical(32)
	assert.ErrorIs(err, ErrInvalidAddress)
}

func TestManagerReuse(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(16, 4)
	require.NoError(t, err)

	pt, err := mm.Allocate(1, 8, dataImage(9, 9, 9, 9, 9, 9, 9, 9))
	require.NoError(t, err)

	mm.Deallocate(1, pt)
	assert.Equal(mm.Frames(), mm.FreeFrames())
	assert.Equal(1, mm.Deallocations)

	// Releasing twice is harmless.
	mm.Deallocate(1, pt)
	mm.Deallocate(1, PageTable{PAGE_UNMAPPED, 99})
	assert.Equal(mm.Frames(), mm.FreeFrames())
	assert.Equal(1, mm.Deallocations)

	pt2, err := mm.Allocate(2, 8, nil)
	require.NoError(t, err)
	assert.Equal(pt, pt2)

	for addr := range 8 {
		cell, err := mm.Read(addr, pt2)
		assert.NoError(err)
		assert.Equal(cpu.MakeData(0), cell)
	}
}

func TestManagerStaleRelease(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(16, 4)
	require.NoError(t, err)

	pt1, err := mm.Allocate(1, 4, nil)
	require.NoError(t, err)
	mm.Deallocate(1, pt1)

	pt2, err := mm.Allocate(2, 4, dataImage(7))
	require.NoError(t, err)
	assert.Equal(pt1, pt2)

	// The frames of pid 1 now belong to pid 2.
	mm.Deallocate(1, pt1)
	assert.Equal(2, mm.Owner(pt2[0]))
	assert.Equal(1, mm.UsedFrames())

	cell, err := mm.Read(0, pt2)
	assert.NoError(err)
	assert.Equal(cpu.MakeData(7), cell)

	// Releasing with the wrong owner keeps the frames too.
	mm.Deallocate(3, pt2)
	assert.Equal(2, mm.Owner(pt2[0]))

	mm.Deallocate(2, pt2)
	assert.Equal(FRAME_FREE, mm.Owner(pt2[0]))
}

func TestManagerFragmentation(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(48, 4)
	require.NoError(t, err)
	assert.Equal(12, mm.Frames())

	tables := make([]PageTable, 5)
	for n := range tables {
		tables[n], err = mm.Allocate(n+1, 6, nil)
		require.NoError(t, err)
		assert.Len(tables[n], 2)
	}
	assert.Equal(2, mm.FreeFrames())

	mm.Deallocate(2, tables[1])
	mm.Deallocate(4, tables[3])
	assert.Equal(6, mm.FreeFrames())

	pt, err := mm.Allocate(6, 12, dataImage(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12))
	assert.NoError(err)
	assert.Equal(PageTable{2, 3, 6}, pt)

	for addr := range 12 {
		cell, err := mm.Read(addr, pt)
		assert.NoError(err)
		assert.Equal(addr+1, cell.P)
	}

	owners := map[int]int{}
	for _, owner := range mm.Owners() {
		owners[owner]++
	}
	assert.Equal(map[int]int{1: 2, 3: 2, 5: 2, 6: 3, FRAME_FREE: 3}, owners)
}

func TestMapping(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(16, 4)
	require.NoError(t, err)

	pt, err := mm.Allocate(1, 4, nil)
	require.NoError(t, err)

	var mmu cpu.Mmu = mm.Map(pt)

	assert.NoError(mmu.Write(2, cpu.MakeData(7)))
	cell, err := mmu.Read(2)
	assert.NoError(err)
	assert.Equal(7, cell.P)

	_, err = mmu.Read(4)
	assert.ErrorIs(err, ErrInvalidAddress)
}

func TestManagerDump(t *testing.T) {
	assert := assert.New(t)

	mm, err := NewManager(16, 4)
	require.NoError(t, err)

	pt, err := mm.Allocate(3, 2, dataImage(5, 6))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	assert.NoError(mm.Dump(buf, -4, 6))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 6)
	assert.Contains(lines[0], "DATA 5")
	assert.Contains(lines[0], "3]")
	assert.Contains(lines[5], "-]")

	buf.Reset()
	assert.NoError(mm.DumpPageTable(buf, pt))
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(lines, 5)
	assert.Equal("page table: [0]", lines[0])
	assert.Contains(lines[2], "DATA 6")
}
