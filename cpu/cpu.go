package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"math"
	"strings"
)

const (
	REGISTER_COUNT       = 10     // Registers per process context.
	REGISTER_SYSCALL_OP  = 8      // Syscall operation code register.
	REGISTER_SYSCALL_ARG = 9      // Syscall operand address register.
	DEFAULT_MIN_INT      = -32767 // Default lowest representable value.
	DEFAULT_MAX_INT      = 32767  // Default highest representable value.
)

// Syscall operation codes, passed in REGISTER_SYSCALL_OP.
const (
	SYSCALL_READ  = 1 // Read an integer into m[r9].
	SYSCALL_WRITE = 2 // Write m[r9].
)

// Mmu is the memory of the bound process, addressed logically.
type Mmu interface {
	Read(addr int) (cell Cell, err error)
	Write(addr int, cell Cell) (err error)
}

// Context is the execution state of one process.
type Context struct {
	Pc        int                 // Program counter.
	Register  [REGISTER_COUNT]int // Register bank.
	Interrupt Interrupt           // Pending interrupt.
}

// String returns the context as a single line.
func (ctx Context) String() string {
	regs := make([]string, len(ctx.Register))
	for n, reg := range ctx.Register {
		regs[n] = fmt.Sprintf("r%d=%d", n, reg)
	}
	return fmt.Sprintf("pc=%d irq=%v %v", ctx.Pc, ctx.Interrupt, strings.Join(regs, " "))
}

// Cpu is the interpreter. It executes on whichever Context was last loaded.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	MinInt int // Lowest representable value.
	MaxInt int // Highest representable value.

	Ticks int // Instructions executed.

	ctx Context
}

// NewCpu creates a new CPU with the default integer bounds.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		MinInt: DEFAULT_MIN_INT,
		MaxInt: DEFAULT_MAX_INT,
	}

	return
}

// SetBounds sets the representable integer range.
func (cpu *Cpu) SetBounds(min, max int) (err error) {
	if min >= max || min > 0 || max < 0 {
		err = fmt.Errorf("%w: [%d,%d]", ErrBoundsInvalid, min, max)
		return
	}

	cpu.MinInt = min
	cpu.MaxInt = max

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MIN_INT":        fmt.Sprintf("%d", cpu.MinInt),
		"MAX_INT":        fmt.Sprintf("%d", cpu.MaxInt),
		"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	})
}

// Load binds a context to the cpu.
func (cpu *Cpu) Load(ctx Context) {
	cpu.ctx = ctx
}

// Save returns a copy of the bound context.
func (cpu *Cpu) Save() Context {
	return cpu.ctx
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("%5s: %d\n", "pc", cpu.ctx.Pc)
	text += fmt.Sprintf("%5s: %v\n", "irq", cpu.ctx.Interrupt)
	for n, reg := range cpu.ctx.Register {
		text += fmt.Sprintf("%5s: %d\n", fmt.Sprintf("r%d", n), reg)
	}

	return
}

// Step executes a single instruction cycle of the bound context.
func (cpu *Cpu) Step(mmu Mmu) (irq Interrupt) {
	ctx := &cpu.ctx

	ctx.Interrupt = INT_NONE
	defer func() {
		irq = ctx.Interrupt
		cpu.Ticks++
	}()

	cell, err := mmu.Read(ctx.Pc)
	if err != nil {
		if cpu.Verbose {
			log.Printf("cpu: %03d: fetch: %v", ctx.Pc, err)
		}
		ctx.Interrupt = INT_INVALID_ADDRESS
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %03d: %v", ctx.Pc, cell)
	}

	jumped := cpu.Execute(cell, mmu)

	if ctx.Interrupt == INT_NONE && !jumped {
		ctx.Pc++
	}

	if cpu.Verbose && ctx.Interrupt != INT_NONE {
		log.Printf("cpu: %03d: %v", ctx.Pc, ctx.Interrupt)
	}

	return
}

// check raises an overflow if the value is not representable, or if
// computing it wrapped the native integer.
func (cpu *Cpu) check(value int, wrapped bool) int {
	if wrapped || value < cpu.MinInt || value > cpu.MaxInt {
		cpu.ctx.Interrupt = INT_OVERFLOW
	}
	return value
}

func (cpu *Cpu) add(a, b int) int {
	sum := a + b
	return cpu.check(sum, (b > 0 && sum < a) || (b < 0 && sum > a))
}

func (cpu *Cpu) sub(a, b int) int {
	diff := a - b
	return cpu.check(diff, (b > 0 && diff > a) || (b < 0 && diff < a))
}

func (cpu *Cpu) mult(a, b int) int {
	product := a * b
	wrapped := a != 0 && (product/a != b || (a == -1 && b == math.MinInt))
	return cpu.check(product, wrapped)
}

// load reads the data value at a logical address.
func (cpu *Cpu) load(mmu Mmu, addr int) (value int, ok bool) {
	cell, err := mmu.Read(addr)
	if err != nil {
		cpu.ctx.Interrupt = INT_INVALID_ADDRESS
		return
	}
	return cell.P, true
}

// store writes a data value at a logical address.
func (cpu *Cpu) store(mmu Mmu, addr int, value int) {
	err := mmu.Write(addr, MakeData(value))
	if err != nil {
		cpu.ctx.Interrupt = INT_INVALID_ADDRESS
	}
}

// reg returns a pointer to a register, raising an invalid instruction
// for registers outside the bank.
func (cpu *Cpu) reg(index int) *int {
	if index < 0 || index >= len(cpu.ctx.Register) {
		cpu.ctx.Interrupt = INT_INVALID_INSTRUCTION
		return nil
	}
	return &cpu.ctx.Register[index]
}

// Execute executes a single decoded cell against the bound context.
// It returns true if the cell transferred control.
func (cpu *Cpu) Execute(cell Cell, mmu Mmu) (jumped bool) {
	ctx := &cpu.ctx

	operand, ok := cell.Opcode.Operands()
	if !ok {
		ctx.Interrupt = INT_INVALID_INSTRUCTION
		return
	}

	var ra, rb *int
	if operand.Has(OPERAND_RA) && !(operand.Has(OPERAND_OPT) && cell.Ra == REG_NONE) {
		ra = cpu.reg(cell.Ra)
	}
	if operand.Has(OPERAND_RB) && !(operand.Has(OPERAND_OPT) && cell.Rb == REG_NONE) {
		rb = cpu.reg(cell.Rb)
	}
	if ctx.Interrupt != INT_NONE {
		return
	}

	jump := func(target int) bool {
		ctx.Pc = target
		return true
	}

	switch cell.Opcode {
	case OP_JMP:
		jumped = jump(cell.P)
	case OP_JMPI:
		jumped = jump(*ra)
	case OP_JMPIG:
		if *rb > 0 {
			jumped = jump(*ra)
		}
	case OP_JMPIL:
		if *rb < 0 {
			jumped = jump(*ra)
		}
	case OP_JMPIE:
		if *rb == 0 {
			jumped = jump(*ra)
		}
	case OP_JMPIM:
		if target, ok := cpu.load(mmu, cell.P); ok {
			jumped = jump(target)
		}
	case OP_JMPIGM:
		if *rb > 0 {
			if target, ok := cpu.load(mmu, cell.P); ok {
				jumped = jump(target)
			}
		}
	case OP_JMPILM:
		if *rb < 0 {
			if target, ok := cpu.load(mmu, cell.P); ok {
				jumped = jump(target)
			}
		}
	case OP_JMPIEM:
		if *rb == 0 {
			if target, ok := cpu.load(mmu, cell.P); ok {
				jumped = jump(target)
			}
		}
	case OP_JMPIGK:
		if *rb > 0 {
			jumped = jump(cell.P)
		}
	case OP_JMPILK:
		if *rb < 0 {
			jumped = jump(cell.P)
		}
	case OP_JMPIEK:
		if *rb == 0 {
			jumped = jump(cell.P)
		}
	case OP_JMPIGT:
		if *ra > *rb {
			jumped = jump(cell.P)
		}
	case OP_ADDI:
		*ra = cpu.add(*ra, cell.P)
	case OP_SUBI:
		*ra = cpu.sub(*ra, cell.P)
	case OP_ADD:
		*ra = cpu.add(*ra, *rb)
	case OP_SUB:
		*ra = cpu.sub(*ra, *rb)
	case OP_MULT:
		*ra = cpu.mult(*ra, *rb)
	case OP_LDI:
		*ra = cell.P
	case OP_LDD:
		if value, ok := cpu.load(mmu, cell.P); ok {
			*ra = value
		}
	case OP_STD:
		cpu.store(mmu, cell.P, *ra)
	case OP_LDX:
		if value, ok := cpu.load(mmu, *rb); ok {
			*ra = value
		}
	case OP_STX:
		cpu.store(mmu, *ra, *rb)
	case OP_MOVE:
		*ra = *rb
	case OP_SYSCALL:
		if ra != nil {
			ctx.Register[REGISTER_SYSCALL_OP] = *ra
		}
		if rb != nil {
			ctx.Register[REGISTER_SYSCALL_ARG] = *rb
		}
		ctx.Interrupt = INT_SYSCALL
	case OP_STOP:
		ctx.Interrupt = INT_END
	default:
		// OP_DATA, OP_EMPTY
		ctx.Interrupt = INT_INVALID_INSTRUCTION
	}

	return
}
