package cpu

import (
	"fmt"
	"strings"
)

// Opcode is an instruction operation code.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_DATA    = Opcode(0)  // DATA
	OP_EMPTY   = Opcode(1)  // ___
	OP_JMP     = Opcode(2)  // JMP
	OP_JMPI    = Opcode(3)  // JMPI
	OP_JMPIG   = Opcode(4)  // JMPIG
	OP_JMPIL   = Opcode(5)  // JMPIL
	OP_JMPIE   = Opcode(6)  // JMPIE
	OP_JMPIM   = Opcode(7)  // JMPIM
	OP_JMPIGM  = Opcode(8)  // JMPIGM
	OP_JMPILM  = Opcode(9)  // JMPILM
	OP_JMPIEM  = Opcode(10) // JMPIEM
	OP_JMPIGK  = Opcode(11) // JMPIGK
	OP_JMPILK  = Opcode(12) // JMPILK
	OP_JMPIEK  = Opcode(13) // JMPIEK
	OP_JMPIGT  = Opcode(14) // JMPIGT
	OP_ADDI    = Opcode(15) // ADDI
	OP_SUBI    = Opcode(16) // SUBI
	OP_ADD     = Opcode(17) // ADD
	OP_SUB     = Opcode(18) // SUB
	OP_MULT    = Opcode(19) // MULT
	OP_LDI     = Opcode(20) // LDI
	OP_LDD     = Opcode(21) // LDD
	OP_STD     = Opcode(22) // STD
	OP_LDX     = Opcode(23) // LDX
	OP_STX     = Opcode(24) // STX
	OP_MOVE    = Opcode(25) // MOVE
	OP_SYSCALL = Opcode(26) // SYSCALL
	OP_STOP    = Opcode(27) // STOP
)

// Operand describes which fields of a Cell an opcode uses.
type Operand int

const (
	OPERAND_NONE = Operand(0)      // No operands.
	OPERAND_RA   = Operand(1 << 0) // Uses register A.
	OPERAND_RB   = Operand(1 << 1) // Uses register B.
	OPERAND_P    = Operand(1 << 2) // Uses the parameter.
	OPERAND_OPT  = Operand(1 << 3) // Trailing operands may be omitted.
	OPERAND_RARB = OPERAND_RA | OPERAND_RB
)

// operandMap is the assembly operand layout of each opcode.
var operandMap = map[Opcode]Operand{
	OP_DATA:    OPERAND_P | OPERAND_OPT,
	OP_EMPTY:   OPERAND_NONE,
	OP_JMP:     OPERAND_P,
	OP_JMPI:    OPERAND_RA,
	OP_JMPIG:   OPERAND_RARB,
	OP_JMPIL:   OPERAND_RARB,
	OP_JMPIE:   OPERAND_RARB,
	OP_JMPIM:   OPERAND_P,
	OP_JMPIGM:  OPERAND_RB | OPERAND_P,
	OP_JMPILM:  OPERAND_RB | OPERAND_P,
	OP_JMPIEM:  OPERAND_RB | OPERAND_P,
	OP_JMPIGK:  OPERAND_RB | OPERAND_P,
	OP_JMPILK:  OPERAND_RB | OPERAND_P,
	OP_JMPIEK:  OPERAND_RB | OPERAND_P,
	OP_JMPIGT:  OPERAND_RARB | OPERAND_P,
	OP_ADDI:    OPERAND_RA | OPERAND_P,
	OP_SUBI:    OPERAND_RA | OPERAND_P,
	OP_ADD:     OPERAND_RARB,
	OP_SUB:     OPERAND_RARB,
	OP_MULT:    OPERAND_RARB,
	OP_LDI:     OPERAND_RA | OPERAND_P,
	OP_LDD:     OPERAND_RA | OPERAND_P,
	OP_STD:     OPERAND_RA | OPERAND_P,
	OP_LDX:     OPERAND_RARB,
	OP_STX:     OPERAND_RARB,
	OP_MOVE:    OPERAND_RARB,
	OP_SYSCALL: OPERAND_RARB | OPERAND_OPT,
	OP_STOP:    OPERAND_NONE,
}

// Operands returns the operand layout of the opcode.
func (op Opcode) Operands() (operand Operand, ok bool) {
	operand, ok = operandMap[op]
	return
}

// Has returns true if all the operand bits of other are present.
func (operand Operand) Has(other Operand) bool {
	return operand&other == other
}

// Register indexes usable by an instruction.
const (
	REG_NONE = -1 // Unused register operand.
	REG_MIN  = 0  // Lowest addressable register.
	REG_MAX  = 7  // Highest addressable register.
)

// Cell is one memory position, holding either an instruction or a data value.
type Cell struct {
	Opcode Opcode // Operation, or OP_DATA for a data value.
	Ra     int    // Register A, or REG_NONE.
	Rb     int    // Register B, or REG_NONE.
	P      int    // Parameter (constant, address or data value).
}

func validRegister(reg int) bool {
	return reg == REG_NONE || (reg >= REG_MIN && reg <= REG_MAX)
}

// MakeCell creates an instruction cell, rejecting invalid register indexes.
func MakeCell(op Opcode, ra, rb, p int) (cell Cell, err error) {
	if !validRegister(ra) {
		err = fmt.Errorf("%w: ra=%d", ErrRegisterInvalid, ra)
		return
	}
	if !validRegister(rb) {
		err = fmt.Errorf("%w: rb=%d", ErrRegisterInvalid, rb)
		return
	}

	cell = Cell{Opcode: op, Ra: ra, Rb: rb, P: p}

	return
}

// MustCell is MakeCell for images known to be valid.
func MustCell(op Opcode, ra, rb, p int) Cell {
	cell, err := MakeCell(op, ra, rb, p)
	if err != nil {
		panic(err)
	}
	return cell
}

// MakeData creates a data cell.
func MakeData(value int) Cell {
	return Cell{Opcode: OP_DATA, Ra: REG_NONE, Rb: REG_NONE, P: value}
}

// IsData returns true for data cells.
func (cell Cell) IsData() bool {
	return cell.Opcode == OP_DATA
}

// String returns the assembly language representation of the cell.
func (cell Cell) String() string {
	operand, ok := cell.Opcode.Operands()
	if !ok {
		return fmt.Sprintf("%v %d %d %d", cell.Opcode, cell.Ra, cell.Rb, cell.P)
	}

	words := []string{cell.Opcode.String()}
	if operand.Has(OPERAND_RA) && cell.Ra != REG_NONE {
		words = append(words, fmt.Sprintf("r%d", cell.Ra))
	}
	if operand.Has(OPERAND_RB) && cell.Rb != REG_NONE {
		words = append(words, fmt.Sprintf("r%d", cell.Rb))
	}
	if operand.Has(OPERAND_P) {
		words = append(words, fmt.Sprintf("%d", cell.P))
	}

	return strings.Join(words, " ")
}

// Interrupt is the outcome condition of a single instruction step.
type Interrupt int

//go:generate go tool stringer -linecomment -type=Interrupt
const (
	INT_NONE                = Interrupt(0) // none
	INT_INVALID_ADDRESS     = Interrupt(1) // invalid-address
	INT_INVALID_INSTRUCTION = Interrupt(2) // invalid-instruction
	INT_OVERFLOW            = Interrupt(3) // overflow
	INT_END                 = Interrupt(4) // end
	INT_SYSCALL             = Interrupt(5) // syscall
)

// Fault returns true for interrupts that abort the offending process.
func (irq Interrupt) Fault() bool {
	switch irq {
	case INT_INVALID_ADDRESS, INT_INVALID_INSTRUCTION, INT_OVERFLOW:
		return true
	}
	return false
}

// Terminal returns true for interrupts that end the process.
func (irq Interrupt) Terminal() bool {
	return irq == INT_END || irq.Fault()
}
