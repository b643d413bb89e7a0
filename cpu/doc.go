// Package cpu implements the interpreter and assembler of the simulated computer.
//
// The CPU consists of a program counter, ten signed integer registers (r0-r9)
// and a pending interrupt, together forming a Context. The interpreter is
// stateless across processes: the kernel loads a Context before each Step and
// saves it afterwards. Every memory reference goes through the Mmu of the
// bound process, and every illegal condition is reported as an Interrupt.
//
// Registers r8 and r9 carry the syscall operation and operand address.
// Instructions may only name r0-r7; SYSCALL copies its optional register
// operands into r8 and r9.
//
// The assembler provides a textual language for the instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
