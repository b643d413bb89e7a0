package kernel

import (
	"log"

	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/process"
)

// syscall services the SYSCALL raised by the running process.
// The operation is in REGISTER_SYSCALL_OP, the operand address in
// REGISTER_SYSCALL_ARG.
func (k *Kernel) syscall(pcb *process.Pcb, pc int) (err error) {
	ctx := &pcb.Context
	op := ctx.Register[cpu.REGISTER_SYSCALL_OP]
	addr := ctx.Register[cpu.REGISTER_SYSCALL_ARG]
	mmu := k.Memory.Map(pcb.PageTable)

	switch op {
	case cpu.SYSCALL_READ:
		var value int
		value, err = k.Device.ReadInt()
		if err != nil {
			return k.fault(pcb, pc, cpu.INT_SYSCALL, err)
		}
		err = mmu.Write(addr, cpu.MakeData(value))
		if err != nil {
			return k.fault(pcb, pc, cpu.INT_INVALID_ADDRESS, err)
		}
		if k.Verbose {
			log.Printf("kernel: pid %d: read %d into %d", pcb.Pid, value, addr)
		}
	case cpu.SYSCALL_WRITE:
		var cell cpu.Cell
		cell, err = mmu.Read(addr)
		if err != nil {
			return k.fault(pcb, pc, cpu.INT_INVALID_ADDRESS, err)
		}
		err = k.Device.WriteInt(cell.P)
		if err != nil {
			return k.fault(pcb, pc, cpu.INT_SYSCALL, err)
		}
		if k.Verbose {
			log.Printf("kernel: pid %d: wrote %d from %d", pcb.Pid, cell.P, addr)
		}
	default:
		log.Printf("kernel: pid %d: pc %d: invalid syscall %d", pcb.Pid, pc, op)
	}

	// Resume after the SYSCALL.
	ctx.Pc++
	ctx.Interrupt = cpu.INT_NONE
	k.Cpu.Load(*ctx)

	if k.Config.Kernel.BlockOnSyscall {
		k.Scheduler.BlockCurrent()
		k.waiting = append(k.waiting, pcb)
		if k.Verbose {
			log.Printf("kernel: pid %d: waiting", pcb.Pid)
		}
	}

	return
}
