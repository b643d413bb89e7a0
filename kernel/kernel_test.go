package kernel

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/sosim/config"
	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/io"
	"github.com/ezrec/sosim/memory"
	"github.com/ezrec/sosim/process"
	"github.com/ezrec/sosim/sched"
)

var factorial = []string{
	"        LDI r0 7",
	"        LDI r1 1",
	"        LDI r6 1",
	"        LDI r7 done",
	"loop:   JMPIE r7 r0",
	"        MULT r1 r0",
	"        SUB r0 r6",
	"        JMP loop",
	"done:   STD r1 result",
	"        LDI r6 SYSCALL_WRITE",
	"        LDI r7 result",
	"        SYSCALL r6 r7",
	"        STOP",
	"result: DATA",
}

var forever = []string{
	"loop: JMP loop",
}

func image(t *testing.T, lines ...string) []cpu.Cell {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return prog.Image()
}

func newKernel(t *testing.T, configure func(cfg *config.Config)) (k *Kernel, device *io.Queue) {
	cfg := config.Default()
	if configure != nil {
		configure(&cfg)
	}

	k, err := New(cfg)
	require.NoError(t, err)

	device = &io.Queue{}
	k.Device = device

	return
}

func pids(list []*process.Pcb) (pids []int) {
	for _, pcb := range list {
		pids = append(pids, pcb.Pid)
	}
	return
}

func TestNew(t *testing.T) {
	assert := assert.New(t)

	k, err := New(config.Default())
	assert.NoError(err)
	assert.False(k.Verbose)
	assert.Equal(sched.POLICY_RR, k.Scheduler.Policy())
	assert.Equal(config.DEFAULT_MEMORY_SIZE, k.Memory.Size())
	assert.Equal(config.DEFAULT_MAX_INT, k.Cpu.MaxInt)
	assert.False(k.HasWork())

	done, err := k.Tick()
	assert.NoError(err)
	assert.True(done)

	cfg := config.Default()
	cfg.Scheduler.Policy = "lottery"
	_, err = New(cfg)
	assert.ErrorIs(err, sched.ErrPolicyUnknown)

	cfg = config.Default()
	cfg.Memory.PageSize = 7
	_, err = New(cfg)
	assert.ErrorIs(err, config.ErrInvalid)

	cfg = config.Default()
	cfg.Scheduler.Policy = "sjf"
	cfg.Kernel.Verbose = true
	k, err = New(cfg)
	assert.NoError(err)
	assert.Equal(sched.POLICY_SJF, k.Scheduler.Policy())
	assert.True(k.Verbose)
	assert.True(k.Cpu.Verbose)
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, nil)

	defines := map[string]string{}
	for key, value := range k.Defines() {
		defines[key] = value
	}

	assert.Equal("10", defines["MAX_PROCESSES"])
	assert.Equal("1024", defines["MEMORY_SIZE"])
	assert.Equal("8", defines["PAGE_SIZE"])
	assert.Equal("-32767", defines["MIN_INT"])
	assert.Equal("0", defines["QUEUE_CAPACITY"])
}

func TestFactorial(t *testing.T) {
	assert := assert.New(t)

	k, device := newKernel(t, nil)

	pid, err := k.Spawn("factorial", image(t, factorial...))
	assert.NoError(err)
	assert.Equal(1, pid)
	assert.Equal(2, k.Memory.UsedFrames())

	cycles, err := k.Run(0)
	assert.NoError(err)
	assert.Equal([]int{5040}, device.Output)
	assert.Empty(k.Faults)
	assert.Equal(cycles, k.Cycles)
	assert.Equal(k.Memory.Frames(), k.Memory.FreeFrames())

	require.Len(t, k.Finished, 1)
	pcb := k.Finished[0]
	assert.Equal(process.STATE_TERMINATED, pcb.State)
	assert.Equal(cpu.INT_END, pcb.Context.Interrupt)
	assert.Equal(cycles, pcb.CpuCycles)
	assert.Equal(0, pcb.Response)

	m := k.Scheduler.Metrics()
	assert.Equal(1, m.Finished)
	assert.Equal(cycles, m.Cycles)
	assert.Equal(1, m.ContextSwitches)
}

func TestContextFidelity(t *testing.T) {
	programs := map[string][]string{
		"a": {
			"LDI r0 1",
			"LDI r1 2",
			"ADD r0 r1",
			"MULT r0 r1",
			"LDI r7 -5",
			"STOP",
		},
		"b": {
			"LDI r0 10",
			"LDI r2 3",
			"SUB r0 r2",
			"ADDI r2 100",
			"MOVE r5 r0",
			"STOP",
		},
	}

	alone := map[string]cpu.Context{}
	for name, lines := range programs {
		k, _ := newKernel(t, nil)
		_, err := k.Spawn(name, image(t, lines...))
		require.NoError(t, err)
		_, err = k.Run(0)
		require.NoError(t, err)
		alone[name] = k.Finished[0].Context
	}

	for _, policy := range sched.Policies {
		t.Run(policy.String(), func(t *testing.T) {
			assert := assert.New(t)

			k, _ := newKernel(t, func(cfg *config.Config) {
				cfg.Scheduler.Policy = policy.String()
				cfg.Scheduler.Quantum = 1
			})
			for _, name := range []string{"a", "b"} {
				_, err := k.Spawn(name, image(t, programs[name]...))
				require.NoError(t, err)
			}

			_, err := k.Run(0)
			assert.NoError(err)
			require.Len(t, k.Finished, 2)
			for _, pcb := range k.Finished {
				assert.Equal(alone[pcb.Name], pcb.Context, pcb.Name)
			}
		})
	}

	assert.Equal(t, 6, alone["a"].Register[0])
	assert.Equal(t, 7, alone["b"].Register[0])
}

func TestFaults(t *testing.T) {
	table := map[string]struct {
		lines []string
		pc    int
		irq   cpu.Interrupt
	}{
		"overflow":            {[]string{"LDI r0 32767", "ADDI r0 1", "STOP"}, 1, cpu.INT_OVERFLOW},
		"invalid-address":     {[]string{"LDI r0 1", "LDD r0 999", "STOP"}, 1, cpu.INT_INVALID_ADDRESS},
		"invalid-instruction": {[]string{"LDI r0 1", "DATA 5"}, 1, cpu.INT_INVALID_INSTRUCTION},
		"fetch":               {[]string{"JMP 4000"}, 4000, cpu.INT_INVALID_ADDRESS},
	}

	for name, entry := range table {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			k, _ := newKernel(t, nil)
			pid, err := k.Spawn(name, image(t, entry.lines...))
			require.NoError(t, err)

			for err == nil && k.HasWork() {
				_, err = k.Tick()
			}

			var fault *ErrFault
			require.True(t, errors.As(err, &fault))
			assert.ErrorIs(err, ErrProgramFault)
			assert.Equal(pid, fault.Pid)
			assert.Equal(name, fault.Name)
			assert.Equal(entry.pc, fault.Pc)
			assert.Equal(entry.irq, fault.Interrupt)
			assert.Contains(fault.Error(), name)

			assert.False(k.HasWork())
			assert.Empty(k.Processes())
			assert.Equal(k.Memory.Frames(), k.Memory.FreeFrames())
		})
	}
}

func TestRunFaults(t *testing.T) {
	assert := assert.New(t)

	k, device := newKernel(t, nil)

	_, err := k.Spawn("overflow", image(t, "LDI r0 32767", "ADDI r0 1", "STOP"))
	require.NoError(t, err)
	_, err = k.Spawn("factorial", image(t, factorial...))
	require.NoError(t, err)
	_, err = k.Spawn("bad", image(t, "DATA 1"))
	require.NoError(t, err)

	_, err = k.Run(0)
	assert.NoError(err)
	assert.Equal([]int{5040}, device.Output)

	require.Len(t, k.Faults, 2)
	assert.Equal("overflow", k.Faults[0].Name)
	assert.Equal("bad", k.Faults[1].Name)
	assert.Len(k.Finished, 3)
}

func TestRunCycleLimit(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, nil)
	_, err := k.Spawn("forever", image(t, forever...))
	require.NoError(t, err)

	cycles, err := k.Run(50)
	assert.ErrorIs(err, ErrCycleLimit)
	assert.Equal(50, cycles)
	assert.True(k.HasWork())
}

func TestCreate(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, func(cfg *config.Config) {
		cfg.Memory.Size = 32
		cfg.Memory.PageSize = 4
		cfg.Kernel.MaxProcesses = 3
	})

	pid, err := k.Create("big", make([]cpu.Cell, 40))
	assert.ErrorIs(err, memory.ErrAllocation)
	assert.Equal(0, pid)
	assert.Empty(k.Processes())

	for n := range 3 {
		pid, err = k.Create("loop", image(t, forever...))
		assert.NoError(err)
		assert.Equal(n+1, pid)
	}

	_, err = k.Create("loop", image(t, forever...))
	assert.ErrorIs(err, ErrProcessLimit)

	pcb, err := k.Process(2)
	assert.NoError(err)
	assert.Equal(process.STATE_NEW, pcb.State)
	assert.False(k.HasWork())

	assert.NoError(k.Admit(2))
	assert.Equal(process.STATE_READY, pcb.State)
	assert.ErrorIs(k.Admit(2), process.ErrTransition)
	assert.ErrorIs(k.Admit(9), ErrProcessUnknown)
	assert.True(k.HasWork())

	assert.Equal([]int{1, 2, 3}, pids(k.Processes()))
}

func TestKill(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, nil)

	for range 3 {
		_, err := k.Spawn("loop", image(t, forever...))
		require.NoError(t, err)
	}
	pid, err := k.Create("new", image(t, forever...))
	require.NoError(t, err)

	_, err = k.Tick()
	assert.NoError(err)
	assert.Equal(1, k.Scheduler.Current().Pid)

	// Running, ready and new.
	assert.NoError(k.Kill(1))
	assert.NoError(k.Kill(3))
	assert.NoError(k.Kill(pid))
	assert.ErrorIs(k.Kill(1), ErrProcessUnknown)

	assert.Equal([]int{2}, pids(k.Processes()))
	assert.Equal(1, k.Memory.UsedFrames())

	_, err = k.Tick()
	assert.NoError(err)
	assert.Equal(2, k.Scheduler.Current().Pid)

	assert.NoError(k.Kill(2))
	assert.False(k.HasWork())
	assert.Equal(0, k.Memory.UsedFrames())

	done, err := k.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestKillWaiting(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, func(cfg *config.Config) {
		cfg.Kernel.BlockOnSyscall = true
	})

	pid, err := k.Spawn("waiter", image(t, "SYSCALL", "JMP 0"))
	require.NoError(t, err)

	_, err = k.Tick()
	assert.NoError(err)

	pcb, err := k.Process(pid)
	require.NoError(t, err)
	assert.Equal(process.STATE_WAITING, pcb.State)
	assert.True(k.HasWork())

	assert.NoError(k.Kill(pid))
	assert.Equal(process.STATE_TERMINATED, pcb.State)
	assert.False(k.HasWork())
}

func TestSetScheduler(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, func(cfg *config.Config) {
		cfg.Scheduler.Quantum = 2
	})

	for range 3 {
		_, err := k.Spawn("loop", image(t, forever...))
		require.NoError(t, err)
	}

	for range 3 {
		_, err := k.Tick()
		require.NoError(t, err)
	}
	assert.Equal(2, k.Scheduler.Current().Pid)
	assert.Equal([]int{3, 1}, pids(k.Scheduler.Ready()))

	assert.NoError(k.SetScheduler(sched.POLICY_FCFS))
	assert.Equal(sched.POLICY_FCFS, k.Scheduler.Policy())
	assert.Nil(k.Scheduler.Current())
	assert.Equal([]int{2, 3, 1}, pids(k.Scheduler.Ready()))
	for _, pcb := range k.Processes() {
		assert.Equal(process.STATE_READY, pcb.State)
	}

	require.Len(t, k.History, 1)
	assert.Equal(sched.POLICY_RR, k.History[0].Policy)
	assert.Equal(3, k.History[0].Cycles)

	for range 20 {
		_, err := k.Tick()
		require.NoError(t, err)
		assert.Equal(2, k.Scheduler.Current().Pid)
	}
	assert.Equal(1, k.Scheduler.Metrics().Started)
	assert.Equal(1, k.Scheduler.Metrics().ContextSwitches)

	assert.NoError(k.SetScheduler(sched.POLICY_SJF))
	assert.Equal(3, len(k.Scheduler.Ready()))
	assert.ErrorIs(k.SetScheduler(sched.Policy(9)), sched.ErrPolicyUnknown)
	assert.Equal(sched.POLICY_SJF, k.Scheduler.Policy())

	assert.NoError(k.Configure("estimate", 3))
	assert.ErrorIs(k.Configure("quantum", 3), sched.ErrParameterUnknown)
}

func TestSyscall(t *testing.T) {
	assert := assert.New(t)

	k, device := newKernel(t, nil)
	device.Input = []int{77}

	_, err := k.Spawn("echo", image(t,
		"   LDI r6 SYSCALL_READ",
		"   LDI r7 v",
		"   SYSCALL r6 r7",
		"   LDI r6 SYSCALL_WRITE",
		"   SYSCALL r6 r7",
		"   LDI r6 99",
		"   SYSCALL r6 r7    ; ignored",
		"   STOP",
		"v: DATA",
	))
	require.NoError(t, err)

	_, err = k.Run(0)
	assert.NoError(err)
	assert.Empty(k.Faults)
	assert.Equal([]int{77}, device.Output)
	assert.Equal(cpu.INT_END, k.Finished[0].Context.Interrupt)
	assert.Equal(7, k.Finished[0].Context.Pc)
}

func TestSyscallFaults(t *testing.T) {
	table := map[string]struct {
		lines []string
		irq   cpu.Interrupt
		err   error
	}{
		"no-input": {
			[]string{"LDI r6 SYSCALL_READ", "LDI r7 v", "SYSCALL r6 r7", "STOP", "v: DATA"},
			cpu.INT_SYSCALL, io.ErrInputEnd,
		},
		"read-address": {
			[]string{"LDI r6 SYSCALL_READ", "LDI r7 500", "SYSCALL r6 r7", "STOP"},
			cpu.INT_INVALID_ADDRESS, memory.ErrInvalidAddress,
		},
		"write-address": {
			[]string{"LDI r6 SYSCALL_WRITE", "LDI r7 -1", "SYSCALL r6 r7", "STOP"},
			cpu.INT_INVALID_ADDRESS, memory.ErrInvalidAddress,
		},
	}

	for name, entry := range table {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			k, device := newKernel(t, nil)
			if name == "read-address" {
				device.Input = []int{1}
			}

			_, err := k.Spawn(name, image(t, entry.lines...))
			require.NoError(t, err)

			for err == nil && k.HasWork() {
				_, err = k.Tick()
			}

			var fault *ErrFault
			require.True(t, errors.As(err, &fault))
			assert.Equal(2, fault.Pc)
			assert.Equal(entry.irq, fault.Interrupt)
			assert.ErrorIs(err, entry.err)
			assert.ErrorIs(err, ErrProgramFault)
		})
	}
}

func TestBlockOnSyscall(t *testing.T) {
	assert := assert.New(t)

	k, device := newKernel(t, func(cfg *config.Config) {
		cfg.Kernel.BlockOnSyscall = true
	})

	a, err := k.Spawn("writer", image(t,
		"   LDI r6 SYSCALL_WRITE",
		"   LDI r7 v",
		"   SYSCALL r6 r7",
		"   STOP",
		"v: DATA 42",
	))
	require.NoError(t, err)
	b, err := k.Spawn("counter", image(t, "LDI r0 1", "LDI r0 2", "LDI r0 3", "STOP"))
	require.NoError(t, err)

	for range 3 {
		_, err = k.Tick()
		require.NoError(t, err)
	}

	pa, _ := k.Process(a)
	pb, _ := k.Process(b)
	assert.Equal(process.STATE_WAITING, pa.State)
	assert.Equal(3, pa.Context.Pc)
	assert.Equal(cpu.INT_NONE, pa.Context.Interrupt)
	assert.Equal([]int{42}, device.Output)

	_, err = k.Tick()
	require.NoError(t, err)
	assert.Equal(process.STATE_READY, pa.State)
	assert.Equal(process.STATE_RUNNING, pb.State)

	_, err = k.Run(0)
	assert.NoError(err)
	assert.Len(k.Finished, 2)
	assert.Equal(1, k.Scheduler.Metrics().Blocked)
	assert.Equal(2, k.Scheduler.Metrics().Finished)
}

func TestDump(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, nil)
	pid, err := k.Spawn("factorial", image(t, factorial...))
	require.NoError(t, err)
	_, err = k.Tick()
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	assert.NoError(k.Ps(buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal([]string{"PID", "NAME", "STATE", "PC", "CPU", "WAIT", "FRAMES"}, strings.Fields(lines[0]))
	assert.Equal([]string{"1", "factorial", "RUNNING", "1", "1", "0", "[0", "1]"}, strings.Fields(lines[1]))

	buf.Reset()
	assert.NoError(k.Dump(buf, pid))
	assert.Contains(buf.String(), `pid 1 "factorial" RUNNING`)
	assert.Contains(buf.String(), "page table: [0 1]")
	assert.Contains(buf.String(), "LDI r0 7")
	assert.ErrorIs(k.Dump(buf, 9), ErrProcessUnknown)

	buf.Reset()
	assert.NoError(k.DumpMemory(buf, 0, 2))
	assert.Len(strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)

	_, err = k.Run(0)
	require.NoError(t, err)
	assert.NoError(k.SetScheduler(sched.POLICY_FCFS))

	buf.Reset()
	assert.NoError(k.Report(buf))
	report := buf.String()
	assert.Contains(report, "RR")
	assert.Contains(report, "FCFS")
	assert.Contains(report, "faults:")
	assert.Contains(report, "TURNAROUND")
}

func TestSetTrace(t *testing.T) {
	assert := assert.New(t)

	k, _ := newKernel(t, nil)
	k.SetTrace(true)
	assert.True(k.Verbose)
	assert.True(k.Cpu.Verbose)
	assert.True(k.Memory.Verbose)

	k.SetTrace(false)
	assert.False(k.Verbose)
	assert.False(k.Cpu.Verbose)
	assert.False(k.Memory.Verbose)
}
