// Package shell is the interactive command interpreter of the simulated
// computer.
package shell

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/kernel"
	"github.com/ezrec/sosim/programs"
	"github.com/ezrec/sosim/sched"
)

// LineReader reads one line of input at a time.
type LineReader interface {
	ReadLine() (line string, err error)
}

// command is a shell command.
type command struct {
	Usage string
	Help  string
	Args  [2]int // Minimum and maximum argument count.
	Run   func(sh *Shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":         {"help", "list the commands", [2]int{0, 0}, (*Shell).help},
		"programs":     {"programs", "list the program library", [2]int{0, 0}, (*Shell).programs},
		"new":          {"new <program|file.s>", "create and admit a process", [2]int{1, 1}, (*Shell).create},
		"rm":           {"rm <pid>", "kill a process", [2]int{1, 1}, (*Shell).remove},
		"ps":           {"ps", "list the processes", [2]int{0, 0}, (*Shell).ps},
		"dump":         {"dump <pid>", "dump a process", [2]int{1, 1}, (*Shell).dump},
		"dumpm":        {"dumpm <start> <end>", "dump physical memory", [2]int{2, 2}, (*Shell).dumpm},
		"step":         {"step [count]", "run count cycles", [2]int{0, 1}, (*Shell).step},
		"run":          {"run [max]", "run until no process is left", [2]int{0, 1}, (*Shell).run},
		"setscheduler": {"setscheduler <RR|FCFS|SJF>", "change the scheduling policy", [2]int{1, 1}, (*Shell).setScheduler},
		"configure":    {"configure <name> <value>", "set a scheduler parameter", [2]int{2, 2}, (*Shell).configure},
		"metrics":      {"metrics", "report the scheduler metrics", [2]int{0, 0}, (*Shell).metrics},
		"traceon":      {"traceon", "enable tracing", [2]int{0, 0}, (*Shell).traceOn},
		"traceoff":     {"traceoff", "disable tracing", [2]int{0, 0}, (*Shell).traceOff},
		"exit":         {"exit", "leave the shell", [2]int{0, 0}, nil},
	}
}

// Shell drives a kernel from text commands.
type Shell struct {
	Kernel *kernel.Kernel
	Output io.Writer
}

// New creates a shell for a kernel.
func New(k *kernel.Kernel, output io.Writer) *Shell {
	return &Shell{
		Kernel: k,
		Output: output,
	}
}

// Execute runs a single command line. Blank lines and ';' comments are
// ignored.
func (sh *Shell) Execute(line string) (quit bool, err error) {
	line, _, _ = strings.Cut(line, ";")
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	name := strings.ToLower(words[0])
	args := words[1:]

	cmd, ok := commands[name]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrCommandUnknown, words[0])
		return
	}

	if len(args) < cmd.Args[0] || len(args) > cmd.Args[1] {
		err = fmt.Errorf("%w: %v", ErrUsage, cmd.Usage)
		return
	}

	if cmd.Run == nil {
		quit = true
		return
	}

	err = cmd.Run(sh, args)

	return
}

// Run executes commands until the input ends, or an exit command.
// Command errors are reported, and do not stop the shell.
func (sh *Shell) Run(input LineReader) (err error) {
	for {
		var line string
		line, err = input.ReadLine()
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		quit, cerr := sh.Execute(line)
		if cerr != nil {
			fmt.Fprintf(sh.Output, "error: %v\n", cerr)
		}
		if quit {
			return
		}
	}
}

func (sh *Shell) help(args []string) (err error) {
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		cmd := commands[name]
		_, err = fmt.Fprintf(sh.Output, "%-28s %s\n", cmd.Usage, cmd.Help)
		if err != nil {
			return
		}
	}

	return
}

func (sh *Shell) programs(args []string) (err error) {
	for _, name := range programs.Names() {
		_, err = fmt.Fprintln(sh.Output, name)
		if err != nil {
			return
		}
	}
	return
}

// Load assembles a program of the library, or an assembly file ending in ".s".
func Load(name string, k *kernel.Kernel) (prog *cpu.Program, err error) {
	if !strings.HasSuffix(name, ".s") {
		return programs.Load(name, k.Defines())
	}

	file, err := os.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	return programs.Assemble(name, file, k.Defines())
}

func (sh *Shell) create(args []string) (err error) {
	prog, err := Load(args[0], sh.Kernel)
	if err != nil {
		return
	}

	pid, err := sh.Kernel.LoadProgram(prog)
	if err != nil {
		return
	}

	_, err = fmt.Fprintf(sh.Output, "pid %d\n", pid)

	return
}

func number(word string) (value int, err error) {
	value, err = strconv.Atoi(word)
	if err != nil {
		err = fmt.Errorf("%w: %q is not a number", ErrUsage, word)
	}
	return
}

func (sh *Shell) remove(args []string) (err error) {
	pid, err := number(args[0])
	if err != nil {
		return
	}

	return sh.Kernel.Kill(pid)
}

func (sh *Shell) ps(args []string) error {
	return sh.Kernel.Ps(sh.Output)
}

func (sh *Shell) dump(args []string) (err error) {
	pid, err := number(args[0])
	if err != nil {
		return
	}

	return sh.Kernel.Dump(sh.Output, pid)
}

func (sh *Shell) dumpm(args []string) (err error) {
	start, err := number(args[0])
	if err != nil {
		return
	}

	end, err := number(args[1])
	if err != nil {
		return
	}

	return sh.Kernel.DumpMemory(sh.Output, start, end)
}

func (sh *Shell) step(args []string) (err error) {
	count := 1
	if len(args) > 0 {
		count, err = number(args[0])
		if err != nil {
			return
		}
	}

	for range count {
		var done bool
		done, err = sh.Kernel.Tick()
		if err != nil {
			var fault *kernel.ErrFault
			if !errors.As(err, &fault) {
				return
			}
			sh.Kernel.Faults = append(sh.Kernel.Faults, fault)
			fmt.Fprintf(sh.Output, "fault: %v\n", fault)
			err = nil
		}
		if done {
			_, err = fmt.Fprintln(sh.Output, "no processes left")
			return
		}
	}

	return
}

func (sh *Shell) run(args []string) (err error) {
	limit := sh.Kernel.Config.Kernel.MaxCycles
	if len(args) > 0 {
		limit, err = number(args[0])
		if err != nil {
			return
		}
	}

	faults := len(sh.Kernel.Faults)

	cycles, err := sh.Kernel.Run(limit)

	for _, fault := range sh.Kernel.Faults[faults:] {
		fmt.Fprintf(sh.Output, "fault: %v\n", fault)
	}

	if err != nil {
		return
	}

	_, err = fmt.Fprintf(sh.Output, "%d cycles\n", cycles)

	return
}

func (sh *Shell) setScheduler(args []string) (err error) {
	policy, err := sched.ParsePolicy(args[0])
	if err != nil {
		return
	}

	return sh.Kernel.SetScheduler(policy)
}

func (sh *Shell) configure(args []string) (err error) {
	value, err := number(args[1])
	if err != nil {
		return
	}

	return sh.Kernel.Configure(args[0], value)
}

func (sh *Shell) metrics(args []string) error {
	return sh.Kernel.Report(sh.Output)
}

func (sh *Shell) traceOn(args []string) error {
	sh.Kernel.SetTrace(true)
	return nil
}

func (sh *Shell) traceOff(args []string) error {
	sh.Kernel.SetTrace(false)
	return nil
}
