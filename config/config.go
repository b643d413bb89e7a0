// Package config holds the settings of the simulated computer, loaded from
// a TOML file over the defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	ErrInvalid = errors.New(f("invalid configuration"))
)

const (
	DEFAULT_MEMORY_SIZE   = 1024
	DEFAULT_PAGE_SIZE     = 8
	DEFAULT_MIN_INT       = -32767
	DEFAULT_MAX_INT       = 32767
	DEFAULT_POLICY        = "RR"
	DEFAULT_QUANTUM       = 10
	DEFAULT_ESTIMATE      = 5
	DEFAULT_MAX_PROCESSES = 10
	DEFAULT_MAX_CYCLES    = 100000
)

// Memory configures the paged memory manager.
type Memory struct {
	Size     int `toml:"size"`
	PageSize int `toml:"page_size"`
}

// Cpu configures the interpreter.
type Cpu struct {
	MinInt int `toml:"min_int"`
	MaxInt int `toml:"max_int"`
}

// Scheduler configures the initial scheduling policy.
type Scheduler struct {
	Policy   string `toml:"policy"`
	Quantum  int    `toml:"quantum"`
	Estimate int    `toml:"estimate"`
}

// Kernel configures the process manager.
type Kernel struct {
	MaxProcesses   int  `toml:"max_processes"`
	MaxCycles      int  `toml:"max_cycles"`
	BlockOnSyscall bool `toml:"block_on_syscall"`
	Verbose        bool `toml:"verbose"`
}

// Config is the complete configuration.
type Config struct {
	Memory    Memory    `toml:"memory"`
	Cpu       Cpu       `toml:"cpu"`
	Scheduler Scheduler `toml:"scheduler"`
	Kernel    Kernel    `toml:"kernel"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Memory: Memory{
			Size:     DEFAULT_MEMORY_SIZE,
			PageSize: DEFAULT_PAGE_SIZE,
		},
		Cpu: Cpu{
			MinInt: DEFAULT_MIN_INT,
			MaxInt: DEFAULT_MAX_INT,
		},
		Scheduler: Scheduler{
			Policy:   DEFAULT_POLICY,
			Quantum:  DEFAULT_QUANTUM,
			Estimate: DEFAULT_ESTIMATE,
		},
		Kernel: Kernel{
			MaxProcesses: DEFAULT_MAX_PROCESSES,
			MaxCycles:    DEFAULT_MAX_CYCLES,
		},
	}
}

// Decode reads a TOML configuration over the defaults, and validates it.
func Decode(r io.Reader) (cfg Config, err error) {
	cfg = Default()

	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		err = errors.Join(ErrInvalid, err)
		return
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		err = fmt.Errorf("%w: unknown key %v", ErrInvalid, undecoded[0])
		return
	}

	err = cfg.Validate()

	return
}

// Load reads a TOML configuration file over the defaults, and validates it.
func Load(path string) (cfg Config, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	return Decode(file)
}

// Validate checks the configuration for consistency.
func (cfg Config) Validate() (err error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	switch {
	case cfg.Memory.Size <= 0:
		err = invalid("memory.size %d", cfg.Memory.Size)
	case cfg.Memory.PageSize <= 0:
		err = invalid("memory.page_size %d", cfg.Memory.PageSize)
	case cfg.Memory.Size%cfg.Memory.PageSize != 0:
		err = invalid("memory.size %d is not a multiple of memory.page_size %d", cfg.Memory.Size, cfg.Memory.PageSize)
	case cfg.Cpu.MinInt > 0 || cfg.Cpu.MaxInt < 0 || cfg.Cpu.MinInt >= cfg.Cpu.MaxInt:
		err = invalid("cpu bounds [%d,%d]", cfg.Cpu.MinInt, cfg.Cpu.MaxInt)
	case cfg.Scheduler.Policy == "":
		err = invalid("scheduler.policy is empty")
	case cfg.Scheduler.Quantum <= 0:
		err = invalid("scheduler.quantum %d", cfg.Scheduler.Quantum)
	case cfg.Scheduler.Estimate <= 0:
		err = invalid("scheduler.estimate %d", cfg.Scheduler.Estimate)
	case cfg.Kernel.MaxProcesses <= 0:
		err = invalid("kernel.max_processes %d", cfg.Kernel.MaxProcesses)
	case cfg.Kernel.MaxCycles < 0:
		err = invalid("kernel.max_cycles %d", cfg.Kernel.MaxCycles)
	}

	return
}
