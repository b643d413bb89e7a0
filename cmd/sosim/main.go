package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/sosim/config"
	"github.com/ezrec/sosim/io"
	"github.com/ezrec/sosim/kernel"
	"github.com/ezrec/sosim/sched"
	"github.com/ezrec/sosim/shell"
	"github.com/ezrec/sosim/translate"
)

func main() {
	var configFile string
	var policy string
	var quantum int
	var maxCycles int
	var verbose bool
	var interactive bool
	var compare bool
	var input string
	var lang string

	flag.StringVar(&configFile, "config", "", "TOML configuration file")
	flag.StringVar(&policy, "s", "", "Scheduling policy (RR, FCFS, SJF)")
	flag.IntVar(&quantum, "q", 0, "Round robin quantum")
	flag.IntVar(&maxCycles, "n", -1, "Maximum cycles to run, 0 for no limit")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&interactive, "i", false, "Interactive shell")
	flag.BoolVar(&compare, "compare", false, "Run the programs under every policy, and compare")
	flag.StringVar(&input, "input", "", "Comma separated syscall input for -compare")
	flag.StringVar(&lang, "lang", "", "Message language (BCP 47), overrides "+translate.LANG_ENV)

	flag.Parse()

	if len(lang) != 0 {
		err := translate.SetLanguage(lang)
		if err != nil {
			log.Fatalf("-lang %v: %v", lang, err)
		}
	}

	cfg := config.Default()
	if len(configFile) != 0 {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			log.Fatalf("%v: %v", configFile, err)
		}
	}

	if len(policy) != 0 {
		cfg.Scheduler.Policy = policy
	}
	if quantum != 0 {
		cfg.Scheduler.Quantum = quantum
	}
	if maxCycles >= 0 {
		cfg.Kernel.MaxCycles = maxCycles
	}
	if verbose {
		cfg.Kernel.Verbose = true
	}

	err := cfg.Validate()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if compare {
		values, err := parseInput(input)
		if err != nil {
			log.Fatalf("-input: %v", err)
		}
		runCompare(cfg, values, flag.Args())
		return
	}

	k, err := kernel.New(cfg)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	for _, name := range flag.Args() {
		prog, err := shell.Load(name, k)
		if err != nil {
			log.Fatalf("%v: %v", name, err)
		}
		_, err = k.LoadProgram(prog)
		if err != nil {
			log.Fatalf("%v: %v", name, err)
		}
	}

	if interactive {
		err = runShell(k)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
		return
	}

	if flag.NArg() == 0 {
		log.Fatalf("%v: no programs given", os.Args[0])
	}

	_, err = k.Run(cfg.Kernel.MaxCycles)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	err = k.Report(os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}

// parseInput parses a comma separated list of integers.
func parseInput(text string) (values []int, err error) {
	if len(text) == 0 {
		return
	}

	for _, word := range strings.Split(text, ",") {
		var value int
		value, err = strconv.Atoi(strings.TrimSpace(word))
		if err != nil {
			return
		}
		values = append(values, value)
	}

	return
}

// runCompare runs the same workload under every policy.
func runCompare(cfg config.Config, input []int, names []string) {
	if len(names) == 0 {
		log.Fatalf("%v: no programs given", os.Args[0])
	}

	var all []*sched.Metrics
	for _, policy := range sched.Policies {
		cfg.Scheduler.Policy = policy.String()

		k, err := kernel.New(cfg)
		if err != nil {
			log.Fatalf("%v: %v", policy, err)
		}
		k.Device = &io.Queue{Input: input}

		for _, name := range names {
			prog, err := shell.Load(name, k)
			if err != nil {
				log.Fatalf("%v: %v", name, err)
			}
			_, err = k.LoadProgram(prog)
			if err != nil {
				log.Fatalf("%v: %v", name, err)
			}
		}

		_, err = k.Run(cfg.Kernel.MaxCycles)
		if err != nil {
			log.Fatalf("%v: %v", policy, err)
		}

		all = append(all, k.Scheduler.Metrics())
	}

	err := all[0].Compare(os.Stdout, all[1:]...)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println()
}
