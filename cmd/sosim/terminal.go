package main

import (
	"bufio"
	stdio "io"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/ezrec/sosim/io"
	"github.com/ezrec/sosim/kernel"
	"github.com/ezrec/sosim/shell"
)

const prompt = "sosim> "

// lineInput feeds whole lines to the syscall console.
type lineInput struct {
	lines   shell.LineReader
	pending []byte
}

func (li *lineInput) Read(buf []byte) (n int, err error) {
	if len(li.pending) == 0 {
		var line string
		line, err = li.lines.ReadLine()
		if err != nil {
			return
		}
		li.pending = []byte(line + "\n")
	}

	n = copy(buf, li.pending)
	li.pending = li.pending[n:]

	return
}

// syscallPrompt reads a terminal line under the syscall prompt.
type syscallPrompt struct {
	*term.Terminal
}

func (sp syscallPrompt) ReadLine() (string, error) {
	sp.SetPrompt("? ")
	defer sp.SetPrompt(prompt)

	return sp.Terminal.ReadLine()
}

// scannerInput reads lines from a non-terminal.
type scannerInput struct {
	*bufio.Scanner
}

func (si scannerInput) ReadLine() (line string, err error) {
	if !si.Scan() {
		err = si.Err()
		if err == nil {
			err = stdio.EOF
		}
		return
	}

	line = si.Text()

	return
}

// runShell runs the interactive shell on the standard input. Syscall reads
// share the shell input.
func runShell(k *kernel.Kernel) (err error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		lines := scannerInput{bufio.NewScanner(os.Stdin)}
		k.Device = &io.Console{Input: &lineInput{lines: lines}, Output: os.Stdout}
		return shell.New(k, os.Stdout).Run(lines)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer term.Restore(fd, state)

	screen := struct {
		stdio.Reader
		stdio.Writer
	}{os.Stdin, os.Stdout}

	t := term.NewTerminal(screen, prompt)
	log.SetOutput(t)
	defer log.SetOutput(os.Stderr)
	k.Device = &io.Console{Input: &lineInput{lines: syscallPrompt{t}}, Output: t}

	return shell.New(k, t).Run(t)
}
