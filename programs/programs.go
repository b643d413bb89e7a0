// Package programs is the library of sample programs for the simulated
// computer, as assembly source.
package programs

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"iter"
	"path"
	"slices"
	"strings"

	"github.com/ezrec/sosim/cpu"
	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	ErrProgramUnknown = errors.New(f("unknown program"))
)

//go:embed src/*.s
var sources embed.FS

const suffix = ".s"

// Names returns the names of every program in the library, sorted.
func Names() (names []string) {
	entries, _ := sources.ReadDir("src")
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), suffix))
	}
	slices.Sort(names)
	return
}

// Source returns the assembly source of a program.
func Source(name string) (text string, err error) {
	data, err := sources.ReadFile(path.Join("src", name+suffix))
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrProgramUnknown, name)
		return
	}

	text = string(data)

	return
}

// Assemble assembles a named program from source, with the defines
// predefined as equates.
func Assemble(name string, input io.Reader, defines iter.Seq2[string, string]) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{}
	if defines != nil {
		for key, value := range defines {
			asm.Predefine(key, value)
		}
	}

	prog, err = asm.Parse(input)
	if err != nil {
		err = fmt.Errorf("%v: %w", name, err)
		return
	}

	prog.Name = name

	return
}

// Load assembles a program of the library.
func Load(name string, defines iter.Seq2[string, string]) (prog *cpu.Program, err error) {
	text, err := Source(name)
	if err != nil {
		return
	}

	return Assemble(name, strings.NewReader(text), defines)
}
