package io

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"maps"
	"strconv"
)

// Console provides sequential integer I/O over byte streams.
// Input integers are separated by white space; each output integer is
// written on its own line.
type Console struct {
	Input  io.Reader
	Output io.Writer
	Prompt string // If set, written to Output before each read.

	scanner *bufio.Scanner
	input   io.Reader
}

var _ Device = (*Console)(nil)

// Defines returns an iter of defines for the console.
func (con *Console) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Rewind discards any buffered input.
func (con *Console) Rewind() {
	con.scanner = nil
	con.input = nil
}

// ReadInt reads the next white space separated integer.
func (con *Console) ReadInt() (value int, err error) {
	if con.Input == nil {
		err = ErrNoInput
		return
	}

	if con.scanner == nil || con.input != con.Input {
		con.scanner = bufio.NewScanner(con.Input)
		con.scanner.Split(bufio.ScanWords)
		con.input = con.Input
	}

	if con.Prompt != "" && con.Output != nil {
		_, err = fmt.Fprint(con.Output, con.Prompt)
		if err != nil {
			return
		}
	}

	if !con.scanner.Scan() {
		err = con.scanner.Err()
		if err == nil {
			err = ErrInputEnd
		}
		return
	}

	word := con.scanner.Text()
	value, err = strconv.Atoi(word)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrInputSyntax, word)
		return
	}

	return
}

// WriteInt writes an integer, followed by a newline.
func (con *Console) WriteInt(value int) (err error) {
	if con.Output == nil {
		err = ErrNoOutput
		return
	}

	_, err = fmt.Fprintf(con.Output, "%d\n", value)

	return
}
