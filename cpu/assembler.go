// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":        "0",
	"SYSCALL_READ":  fmt.Sprintf("%d", SYSCALL_READ),
	"SYSCALL_WRITE": fmt.Sprintf("%d", SYSCALL_WRITE),
}

// opcodeMap maps mnemonics to opcodes.
var opcodeMap = func() map[string]Opcode {
	ops := make(map[string]Opcode, len(operandMap))
	for op := range operandMap {
		ops[op.String()] = op
	}
	return ops
}()

// Assembler is a single pass macro assembler for the simulated computer.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)

	return
}

// registerOf returns the register index of an 'rN' word.
func (asm *Assembler) registerOf(word string) (reg int, err error) {
	lower := strings.ToLower(word)
	if len(lower) < 2 || lower[0] != 'r' {
		err = ErrParseRegister(word)
		return
	}

	reg, err = strconv.Atoi(lower[1:])
	if err != nil {
		err = ErrParseRegister(word)
		return
	}

	if !validRegister(reg) || reg == REG_NONE {
		err = fmt.Errorf("%w: %v", ErrRegisterInvalid, word)
		return
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var num int
		num, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(num)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// parseLine parses a single line into words, expanding equates and macros.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "t":
				str = "\t"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%d", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = slices.DeleteFunc(strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	}), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next generated cell.
func (asm *Assembler) currentAddr() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Addr + len(last.Cells)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.expansion = 0
	asm.Statement = asm.Statement[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		label := st.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			line = strings.Join(st.Words, " ")
			lineno = st.LineNo
			err = ErrLabelMissing(label)
			return
		}
		if len(st.Cells) != 1 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, st.LineNo, st.Words)
		}
		st.Cells[0].P = addr
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// parameterOf returns the value of a parameter word, or the label it links to.
func (asm *Assembler) parameterOf(word string) (value int, label string, err error) {
	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	// Anything that starts like an identifier is a label reference.
	c := word[0]
	if c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		err = nil
		label = word
		return
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var cells []Cell
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(cells) == 0 {
			return
		}
		st := Statement{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Cells: cells, LinkLabel: label}
		asm.Statement = append(asm.Statement, st)
	}()

	// .space COUNT
	if words[0] == ".space" {
		if len(words) != 2 {
			err = ErrSpaceSyntax
			return
		}
		var count int
		count, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if count < 0 {
			err = ErrSpaceSyntax
			return
		}
		for range count {
			cells = append(cells, MakeData(0))
		}
		return
	}

	op, ok := opcodeMap[strings.ToUpper(words[0])]
	if !ok {
		err = ErrInstructionInvalid
		return
	}
	operand, _ := op.Operands()

	args := words[1:]
	cell := Cell{Opcode: op, Ra: REG_NONE, Rb: REG_NONE}

	fields := []struct {
		need Operand
		reg  *int
	}{
		{OPERAND_RA, &cell.Ra},
		{OPERAND_RB, &cell.Rb},
		{OPERAND_P, nil},
	}

	for _, field := range fields {
		if !operand.Has(field.need) {
			continue
		}
		if len(args) == 0 {
			if operand.Has(OPERAND_OPT) {
				break
			}
			err = ErrOpcodeValueMissing
			return
		}
		word := args[0]
		args = args[1:]
		if field.reg != nil {
			*field.reg, err = asm.registerOf(word)
		} else {
			cell.P, label, err = asm.parameterOf(word)
		}
		if err != nil {
			return
		}
	}

	if len(args) != 0 {
		err = ErrOpcodeExtraArgs
		return
	}

	cells = append(cells, cell)

	return
}
