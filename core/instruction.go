package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Opcode represents the operation code for an instruction
type Opcode string

// The operations understood by the machine. Any other mnemonic is accepted by
// the parser and rejected when executed.
const (
	OpAcc Opcode = "acc"
	OpJmp Opcode = "jmp"
	OpNop Opcode = "nop"
)

// Known reports whether the machine can execute the opcode.
func (o Opcode) Known() bool {
	switch o {
	case OpAcc, OpJmp, OpNop:
		return true
	}
	return false
}

// ErrMalformedInstruction is wrapped by every ParseError.
var ErrMalformedInstruction = errors.New("malformed instruction")

// ParseError describes a line that could not be turned into an Instruction.
type ParseError struct {
	Line   int // 1-based source line, 0 when parsing a single instruction
	Text   string
	Reason string
	Err    error // underlying strconv error, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s %q: %s", ErrMalformedInstruction, e.Text, e.Reason)
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrMalformedInstruction) hold for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedInstruction
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Instruction is a single parsed line of a program.
type Instruction struct {
	Op  Opcode
	Arg int
}

// ParseInstruction parses one "<op> <signed-int>" line. Tokens after the
// argument are ignored.
func ParseInstruction(line string) (Instruction, error) {
	tokens := strings.Fields(line)
	switch len(tokens) {
	case 0:
		return Instruction{}, &ParseError{Text: line, Reason: "operation name required"}
	case 1:
		return Instruction{}, &ParseError{Text: line, Reason: "operation argument required"}
	}

	arg, err := strconv.Atoi(tokens[1])
	if err != nil {
		return Instruction{}, &ParseError{
			Text:   line,
			Reason: "argument is not a signed integer",
			Err:    err,
		}
	}

	return Instruction{Op: Opcode(tokens[0]), Arg: arg}, nil
}

// String renders the instruction in the form accepted by ParseInstruction.
func (i Instruction) String() string {
	return fmt.Sprintf("%s %+d", i.Op, i.Arg)
}
