package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Program is an ordered list of instructions. Runs never modify a Program,
// so one value can be shared by any number of runs.
type Program []Instruction

// ParseProgram reads one instruction per line. Blank lines are skipped and
// errors report the 1-based line they occurred on.
func ParseProgram(r io.Reader) (Program, error) {
	var prog Program

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		inst, err := ParseInstruction(line)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line = lineNo
			}
			return nil, err
		}
		prog = append(prog, inst)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return prog, nil
}

// ParseProgramString is ParseProgram over a string.
func ParseProgramString(src string) (Program, error) {
	return ParseProgram(strings.NewReader(src))
}

// Patch returns a copy of the program with the instruction at index replaced.
func (p Program) Patch(index int, inst Instruction) Program {
	patched := make(Program, len(p))
	copy(patched, p)
	patched[index] = inst
	return patched
}

// String renders the program in its text form, one instruction per line.
func (p Program) String() string {
	var sb strings.Builder
	for _, inst := range p {
		sb.WriteString(inst.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// LoadProgramFile loads a program from a text file. Files ending in .yaml or
// .yml are handed to LoadProgramFileFromYAML.
func LoadProgramFile(path string) (Program, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return LoadProgramFileFromYAML(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer f.Close()

	prog, err := ParseProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	Trace("ProgramLoaded", "Path", path, "Instructions", len(prog))

	return prog, nil
}

// ProgramFile is the YAML layout of a program:
//
//	name: bootcode
//	instructions:
//	  - nop +0
//	  - acc +1
type ProgramFile struct {
	Name         string   `yaml:"name"`
	Instructions []string `yaml:"instructions"`
}

// LoadProgramFileFromYAML loads a program stored as a ProgramFile.
func LoadProgramFileFromYAML(path string) (Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	var pf ProgramFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}

	prog := make(Program, 0, len(pf.Instructions))
	for i, line := range pf.Instructions {
		inst, err := ParseInstruction(line)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line = i + 1
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		prog = append(prog, inst)
	}

	Trace("ProgramLoaded", "Path", path, "Name", pf.Name, "Instructions", len(prog))

	return prog, nil
}

// PrintProgram writes an indexed listing of the program to w.
func PrintProgram(w io.Writer, p Program) {
	for i, inst := range p {
		fmt.Fprintf(w, "%4d  %s\n", i, inst)
	}
}
