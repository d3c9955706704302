package core_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/opmachine/core"
)

const bootcode = `nop +0
acc +1
jmp +4
acc +3
jmp -3
acc -99
acc +1
jmp -4
acc +6
`

const bootcodePatched = `nop +0
acc +1
jmp +4
acc +3
jmp -3
acc -99
acc +1
nop -4
acc +6
`

func mustParse(src string) core.Program {
	prog, err := core.ParseProgramString(src)
	Expect(err).NotTo(HaveOccurred())
	return prog
}

var _ = Describe("Program", func() {
	It("should parse one instruction per line", func() {
		prog := mustParse(bootcode)

		Expect(prog).To(HaveLen(9))
		Expect(prog[0]).To(Equal(core.Instruction{Op: core.OpNop, Arg: 0}))
		Expect(prog[7]).To(Equal(core.Instruction{Op: core.OpJmp, Arg: -4}))
		Expect(prog[8]).To(Equal(core.Instruction{Op: core.OpAcc, Arg: 6}))
	})

	It("should accept indented lines and skip blank ones", func() {
		prog := mustParse("nop +0\n        acc +1\n\n        jmp +4\n")
		Expect(prog).To(Equal(core.Program{
			{Op: core.OpNop, Arg: 0},
			{Op: core.OpAcc, Arg: 1},
			{Op: core.OpJmp, Arg: 4},
		}))
	})

	It("should give the same program when parsed twice", func() {
		first := mustParse(bootcode)
		second := mustParse(bootcode)
		Expect(first).To(Equal(second))

		run := core.NewRun(first)
		for i := range first {
			Expect(run.Executed(i)).To(BeFalse())
		}
	})

	It("should report the failing source line", func() {
		_, err := core.ParseProgramString("nop +0\n\nacc\n")

		var pe *core.ParseError
		Expect(errors.As(err, &pe)).To(BeTrue())
		Expect(pe.Line).To(Equal(3))
		Expect(err.Error()).To(HavePrefix("line 3: "))
	})

	It("should parse an empty program", func() {
		prog, err := core.ParseProgramString("")
		Expect(err).NotTo(HaveOccurred())
		Expect(prog).To(BeEmpty())
	})

	It("should patch a copy", func() {
		prog := mustParse(bootcode)
		patched := prog.Patch(7, core.Instruction{Op: core.OpNop, Arg: -4})

		Expect(prog[7].Op).To(Equal(core.OpJmp))
		Expect(patched[7].Op).To(Equal(core.OpNop))
		Expect(patched).To(Equal(mustParse(bootcodePatched)))
	})

	It("should render its text form", func() {
		Expect(mustParse(bootcode).String()).To(Equal(bootcode))
	})

	It("should print an indexed listing", func() {
		var buf bytes.Buffer
		core.PrintProgram(&buf, mustParse("acc +1\njmp -1\n"))
		Expect(buf.String()).To(Equal("   0  acc +1\n   1  jmp -1\n"))
	})

	Context("when loading files", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should load a text file", func() {
			path := filepath.Join(dir, "boot.txt")
			Expect(os.WriteFile(path, []byte(bootcode), 0o644)).To(Succeed())

			prog, err := core.LoadProgramFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog).To(Equal(mustParse(bootcode)))
		})

		It("should load a YAML file", func() {
			path := filepath.Join(dir, "boot.yaml")
			src := "name: tiny\ninstructions:\n  - acc +2\n  - jmp -1\n"
			Expect(os.WriteFile(path, []byte(src), 0o644)).To(Succeed())

			prog, err := core.LoadProgramFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog).To(Equal(core.Program{
				{Op: core.OpAcc, Arg: 2},
				{Op: core.OpJmp, Arg: -1},
			}))
		})

		It("should report the bad YAML entry", func() {
			path := filepath.Join(dir, "bad.yml")
			src := "instructions:\n  - acc +2\n  - jmp\n"
			Expect(os.WriteFile(path, []byte(src), 0o644)).To(Succeed())

			_, err := core.LoadProgramFileFromYAML(path)
			Expect(errors.Is(err, core.ErrMalformedInstruction)).To(BeTrue())

			var pe *core.ParseError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Line).To(Equal(2))
		})

		It("should fail on a missing file", func() {
			_, err := core.LoadProgramFile(filepath.Join(dir, "missing.txt"))
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})
	})
})
