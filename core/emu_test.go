package core_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/opmachine/core"
)

var _ = Describe("Execute", func() {
	var s core.State

	BeforeEach(func() {
		s = core.State{IP: 3, Acc: 10}
	})

	It("should add to the accumulator and step forward on acc", func() {
		next, err := core.Execute(s, core.Instruction{Op: core.OpAcc, Arg: -4})
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(core.State{IP: 4, Acc: 6}))
	})

	It("should move the pointer by the argument on jmp", func() {
		next, err := core.Execute(s, core.Instruction{Op: core.OpJmp, Arg: -3})
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(core.State{IP: 0, Acc: 10}))
	})

	It("should ignore the argument of nop", func() {
		next, err := core.Execute(s, core.Instruction{Op: core.OpNop, Arg: 100})
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(core.State{IP: 4, Acc: 10}))
	})

	It("should leave its input state untouched", func() {
		before := s
		_, err := core.Execute(s, core.Instruction{Op: core.OpAcc, Arg: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(before))
	})

	It("should reject unknown opcodes", func() {
		next, err := core.Execute(s, core.Instruction{Op: "hcf", Arg: 1})
		Expect(errors.Is(err, core.ErrUnsupportedOperation)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`"hcf"`))
		Expect(next).To(Equal(s))
	})

	It("should allow the pointer to leave the program", func() {
		next, err := core.Execute(core.State{}, core.Instruction{Op: core.OpJmp, Arg: -7})
		Expect(err).NotTo(HaveOccurred())
		Expect(next.IP).To(Equal(-7))
	})
})
