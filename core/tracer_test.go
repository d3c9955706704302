package core_test

import (
	"bytes"
	"log/slog"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/opmachine/core"
)

var _ = Describe("Tracer", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should see every step and the halt of a hang detection run", func() {
		prog := mustParse("acc +2\njmp -1")

		gomock.InOrder(
			tracer.EXPECT().OnStep(0, prog[0], core.State{IP: 0, Acc: 0}, core.State{IP: 1, Acc: 2}),
			tracer.EXPECT().OnStep(1, prog[1], core.State{IP: 1, Acc: 2}, core.State{IP: 0, Acc: 2}),
			tracer.EXPECT().OnHalt(core.StatusHaltedOnRepeat, core.State{IP: 0, Acc: 2}),
		)

		_, err := core.DetectHang(prog, core.WithTracer(tracer))
		Expect(err).NotTo(HaveOccurred())
	})

	It("should see fallbacks of a completion run", func() {
		prog := mustParse("nop +0\njmp -1\nacc +1")

		gomock.InOrder(
			tracer.EXPECT().OnStep(0, prog[0], core.State{IP: 0}, core.State{IP: 1}),
			tracer.EXPECT().OnFallback(1, prog[1], core.State{IP: 1}, core.State{IP: 2}),
			tracer.EXPECT().OnStep(2, prog[2], core.State{IP: 2}, core.State{IP: 3, Acc: 1}),
			tracer.EXPECT().OnHalt(core.StatusCompleted, core.State{IP: 3, Acc: 1}),
		)

		res, err := core.Complete(prog, core.WithTracer(tracer))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Fallbacks).To(Equal(1))
	})

	It("should not report a halt when the run fails", func() {
		tracer.EXPECT().OnStep(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
		tracer.EXPECT().OnHalt(gomock.Any(), gomock.Any()).Times(0)

		_, err := core.DetectHang(mustParse("acc +0"), core.WithTracer(tracer))
		Expect(err).To(MatchError(core.ErrNoRepeat))
	})

	It("should fan out to every tracer", func() {
		other := NewMockTracer(mockCtrl)
		prog := mustParse("jmp +0")

		for _, t := range []*MockTracer{tracer, other} {
			t.EXPECT().OnStep(0, prog[0], core.State{}, core.State{})
			t.EXPECT().OnHalt(core.StatusHaltedOnRepeat, core.State{})
		}

		_, err := core.DetectHang(prog, core.WithTracer(core.MultiTracer{tracer, other}))
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("TableTracer", func() {
	It("should record one row per event", func() {
		tt := &core.TableTracer{Title: "boot"}

		res, err := core.Complete(mustParse(bootcode), core.WithTracer(tt))
		Expect(err).NotTo(HaveOccurred())
		Expect(tt.Len()).To(Equal(res.Steps))

		out := tt.Render()
		Expect(out).To(ContainSubstring("boot"))
		Expect(out).To(ContainSubstring("fallback"))
		Expect(out).To(ContainSubstring("COMPLETED AT IP=9 ACC=11"))
	})

	It("should render an empty trace", func() {
		tt := &core.TableTracer{}
		Expect(tt.Len()).To(Equal(0))
		Expect(tt.Render()).To(ContainSubstring("INSTRUCTION"))
	})

	It("should accept a log tracer alongside", func() {
		tt := &core.TableTracer{}
		multi := core.MultiTracer{tt, core.LogTracer{Name: "boot"}}

		_, err := core.DetectHang(mustParse(bootcode), core.WithTracer(multi))
		Expect(err).NotTo(HaveOccurred())
		Expect(tt.Len()).To(Equal(7))
	})
})

var _ = Describe("LevelTrace", func() {
	var (
		buf  *bytes.Buffer
		prev *slog.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		prev = slog.Default()
	})

	AfterEach(func() {
		slog.SetDefault(prev)
	})

	useLevel := func(level slog.Level) {
		handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	}

	It("should sit below debug", func() {
		Expect(core.LevelTrace < slog.LevelDebug).To(BeTrue())
	})

	It("should keep run traces out of a debug log", func() {
		useLevel(slog.LevelDebug)

		_, err := core.DetectHang(mustParse(bootcode), core.WithTracer(core.LogTracer{Name: "boot"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(BeEmpty())
	})

	It("should write run traces when asked for", func() {
		useLevel(core.LevelTrace)

		_, err := core.DetectHang(mustParse(bootcode), core.WithTracer(core.LogTracer{Name: "boot"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("msg=Step"))
		Expect(buf.String()).To(ContainSubstring("Run=boot"))
	})
})
