package basictracer_test

import (
	"context"
	"time"

	. "github.com/szuecs/basictracer-go"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
)

var _ = Describe("SpanBuilder", func() {
	var tracer *Tracer
	var recorder *InMemorySpanRecorder
	var opts Options

	BeforeEach(func() {
		opts = Options{}
	})

	JustBeforeEach(func() {
		tracer, recorder = newTestTracer(opts)
	})

	Describe("root spans", func() {
		It("starts a new trace", func() {
			span := tracer.BuildSpan("root").Start()

			sc := contextOf(span)
			Expect(sc.TraceID).NotTo(BeZero())
			Expect(sc.SpanID).NotTo(BeZero())
			Expect(sc.Sampled).To(BeTrue())
			Expect(span.ParentSpanID()).To(BeZero())
			Expect(span.References()).To(BeEmpty())
		})

		It("gives every root its own trace", func() {
			a := contextOf(tracer.StartSpan("a"))
			b := contextOf(tracer.StartSpan("b"))

			Expect(a.TraceID).NotTo(Equal(b.TraceID))
		})

		Context("with a sampler", func() {
			BeforeEach(func() {
				opts.ShouldSample = SampleNone
			})

			It("asks the sampler for the root", func() {
				Expect(contextOf(tracer.StartSpan("root")).Sampled).To(BeFalse())
			})

			It("lets children inherit the decision", func() {
				root := tracer.StartSpan("root")
				child := tracer.StartSpan("child", opentracing.ChildOf(root.Context()))
				Expect(contextOf(child).Sampled).To(BeFalse())
			})
		})
	})

	Describe("child spans", func() {
		It("joins the parent's trace", func() {
			parent := tracer.StartSpan("parent")
			parent.SetBaggageItem("k", "v")

			child := tracer.BuildSpan("child").AsChildOf(parent.Context()).Start()

			pc, cc := contextOf(parent), contextOf(child)
			Expect(cc.TraceID).To(Equal(pc.TraceID))
			Expect(cc.SpanID).NotTo(Equal(pc.SpanID))
			Expect(cc.Sampled).To(Equal(pc.Sampled))
			Expect(child.ParentSpanID()).To(Equal(pc.SpanID))
			Expect(cc.Baggage).To(Equal(map[string]string{"k": "v"}))

			refs := child.References()
			Expect(refs).To(HaveLen(1))
			Expect(refs[0].Type).To(Equal(opentracing.ChildOfRef))
			Expect(refs[0].Context.SpanID).To(Equal(pc.SpanID))
		})

		It("follows from a span", func() {
			parent := tracer.StartSpan("parent")
			child := tracer.StartSpan("child", opentracing.FollowsFrom(parent.Context()))

			Expect(contextOf(child).TraceID).To(Equal(contextOf(parent).TraceID))
			Expect(child.(Span).ParentSpanID()).To(Equal(contextOf(parent).SpanID))
		})

		It("prefers the first ChildOf reference", func() {
			x := tracer.StartSpan("x")
			x.SetBaggageItem("shared", "x").SetBaggageItem("from-x", "1")
			y := tracer.StartSpan("y")
			y.SetBaggageItem("shared", "y").SetBaggageItem("from-y", "1")

			child := tracer.StartSpan("child",
				opentracing.FollowsFrom(x.Context()),
				opentracing.ChildOf(y.Context()),
			)

			cc := contextOf(child)
			Expect(cc.TraceID).To(Equal(contextOf(y).TraceID))
			Expect(child.(Span).ParentSpanID()).To(Equal(contextOf(y).SpanID))
			Expect(cc.Baggage).To(Equal(map[string]string{
				"shared": "y",
				"from-x": "1",
				"from-y": "1",
			}))
			Expect(child.(Span).References()).To(HaveLen(2))
		})

		It("merges baggage with later references winning", func() {
			x := tracer.StartSpan("x")
			x.SetBaggageItem("shared", "x")
			y := tracer.StartSpan("y")
			y.SetBaggageItem("shared", "y")

			child := tracer.StartSpan("child",
				opentracing.ChildOf(y.Context()),
				opentracing.FollowsFrom(x.Context()),
			)

			Expect(child.(Span).ParentSpanID()).To(Equal(contextOf(y).SpanID))
			Expect(child.BaggageItem("shared")).To(Equal("x"))
		})

		It("uses the first reference of a custom type when there is no ChildOf", func() {
			parent := tracer.StartSpan("parent")
			child := tracer.BuildSpan("child").
				AddReference(opentracing.SpanReferenceType(42), parent.Context()).
				Start()

			Expect(child.ParentSpanID()).To(Equal(contextOf(parent).SpanID))
			Expect(child.References()[0].Type).To(Equal(opentracing.SpanReferenceType(42)))
		})

		It("skips contexts from other tracers", func() {
			foreign := opentracing.NoopTracer{}.StartSpan("foreign")
			span := tracer.StartSpan("span", opentracing.ChildOf(foreign.Context()))

			Expect(span.(Span).ParentSpanID()).To(BeZero())
			Expect(span.(Span).References()).To(BeEmpty())
		})

		It("ignores a nil reference", func() {
			span := tracer.BuildSpan("span").AsChildOf(nil).Start()
			Expect(span.ParentSpanID()).To(BeZero())
		})
	})

	Describe("the active span", func() {
		var parent opentracing.Span
		var ctx context.Context
		var scope Scope

		JustBeforeEach(func() {
			parent = tracer.StartSpan("parent")
			ctx, scope = tracer.ScopeManager().Activate(context.Background(), parent, false)
		})

		AfterEach(func() {
			Expect(scope.Close()).To(Succeed())
		})

		It("becomes the implicit parent", func() {
			child := tracer.BuildSpan("child").WithContext(ctx).Start()
			Expect(child.ParentSpanID()).To(Equal(contextOf(parent).SpanID))
			Expect(contextOf(child).TraceID).To(Equal(contextOf(parent).TraceID))
		})

		It("is found through StartSpan with ActiveContext", func() {
			child := tracer.StartSpan("child", ActiveContext(ctx))
			Expect(child.(Span).ParentSpanID()).To(Equal(contextOf(parent).SpanID))
		})

		It("is not used with IgnoreActiveSpan", func() {
			child := tracer.StartSpan("child", ActiveContext(ctx), IgnoreActiveSpan())
			Expect(child.(Span).ParentSpanID()).To(BeZero())
			Expect(contextOf(child).TraceID).NotTo(Equal(contextOf(parent).TraceID))

			built := tracer.BuildSpan("child").WithContext(ctx).IgnoreActiveSpan().Start()
			Expect(built.ParentSpanID()).To(BeZero())
		})

		It("is not used when references are given", func() {
			other := tracer.StartSpan("other")
			child := tracer.StartSpan("child", ActiveContext(ctx), opentracing.ChildOf(other.Context()))
			Expect(child.(Span).ParentSpanID()).To(Equal(contextOf(other).SpanID))
		})

		It("is not used when the only reference is foreign", func() {
			foreign := opentracing.NoopTracer{}.StartSpan("foreign")
			child := tracer.StartSpan("child", ActiveContext(ctx), opentracing.ChildOf(foreign.Context()))
			Expect(child.(Span).ParentSpanID()).To(BeZero())
		})
	})

	Describe("StartActive", func() {
		It("activates the new span", func() {
			ctx, scope := tracer.BuildSpan("active").StartActive(true)

			active := tracer.ScopeManager().Active(ctx)
			Expect(active).NotTo(BeNil())
			Expect(active.Span()).To(BeIdenticalTo(scope.Span()))

			Expect(scope.Close()).To(Succeed())
			Expect(recorder.GetSpans()).To(HaveLen(1))
			Expect(tracer.ScopeManager().Active(ctx)).To(BeNil())
		})
	})

	Describe("start options", func() {
		It("applies tags and the start time", func() {
			start := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
			span := tracer.StartSpan("tagged",
				opentracing.Tag{Key: "a", Value: "b"},
				opentracing.Tags{"n": 1},
				opentracing.StartTime(start),
			)
			span.Finish()

			raw := recorder.GetSpans()[0]
			Expect(raw.Start).To(Equal(start))
			Expect(raw.Tags).To(Equal(opentracing.Tags{"a": "b", "n": 1}))
		})

		It("records invalid tag values", func() {
			span := tracer.BuildSpan("tagged").WithTag("bad", []int{1}).Start()
			Expect(usageErrorsMatching(span.Errors(), ErrInvalidTagValue)).To(Equal(1))
		})

		It("overrides the identity", func() {
			span := tracer.StartSpan("forced",
				SetTraceID(1),
				SetSpanID(2),
				SetParentSpanID(3),
				SetSampled(false),
			)

			sc := contextOf(span)
			Expect(sc.TraceID).To(Equal(uint64(1)))
			Expect(sc.SpanID).To(Equal(uint64(2)))
			Expect(sc.Sampled).To(BeFalse())
			Expect(span.(Span).ParentSpanID()).To(Equal(uint64(3)))
		})

		It("overrides the sampling of a child", func() {
			parent := tracer.StartSpan("parent")
			child := tracer.StartSpan("child", opentracing.ChildOf(parent.Context()), SetSampled(false))

			Expect(contextOf(parent).Sampled).To(BeTrue())
			Expect(contextOf(child).Sampled).To(BeFalse())
		})
	})
})
