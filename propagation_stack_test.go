package basictracer_test

import (
	. "github.com/szuecs/basictracer-go"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
)

var _ = Describe("Propagator Stack", func() {
	var stack PropagatorStack

	var knownContext1 = SpanContext{
		SpanID:  6397081719746291766,
		TraceID: 506100417967962170,
		Sampled: true,
		Baggage: map[string]string{"checked": "baggage"},
	}

	Context("With no propagators", func() {
		var knownCarrier1 opentracing.TextMapCarrier

		BeforeEach(func() {
			stack = PropagatorStack{}
		})

		It("should return error on inject", func() {
			err := stack.Inject(knownContext1, knownCarrier1)
			Expect(err).ToNot(BeNil())
		})

		It("should return error on extract", func() {
			_, err := stack.Extract(knownCarrier1)
			Expect(err).ToNot(BeNil())
		})
	})

	Context("With one propagator", func() {
		var knownCarrier1 opentracing.TextMapCarrier

		BeforeEach(func() {
			knownCarrier1 = opentracing.TextMapCarrier{}
			stack = PropagatorStack{}
			stack.PushPropagator(TextMapPropagator)
		})

		It("should inject trace", func() {
			err := stack.Inject(knownContext1, knownCarrier1)
			Expect(err).To(BeNil())
			Expect(len(knownCarrier1)).To(Equal(4))
			Expect(knownCarrier1["ot-tracer-traceid"]).To(Equal("70607a611a8383a"))
			Expect(knownCarrier1["ot-tracer-spanid"]).To(Equal("58c6ffee509f6836"))
			Expect(knownCarrier1["ot-tracer-sampled"]).To(Equal("true"))
			Expect(knownCarrier1["ot-baggage-checked"]).To(Equal("baggage"))
		})

		It("should extract trace", func() {
			knownCarrier2 := opentracing.TextMapCarrier{
				"ot-tracer-traceid":  "70607a611a8383a",
				"ot-tracer-spanid":   "58c6ffee509f6836",
				"ot-tracer-sampled":  "true",
				"ot-baggage-checked": "baggage",
			}
			ctx, err := stack.Extract(knownCarrier2)
			Expect(err).To(BeNil())
			// check if spancontext is correct
			spanContext, _ := ctx.(SpanContext)

			Expect(spanContext).To(Equal(knownContext1))
		})

		It("should report a missing context", func() {
			_, err := stack.Extract(opentracing.TextMapCarrier{"unrelated": "value"})
			Expect(err).To(Equal(opentracing.ErrSpanContextNotFound))
		})
	})

	Context("With multiple propagator", func() {
		var knownCarrier1 opentracing.TextMapCarrier

		BeforeEach(func() {
			knownCarrier1 = opentracing.TextMapCarrier{}
			stack = PropagatorStack{}
			stack.PushPropagator(TextMapPropagator)
			stack.PushPropagator(B3Propagator)
		})

		It("should inject trace using both propagators", func() {
			err := stack.Inject(knownContext1, knownCarrier1)
			Expect(err).To(BeNil())
			Expect(len(knownCarrier1)).To(Equal(7))

			Expect(knownCarrier1["ot-tracer-traceid"]).To(Equal("70607a611a8383a"))
			Expect(knownCarrier1["ot-tracer-spanid"]).To(Equal("58c6ffee509f6836"))
			Expect(knownCarrier1["ot-tracer-sampled"]).To(Equal("true"))
			Expect(knownCarrier1["x-b3-traceid"]).To(Equal("070607a611a8383a"))
			Expect(knownCarrier1["x-b3-spanid"]).To(Equal("58c6ffee509f6836"))
			Expect(knownCarrier1["x-b3-sampled"]).To(Equal("1"))
			Expect(knownCarrier1["ot-baggage-checked"]).To(Equal("baggage"))
		})

		It("should extract trace", func() {
			knownCarrier2 := opentracing.TextMapCarrier{
				"ot-tracer-traceid":  "70607a611a8383a",
				"ot-tracer-spanid":   "58c6ffee509f6836",
				"ot-tracer-sampled":  "true",
				"ot-baggage-checked": "baggage",
			}
			ctx, err := stack.Extract(knownCarrier2)
			Expect(err).To(BeNil())
			spanContext, _ := ctx.(SpanContext)

			Expect(spanContext.TraceID).To(Equal(knownContext1.TraceID))
			Expect(spanContext.SpanID).To(Equal(knownContext1.SpanID))
			Expect(spanContext.Baggage).To(Equal(knownContext1.Baggage))

			knownCarrier3 := opentracing.TextMapCarrier{
				"x-b3-traceid":       "70607a611a8383a",
				"x-b3-spanid":        "58c6ffee509f6836",
				"x-b3-sampled":       "true",
				"ot-baggage-checked": "baggage",
			}
			ctx, err = stack.Extract(knownCarrier3)
			Expect(err).To(BeNil())
			spanContext, _ = ctx.(SpanContext)

			Expect(spanContext.TraceID).To(Equal(knownContext1.TraceID))
			Expect(spanContext.SpanID).To(Equal(knownContext1.SpanID))
			Expect(spanContext.Baggage).To(Equal(knownContext1.Baggage))
		})

		It("should keep only the low bits of a 128-bit b3 trace id", func() {
			ctx, err := stack.Extract(opentracing.TextMapCarrier{
				"x-b3-traceid": "463ac35c9f6413ad070607a611a8383a",
				"x-b3-spanid":  "58c6ffee509f6836",
				"x-b3-sampled": "d",
			})
			Expect(err).To(BeNil())
			Expect(ctx.(SpanContext).TraceID).To(Equal(knownContext1.TraceID))
			Expect(ctx.(SpanContext).Sampled).To(BeTrue())
		})

		It("should prefer a found context over a corrupted one", func() {
			ctx, err := stack.Extract(opentracing.TextMapCarrier{
				"ot-tracer-traceid": "not-hex",
				"x-b3-traceid":      "70607a611a8383a",
				"x-b3-spanid":       "58c6ffee509f6836",
				"x-b3-sampled":      "0",
			})
			Expect(err).To(BeNil())
			Expect(ctx.(SpanContext).Sampled).To(BeFalse())

			_, err = stack.Extract(opentracing.TextMapCarrier{"ot-tracer-traceid": "not-hex"})
			Expect(err).To(Equal(opentracing.ErrSpanContextCorrupted))
		})
	})
})
