package basictraceroc_test

import (
	"encoding/binary"
	"time"

	basictracer "github.com/szuecs/basictracer-go"
	. "github.com/szuecs/basictracer-go/basictraceroc"

	kitlog "github.com/go-kit/log"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.opencensus.io/trace"
	"go.opencensus.io/trace/tracestate"
)

func traceID(hi, lo uint64) trace.TraceID {
	var id trace.TraceID
	binary.BigEndian.PutUint64(id[:8], hi)
	binary.BigEndian.PutUint64(id[8:], lo)
	return id
}

func spanID(v uint64) trace.SpanID {
	var id trace.SpanID
	binary.BigEndian.PutUint64(id[:], v)
	return id
}

var _ = Describe("Exporter", func() {
	var recorder *basictracer.InMemorySpanRecorder
	var exporter *Exporter
	var start time.Time

	BeforeEach(func() {
		recorder = basictracer.NewInMemoryRecorder()
		start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

		var err error
		exporter, err = NewExporter(
			WithTracerOptions(basictracer.Options{
				Recorder: recorder,
				Logger:   kitlog.NewNopLogger(),
				OnEvent:  func(basictracer.Event) {},
			}),
			WithComponentName("oc-test"),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("fails on invalid tracer options", func() {
		_, err := NewExporter(WithTracerOptions(basictracer.Options{
			MaxLogsPerSpan: -1,
			OnEvent:        func(basictracer.Event) {},
		}))
		Expect(err).To(HaveOccurred())
	})

	It("uses a given tracer", func() {
		tracer, err := basictracer.NewTracer(basictracer.Options{OnEvent: func(basictracer.Event) {}})
		Expect(err).NotTo(HaveOccurred())

		e, err := NewExporter(WithTracer(tracer))
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Tracer()).To(BeIdenticalTo(tracer))
	})

	It("replays the span identity and timing", func() {
		exporter.ExportSpan(&trace.SpanData{
			SpanContext: trace.SpanContext{
				TraceID:      traceID(7, 42),
				SpanID:       spanID(3),
				TraceOptions: trace.TraceOptions(1),
			},
			ParentSpanID: spanID(2),
			SpanKind:     trace.SpanKindServer,
			Name:         "oc-span",
			StartTime:    start,
			EndTime:      start.Add(time.Second),
		})

		spans := recorder.GetSpans()
		Expect(spans).To(HaveLen(1))

		raw := spans[0]
		Expect(raw.Operation).To(Equal("oc-span"))
		Expect(raw.Context.TraceID).To(Equal(uint64(42)))
		Expect(raw.Context.SpanID).To(Equal(uint64(3)))
		Expect(raw.Context.Sampled).To(BeTrue())
		Expect(raw.ParentSpanID).To(Equal(uint64(2)))
		Expect(raw.Duration).To(Equal(time.Second))
		Expect(raw.Tags).To(HaveKeyWithValue("span.kind", ext.SpanKindRPCServerEnum))
		Expect(raw.Tags).To(HaveKeyWithValue("component", "oc-test"))
	})

	It("keeps the sampling decision of unsampled spans", func() {
		exporter.ExportSpan(&trace.SpanData{
			SpanContext: trace.SpanContext{TraceID: traceID(0, 1), SpanID: spanID(1)},
			Name:        "unsampled",
		})

		Expect(recorder.GetSpans()[0].Context.Sampled).To(BeFalse())
	})

	It("converts attributes, status and tracestate", func() {
		ts, err := tracestate.New(nil, tracestate.Entry{Key: "tenant", Value: "acme"})
		Expect(err).NotTo(HaveOccurred())

		exporter.ExportSpan(&trace.SpanData{
			SpanContext: trace.SpanContext{
				TraceID:    traceID(0, 1),
				SpanID:     spanID(1),
				Tracestate: ts,
			},
			Name:       "attributed",
			StartTime:  start,
			EndTime:    start,
			Attributes: map[string]interface{}{"http.path": "/", "retries": int64(2)},
			Status:     trace.Status{Code: trace.StatusCodeUnknown, Message: "boom"},
		})

		raw := recorder.GetSpans()[0]
		Expect(raw.Tags).To(HaveKeyWithValue("http.path", "/"))
		Expect(raw.Tags).To(HaveKeyWithValue("retries", int64(2)))
		Expect(raw.Tags).To(HaveKeyWithValue("error", true))
		Expect(raw.Tags).To(HaveKeyWithValue("status.message", "boom"))
		Expect(raw.Context.Baggage).To(Equal(map[string]string{"tenant": "acme"}))
	})

	It("turns annotations and message events into logs", func() {
		exporter.ExportSpan(&trace.SpanData{
			SpanContext: trace.SpanContext{TraceID: traceID(0, 1), SpanID: spanID(1)},
			Name:        "logged",
			StartTime:   start,
			EndTime:     start.Add(time.Second),
			Annotations: []trace.Annotation{{
				Time:       start.Add(time.Millisecond),
				Message:    "cache miss",
				Attributes: map[string]interface{}{"key": "user:1"},
			}},
			MessageEvents: []trace.MessageEvent{{
				Time:      start.Add(2 * time.Millisecond),
				EventType: trace.MessageEventTypeSent,
				MessageID: 1,
			}},
		})

		logs := recorder.GetSpans()[0].Logs
		Expect(logs).To(HaveLen(2))
		Expect(logs[0].Timestamp).To(Equal(start.Add(time.Millisecond)))
		Expect(logs[0].Fields[0].Value()).To(Equal("cache miss"))
		Expect(logs[0].Fields[1].Key()).To(Equal("key"))
		Expect(logs[1].Fields[0].Value()).To(Equal("message.sent"))
	})

	It("references linked parents", func() {
		exporter.ExportSpan(&trace.SpanData{
			SpanContext: trace.SpanContext{TraceID: traceID(0, 1), SpanID: spanID(5)},
			Name:        "linked",
			Links: []trace.Link{
				{TraceID: traceID(0, 9), SpanID: spanID(8), Type: trace.LinkTypeChild},
				{TraceID: traceID(0, 1), SpanID: spanID(4), Type: trace.LinkTypeParent},
			},
		})

		raw := recorder.GetSpans()[0]
		Expect(raw.References).To(HaveLen(2))
		Expect(raw.References[0].Type).To(Equal(opentracing.FollowsFromRef))
		Expect(raw.References[1].Type).To(Equal(opentracing.ChildOfRef))
		Expect(raw.ParentSpanID).To(Equal(uint64(4)))
		Expect(raw.Context.TraceID).To(Equal(uint64(1)))
	})
})
