// Package basictraceroc provides an OpenCensus exporter that replays
// OpenCensus spans into a basictracer Tracer, so they reach the tracer's
// SpanRecorder next to spans started through the opentracing API.
//
//     func Example() {
//         recorder := basictracer.NewInMemoryRecorder()
//         exporter, err := basictraceroc.NewExporter(
//             basictraceroc.WithTracerOptions(basictracer.Options{Recorder: recorder}),
//         )
//         if err != nil {
//             log.Fatal(err)
//         }
//
//         trace.RegisterExporter(exporter)
//         defer trace.UnregisterExporter(exporter)
//     }
package basictraceroc
