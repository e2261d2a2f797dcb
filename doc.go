// Package basictracer is an OpenTracing tracer that keeps spans in process.
//
// It models span identity and state, resolves references into a trace
// tree, tracks the active span per flow through a ScopeManager and moves
// span contexts across process boundaries with format-indexed propagators.
// Finished spans are handed to a SpanRecorder; shipping them anywhere is up
// to the recorder.
//
//     recorder := basictracer.NewInMemoryRecorder()
//     tracer, err := basictracer.NewTracer(basictracer.Options{Recorder: recorder})
//     if err != nil {
//         log.Fatal(err)
//     }
//
//     ctx, scope := tracer.BuildSpan("parent").WithContext(ctx).StartActive(true)
//     defer scope.Close()
//
//     child := tracer.BuildSpan("child").WithContext(ctx).Start()
//     defer child.Finish()
package basictracer
