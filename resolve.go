package basictracer

import (
	opentracing "github.com/opentracing/opentracing-go"
)

// resolution is the identity a new span derives from its references.
type resolution struct {
	// root is set when no usable reference was given.
	root bool

	traceID      uint64
	parentSpanID uint64
	sampled      bool
	baggage      map[string]string

	references []Reference
}

// resolveReferences picks the preferred parent and merges baggage.
//
// The preferred parent is the first ChildOf reference, or the first
// reference of any type when there is no ChildOf. Baggage is the union of
// every referenced context applied in list order, so later references win
// on duplicate keys. References to contexts from other tracers are skipped.
func resolveReferences(refs []opentracing.SpanReference) resolution {
	var res resolution
	for _, ref := range refs {
		sc, ok := ref.ReferencedContext.(SpanContext)
		if !ok || !sc.IsValid() {
			continue
		}
		res.references = append(res.references, Reference{Type: ref.Type, Context: sc})
	}

	if len(res.references) == 0 {
		res.root = true
		return res
	}

	preferred := res.references[0]
	for _, ref := range res.references {
		if ref.Type == opentracing.ChildOfRef {
			preferred = ref
			break
		}
	}
	res.traceID = preferred.Context.TraceID
	res.parentSpanID = preferred.Context.SpanID
	res.sampled = preferred.Context.Sampled

	for _, ref := range res.references {
		for k, v := range ref.Context.Baggage {
			if res.baggage == nil {
				res.baggage = make(map[string]string)
			}
			res.baggage[k] = v
		}
	}
	return res
}
