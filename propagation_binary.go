package basictracer

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/gogo/protobuf/proto"
	"github.com/lightstep/lightstep-tracer-common/golang/gogo/lightsteppb"
	opentracing "github.com/opentracing/opentracing-go"
)

var theBinaryPropagator binaryPropagator

// binaryPropagator encodes a BinaryCarrier protobuf, base64 wrapped. Carriers
// are an io.Writer or *[]byte for Inject and an io.Reader, []byte or *[]byte
// for Extract.
type binaryPropagator struct{}

func (binaryPropagator) Inject(
	spanContext opentracing.SpanContext,
	opaqueCarrier interface{},
) error {
	sc, ok := spanContext.(SpanContext)
	if !ok {
		return opentracing.ErrInvalidSpanContext
	}

	data, err := proto.Marshal(&lightsteppb.BinaryCarrier{
		BasicCtx: &lightsteppb.BasicTracerCarrier{
			TraceId:      sc.TraceID,
			SpanId:       sc.SpanID,
			Sampled:      sc.Sampled,
			BaggageItems: sc.Baggage,
		},
	})
	if err != nil {
		return err
	}

	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(encoded, data)

	switch carrier := opaqueCarrier.(type) {
	case io.Writer:
		_, err = carrier.Write(encoded)
		return err
	case *[]byte:
		*carrier = encoded
		return nil
	default:
		return opentracing.ErrInvalidCarrier
	}
}

func (binaryPropagator) Extract(
	opaqueCarrier interface{},
) (opentracing.SpanContext, error) {
	var encoded []byte
	switch carrier := opaqueCarrier.(type) {
	case io.Reader:
		buf, err := io.ReadAll(carrier)
		if err != nil {
			return nil, opentracing.ErrSpanContextCorrupted
		}
		encoded = buf
	case []byte:
		encoded = carrier
	case *[]byte:
		if carrier != nil {
			encoded = *carrier
		}
	default:
		return nil, opentracing.ErrInvalidCarrier
	}

	if len(encoded) == 0 {
		return nil, opentracing.ErrSpanContextNotFound
	}

	data := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(data, encoded)
	if err != nil {
		return nil, opentracing.ErrSpanContextCorrupted
	}

	pb := lightsteppb.BinaryCarrier{}
	if err := proto.Unmarshal(data[:n], &pb); err != nil {
		return nil, opentracing.ErrSpanContextCorrupted
	}
	basicCtx := pb.BasicCtx
	if basicCtx == nil || basicCtx.TraceId == 0 || basicCtx.SpanId == 0 {
		return nil, opentracing.ErrSpanContextCorrupted
	}

	var baggage map[string]string
	if len(basicCtx.BaggageItems) > 0 {
		baggage = make(map[string]string, len(basicCtx.BaggageItems))
		for k, v := range basicCtx.BaggageItems {
			baggage[strings.ToLower(k)] = v
		}
	}
	return SpanContext{
		TraceID: basicCtx.TraceId,
		SpanID:  basicCtx.SpanId,
		Sampled: basicCtx.Sampled,
		Baggage: baggage,
	}, nil
}
