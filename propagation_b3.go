package basictracer

import (
	"fmt"
	"strconv"
)

const (
	b3Prefix           = "x-b3-"
	b3FieldNameTraceID = b3Prefix + "traceid"
	b3FieldNameSpanID  = b3Prefix + "spanid"
	b3FieldNameSampled = b3Prefix + "sampled"
)

var theB3Propagator = textMapPropagator{
	traceIDKey:   b3FieldNameTraceID,
	spanIDKey:    b3FieldNameSpanID,
	sampledKey:   b3FieldNameSampled,
	formatID:     b3FormatID,
	parseTraceID: b3TraceIDParser,
	formatSample: b3FormatSampled,
	parseSample:  b3ParseSampled,
}

func b3FormatID(id uint64) string {
	return fmt.Sprintf("%016x", id)
}

// b3TraceIDParser accepts 64-bit and 128-bit ids. Only the low 64 bits of a
// 128-bit id are kept.
func b3TraceIDParser(v string) (uint64, error) {
	if len(v) == 32 {
		if _, err := strconv.ParseUint(v[:16], 16, 64); err != nil {
			return 0, err
		}
		return strconv.ParseUint(v[16:], 16, 64)
	}
	return strconv.ParseUint(v, 16, 64)
}

func b3FormatSampled(sampled bool) string {
	if sampled {
		return "1"
	}
	return "0"
}

func b3ParseSampled(v string) (bool, error) {
	switch v {
	case "1", "d":
		return true, nil
	case "0":
		return false, nil
	}
	return strconv.ParseBool(v)
}
