package basictracer

// SampleAll samples every trace.
func SampleAll(uint64) bool { return true }

// SampleNone samples no trace.
func SampleNone(uint64) bool { return false }

// SampleModulo samples a root span when its id is divisible by n. A modulo
// of zero or one samples every trace.
func SampleModulo(n uint64) func(uint64) bool {
	if n <= 1 {
		return SampleAll
	}
	return func(id uint64) bool {
		return id%n == 0
	}
}
