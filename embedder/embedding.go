package embedder

// Embedding is the vector for a single piece of text. ProcessingTimeMs is
// nil when the provider did not report one.
type Embedding struct {
	Values           []float32
	ProcessingTimeMs *float64
}

func (e Embedding) Len() int {
	return len(e.Values)
}

// Head returns at most the first n values.
func (e Embedding) Head(n int) []float32 {
	if n > len(e.Values) {
		n = len(e.Values)
	}
	if n < 0 {
		n = 0
	}
	cpy := make([]float32, n)
	copy(cpy, e.Values[:n])
	return cpy
}
