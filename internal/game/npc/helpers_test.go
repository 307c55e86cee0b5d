package npc_test

// fixedSource returns f from every Float64 draw and i (mod n) from every Intn draw.
type fixedSource struct {
	f float64
	i int
}

func (s fixedSource) Intn(n int) int {
	if s.i >= n {
		return n - 1
	}
	return s.i
}

func (s fixedSource) Float64() float64 { return s.f }
