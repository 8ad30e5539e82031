package core

// RayStats counts the queries and intersection tests made while tracing.
// A RayStats belongs to a single goroutine; per-worker counts are combined
// with Add.
type RayStats struct {
	Rays          int // Closest-hit queries, primary and secondary
	ShadowRays    int // Any-hit queries
	SphereTests   int
	PlaneTests    int
	TriangleTests int
	BoxTests      int
}

// Add accumulates other into s
func (s *RayStats) Add(other RayStats) {
	s.Rays += other.Rays
	s.ShadowRays += other.ShadowRays
	s.SphereTests += other.SphereTests
	s.PlaneTests += other.PlaneTests
	s.TriangleTests += other.TriangleTests
	s.BoxTests += other.BoxTests
}

// Tests returns the total number of primitive intersection tests
func (s RayStats) Tests() int {
	return s.SphereTests + s.PlaneTests + s.TriangleTests
}
