package layout

// Tuning holds the force constants. World units are arbitrary; the viewport
// projection rescales them.
type Tuning struct {
	Repulsion       float64 // pairwise push, scaled by 1/d²
	SpringLength    float64 // rest length of an edge
	SpringStiffness float64
	Gravity         float64 // pull toward the origin, keeps islands on screen
	DampingDiv      float64 // velocity is divided by this every step
	MaxSpeed        float64
	MinDistance     float64 // clamps repulsion for overlapping bodies
}

func DefaultTuning() Tuning {
	return Tuning{
		Repulsion:       2000,
		SpringLength:    60,
		SpringStiffness: 0.02,
		Gravity:         0.01,
		DampingDiv:      1.5,
		MaxSpeed:        20,
		MinDistance:     1,
	}
}
