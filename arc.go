package pathfx

import (
	"iter"
	"math"
)

// Arc is a circular arc, used for round joins and round caps.
type Arc struct {
	Center     Point
	Radius     float64
	StartAngle float64
	// SweepAngle is positive for anti-clockwise arcs.
	SweepAngle float64
}

// CircularArc returns the arc of the circle with the given center and radius,
// from startAngle, sweeping sweepAngle radians. Positive sweeps turn
// anti-clockwise.
func CircularArc(center Point, radius, startAngle, sweepAngle float64) Arc {
	return Arc{
		Center:     center,
		Radius:     radius,
		StartAngle: startAngle,
		SweepAngle: sweepAngle,
	}
}

// Start returns the first point of the arc.
func (a Arc) Start() Point {
	return a.Center.Translate(VecFromAngle(a.StartAngle).Mul(a.Radius))
}

// End returns the last point of the arc.
func (a Arc) End() Point {
	return a.Center.Translate(VecFromAngle(a.StartAngle + a.SweepAngle).Mul(a.Radius))
}

// Segments yields cubic segments approximating the arc within tolerance.
// A zero sweep yields nothing.
func (a Arc) Segments(tolerance float64) iter.Seq[CubicBez] {
	return func(yield func(CubicBez) bool) {
		if a.SweepAngle == 0 {
			return
		}
		// Subdivisions per full circle for the error tolerance. This may
		// slightly underestimate the error for quadrants.
		nError := max(math.Pow(1.1163*a.Radius/tolerance, 1.0/6.0), 3.999_999)
		n := math.Ceil(nError * math.Abs(a.SweepAngle) * (1.0 / (2.0 * math.Pi)))
		angleStep := a.SweepAngle / n
		arm := a.Radius * math.Copysign((4.0/3.0)*math.Tan(math.Abs(0.25*angleStep)), a.SweepAngle)

		angle0 := a.StartAngle
		p0 := a.Start()
		for range int(n) {
			angle1 := angle0 + angleStep
			p3 := a.Center.Translate(VecFromAngle(angle1).Mul(a.Radius))
			seg := CubicBez{
				p0,
				p0.Translate(VecFromAngle(angle0 + math.Pi/2).Mul(arm)),
				p3.Translate(VecFromAngle(angle1 + math.Pi/2).Mul(-arm)),
				p3,
			}
			angle0 = angle1
			p0 = p3
			if !yield(seg) {
				break
			}
		}
	}
}
