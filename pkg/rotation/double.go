package rotation

import "math"

// DoubleRotate rotates (u, v) about the vertical axis into the mean wind
// direction, then tilts (u, w) about the cross-wind axis so the mean vertical
// wind becomes zero. It fails with ReasonExtremeAngle when the tilt exceeds
// MaxRotationAngle.
func DoubleRotate(u, v, w []float64, means Means) (Rotated, error) {
	alpha := math.Atan2(means.V, means.U)
	beta := math.Atan2(means.W, means.HorizontalSpeed())

	if math.Abs(degrees(beta)) > MaxRotationAngle {
		return Rotated{}, &Error{
			Reason: ReasonExtremeAngle,
			Alpha:  degrees(alpha),
			Beta:   degrees(beta),
		}
	}

	sinA, cosA := math.Sincos(alpha)
	sinB, cosB := math.Sincos(beta)

	n := len(u)
	out := Rotated{
		U:     make([]float64, n),
		V:     make([]float64, n),
		W:     make([]float64, n),
		Alpha: degrees(alpha),
		Beta:  degrees(beta),
	}

	for i := 0; i < n; i++ {
		u1 := u[i]*cosA + v[i]*sinA
		v1 := -u[i]*sinA + v[i]*cosA

		out.U[i] = u1*cosB + w[i]*sinB
		out.V[i] = v1
		out.W[i] = -u1*sinB + w[i]*cosB
	}

	return out, nil
}
