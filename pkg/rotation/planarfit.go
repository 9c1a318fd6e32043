package rotation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Plane is the least-squares fit w = B0 + B1*u + B2*v.
type Plane struct {
	B0, B1, B2 float64
}

// FitPlane regresses w on the deviations of u and v from their means by
// solving the 2x2 normal equations. It fails with ReasonSingularMatrix when
// the normal matrix determinant is below SingularDeterminant, which happens
// when u and v are collinear or one of them is constant.
func FitPlane(u, v, w []float64, means Means) (Plane, error) {
	var suu, svv, suv, suw, svw float64
	for i := range u {
		du := u[i] - means.U
		dv := v[i] - means.V
		dw := w[i] - means.W

		suu += du * du
		svv += dv * dv
		suv += du * dv
		suw += du * dw
		svw += dv * dw
	}

	normal := mat.NewSymDense(2, []float64{
		suu, suv,
		suv, svv,
	})
	det := mat.Det(normal)
	if math.IsNaN(det) || math.Abs(det) < SingularDeterminant {
		return Plane{}, &Error{Reason: ReasonSingularMatrix, Determinant: det}
	}

	var b mat.VecDense
	if err := b.SolveVec(normal, mat.NewVecDense(2, []float64{suw, svw})); err != nil {
		return Plane{}, &Error{Reason: ReasonSingularMatrix, Determinant: det}
	}

	b1, b2 := b.AtVec(0), b.AtVec(1)
	return Plane{
		B0: means.W - b1*means.U - b2*means.V,
		B1: b1,
		B2: b2,
	}, nil
}

// PlanarFitRotate derives a pitch (beta) and a cross-wind (alpha) angle from
// the fitted plane and applies the yaw-then-pitch composite in a single pass.
// The angles are beta = atan(B1/sqrt(1+B1²+B2²)) and alpha =
// atan(B2/sqrt(1+B2²)); either exceeding MaxRotationAngle fails with
// ReasonExtremeAngle. The period mean of the rotated vertical wind is
// removed afterwards.
func PlanarFitRotate(u, v, w []float64, means Means) (Rotated, error) {
	plane, err := FitPlane(u, v, w, means)
	if err != nil {
		return Rotated{}, err
	}

	beta := math.Atan(plane.B1 / math.Sqrt(1+plane.B1*plane.B1+plane.B2*plane.B2))
	alpha := math.Atan(plane.B2 / math.Sqrt(1+plane.B2*plane.B2))

	if math.Abs(degrees(beta)) > MaxRotationAngle || math.Abs(degrees(alpha)) > MaxRotationAngle {
		return Rotated{}, &Error{
			Reason: ReasonExtremeAngle,
			Alpha:  degrees(alpha),
			Beta:   degrees(beta),
		}
	}

	sinA, cosA := math.Sincos(alpha)
	sinB, cosB := math.Sincos(beta)

	r := [3][3]float64{
		{cosA * cosB, sinA * cosB, sinB},
		{-sinA, cosA, 0},
		{-cosA * sinB, -sinA * sinB, cosB},
	}
	meanW := r[2][0]*means.U + r[2][1]*means.V + r[2][2]*means.W

	n := len(u)
	out := Rotated{
		U:     make([]float64, n),
		V:     make([]float64, n),
		W:     make([]float64, n),
		Alpha: degrees(alpha),
		Beta:  degrees(beta),
		Plane: &plane,
	}

	for i := 0; i < n; i++ {
		out.U[i] = r[0][0]*u[i] + r[0][1]*v[i] + r[0][2]*w[i]
		out.V[i] = r[1][0]*u[i] + r[1][1]*v[i]
		out.W[i] = r[2][0]*u[i] + r[2][1]*v[i] + r[2][2]*w[i] - meanW
	}

	return out, nil
}
