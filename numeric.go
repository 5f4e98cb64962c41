package gocas

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Numeric root estimation
// ============================================================

const (
	newtonIterations = 50
	newtonTolerance  = 1e-14
)

// NumericRoots estimates every complex root of a numeric polynomial from
// the eigenvalues of its companion matrix, then polishes each by Newton's
// method on the original coefficients. Real roots come first, ascending.
func NumericRoots(coeffs []Scalar) ([]complex128, error) {
	p := trimPoly(coeffs)
	if polyDegree(p) < 1 {
		return nil, nil
	}
	for _, c := range p {
		if !c.IsReal() {
			return nil, &DomainError{Op: "numeric roots", Reason: "complex coefficients"}
		}
	}
	n := len(p) - 1
	lead := p[0].Float64()
	if n == 1 {
		return []complex128{complex(-p[1].Float64()/lead, 0)}, nil
	}
	companion := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		companion.Set(0, j, -p[j+1].Float64()/lead)
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil, fmt.Errorf("companion eigenvalues of degree %d: %w", n, ErrUnsolvable)
	}
	fs := make([]complex128, len(p))
	for i, c := range p {
		fs[i] = complex(c.Float64(), 0)
	}
	roots := eig.Values(nil)
	for i, z := range roots {
		roots[i] = cleanRoot(polish(fs, z))
	}
	sort.SliceStable(roots, func(i, j int) bool {
		ri, rj := imag(roots[i]) == 0, imag(roots[j]) == 0
		if ri != rj {
			return ri
		}
		if real(roots[i]) != real(roots[j]) {
			return real(roots[i]) < real(roots[j])
		}
		return imag(roots[i]) < imag(roots[j])
	})
	return roots, nil
}

func horner(p []complex128, z complex128) (v, dv complex128) {
	for _, c := range p {
		dv = dv*z + v
		v = v*z + c
	}
	return v, dv
}

func polish(p []complex128, z complex128) complex128 {
	for i := 0; i < newtonIterations; i++ {
		v, dv := horner(p, z)
		if cmplx.Abs(dv) < 1e-300 {
			break
		}
		step := v / dv
		z -= step
		if cmplx.Abs(step) <= newtonTolerance*math.Max(1, cmplx.Abs(z)) {
			break
		}
	}
	return z
}

// cleanRoot drops round-off imaginary parts.
func cleanRoot(z complex128) complex128 {
	if math.Abs(imag(z)) <= 1e-10*math.Max(1, math.Abs(real(z))) {
		return complex(real(z), 0)
	}
	return z
}
