package gocas

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Scalar — exact Gaussian rational
// ============================================================

// Scalar is an exact number (re + im·i)/den. It is always reduced:
// den > 0 and gcd(re, im, den) == 1. Scalars are immutable; every
// operation allocates a new value.
type Scalar struct {
	re, im, den *big.Int
}

func newScalar(re, im, den *big.Int) Scalar {
	if den.Sign() < 0 {
		re, im, den = new(big.Int).Neg(re), new(big.Int).Neg(im), new(big.Int).Neg(den)
	}
	g := new(big.Int).GCD(nil, nil, re, im)
	g.GCD(nil, nil, g, den)
	if g.Cmp(bigOne) != 0 {
		re = new(big.Int).Quo(re, g)
		im = new(big.Int).Quo(im, g)
		den = new(big.Int).Quo(den, g)
	}
	return Scalar{re: re, im: im, den: den}
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// NewScalar builds (re + im·i)/den. A zero denominator is ErrDivisionByZero.
func NewScalar(re, im, den *big.Int) (Scalar, error) {
	if den.Sign() == 0 {
		return Scalar{}, fmt.Errorf("scalar %s/%s: %w", re, den, ErrDivisionByZero)
	}
	return newScalar(new(big.Int).Set(re), new(big.Int).Set(im), new(big.Int).Set(den)), nil
}

func ScalarInt(n int64) Scalar {
	return Scalar{re: big.NewInt(n), im: new(big.Int), den: big.NewInt(1)}
}

func ScalarFrac(p, q int64) (Scalar, error) {
	return NewScalar(big.NewInt(p), bigZero, big.NewInt(q))
}

func ScalarFromRat(r *big.Rat) Scalar {
	return newScalar(new(big.Int).Set(r.Num()), new(big.Int), new(big.Int).Set(r.Denom()))
}

// ScalarGaussian builds re + im·i from two rationals.
func ScalarGaussian(re, im *big.Rat) Scalar {
	den := new(big.Int).Mul(re.Denom(), im.Denom())
	a := new(big.Int).Mul(re.Num(), im.Denom())
	b := new(big.Int).Mul(im.Num(), re.Denom())
	return newScalar(a, b, den)
}

// ScalarFromFloat converts an approximation to the nearest rational with
// twelve significant digits. Used only by numeric fallbacks.
func ScalarFromFloat(f float64) Scalar {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', 12, 64))
	if !ok {
		return ScalarInt(0)
	}
	return ScalarFromRat(r)
}

func scalarFromComplex(z complex128) Scalar {
	re, okRe := new(big.Rat).SetString(strconv.FormatFloat(real(z), 'g', 12, 64))
	im, okIm := new(big.Rat).SetString(strconv.FormatFloat(imag(z), 'g', 12, 64))
	if !okRe || !okIm {
		return ScalarInt(0)
	}
	return ScalarGaussian(re, im)
}

// ParseScalar accepts "3", "-3/4", "0.25" and Gaussian forms such as
// "1/2+3i", "-2i" or "i".
func ParseScalar(s string) (Scalar, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return Scalar{}, fmt.Errorf("%w: empty scalar", ErrMalformedInput)
	}
	if !strings.HasSuffix(s, "i") {
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return Scalar{}, fmt.Errorf("%w: invalid scalar %q", ErrMalformedInput, s)
		}
		return ScalarFromRat(r), nil
	}
	body := strings.TrimSuffix(strings.TrimSuffix(s, "i"), "*")
	split := -1
	for i := len(body) - 1; i > 0; i-- {
		if (body[i] == '+' || body[i] == '-') && body[i-1] != 'e' && body[i-1] != 'E' {
			split = i
			break
		}
	}
	reText, imText := "0", body
	if split > 0 {
		reText, imText = body[:split], body[split:]
	}
	switch imText {
	case "", "+":
		imText = "1"
	case "-":
		imText = "-1"
	}
	re, ok := new(big.Rat).SetString(reText)
	if !ok {
		return Scalar{}, fmt.Errorf("%w: invalid real part %q", ErrMalformedInput, reText)
	}
	im, ok := new(big.Rat).SetString(imText)
	if !ok {
		return Scalar{}, fmt.Errorf("%w: invalid imaginary part %q", ErrMalformedInput, imText)
	}
	return ScalarGaussian(re, im), nil
}

func (a Scalar) IsZero() bool { return a.re.Sign() == 0 && a.im.Sign() == 0 }
func (a Scalar) IsReal() bool { return a.im.Sign() == 0 }
func (a Scalar) IsOne() bool {
	return a.im.Sign() == 0 && a.den.Cmp(bigOne) == 0 && a.re.Cmp(bigOne) == 0
}
func (a Scalar) IsInteger() bool { return a.im.Sign() == 0 && a.den.Cmp(bigOne) == 0 }

// Negative reports a real value below zero. Gaussian values are never negative.
func (a Scalar) Negative() bool { return a.im.Sign() == 0 && a.re.Sign() < 0 }

// Sign is the sign of the real part.
func (a Scalar) Sign() int { return a.re.Sign() }

func (a Scalar) Re() Scalar { return newScalar(new(big.Int).Set(a.re), new(big.Int), new(big.Int).Set(a.den)) }
func (a Scalar) Im() Scalar { return newScalar(new(big.Int).Set(a.im), new(big.Int), new(big.Int).Set(a.den)) }

// Num returns the real numerator; Den the denominator.
func (a Scalar) Num() *big.Int { return new(big.Int).Set(a.re) }
func (a Scalar) Den() *big.Int { return new(big.Int).Set(a.den) }

// Int64 returns the value when it is an integer that fits.
func (a Scalar) Int64() (int64, bool) {
	if !a.IsInteger() || !a.re.IsInt64() {
		return 0, false
	}
	return a.re.Int64(), true
}

// Rat returns the real value; ok is false for Gaussian values.
func (a Scalar) Rat() (*big.Rat, bool) {
	if !a.IsReal() {
		return nil, false
	}
	return new(big.Rat).SetFrac(a.re, a.den), true
}

func (a Scalar) Equal(b Scalar) bool {
	return a.re.Cmp(b.re) == 0 && a.im.Cmp(b.im) == 0 && a.den.Cmp(b.den) == 0
}

func (a Scalar) Add(b Scalar) Scalar {
	re := new(big.Int).Mul(a.re, b.den)
	re.Add(re, new(big.Int).Mul(b.re, a.den))
	im := new(big.Int).Mul(a.im, b.den)
	im.Add(im, new(big.Int).Mul(b.im, a.den))
	return newScalar(re, im, new(big.Int).Mul(a.den, b.den))
}

func (a Scalar) Neg() Scalar {
	return Scalar{re: new(big.Int).Neg(a.re), im: new(big.Int).Neg(a.im), den: a.den}
}

func (a Scalar) Sub(b Scalar) Scalar { return a.Add(b.Neg()) }

func (a Scalar) Mul(b Scalar) Scalar {
	re := new(big.Int).Mul(a.re, b.re)
	re.Sub(re, new(big.Int).Mul(a.im, b.im))
	im := new(big.Int).Mul(a.re, b.im)
	im.Add(im, new(big.Int).Mul(a.im, b.re))
	return newScalar(re, im, new(big.Int).Mul(a.den, b.den))
}

func (a Scalar) Conj() Scalar {
	return Scalar{re: a.re, im: new(big.Int).Neg(a.im), den: a.den}
}

// Inv returns 1/a, multiplying through by the conjugate when a is Gaussian.
func (a Scalar) Inv() (Scalar, error) {
	if a.IsZero() {
		return Scalar{}, fmt.Errorf("1/%s: %w", a, ErrDivisionByZero)
	}
	norm := new(big.Int).Mul(a.re, a.re)
	norm.Add(norm, new(big.Int).Mul(a.im, a.im))
	re := new(big.Int).Mul(a.den, a.re)
	im := new(big.Int).Mul(a.den, new(big.Int).Neg(a.im))
	return newScalar(re, im, norm), nil
}

func (a Scalar) Div(b Scalar) (Scalar, error) {
	inv, err := b.Inv()
	if err != nil {
		return Scalar{}, fmt.Errorf("%s/%s: %w", a, b, ErrDivisionByZero)
	}
	return a.Mul(inv), nil
}

// Pow raises a to an integer power; negative powers go through the reciprocal.
func (a Scalar) Pow(n int64) (Scalar, error) {
	if n < 0 {
		inv, err := a.Inv()
		if err != nil {
			return Scalar{}, err
		}
		return inv.Pow(-n)
	}
	if a.IsReal() {
		re := new(big.Int).Exp(a.re, big.NewInt(n), nil)
		den := new(big.Int).Exp(a.den, big.NewInt(n), nil)
		return Scalar{re: re, im: new(big.Int), den: den}, nil
	}
	result, base := ScalarInt(1), a
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result, nil
}

// Abs is exact for real values and for Gaussian values whose norm is a
// perfect square; anything else is a DomainError.
func (a Scalar) Abs() (Scalar, error) {
	if a.IsReal() {
		return Scalar{re: new(big.Int).Abs(a.re), im: new(big.Int), den: a.den}, nil
	}
	norm := new(big.Int).Mul(a.re, a.re)
	norm.Add(norm, new(big.Int).Mul(a.im, a.im))
	root := new(big.Int).Sqrt(norm)
	if new(big.Int).Mul(root, root).Cmp(norm) != 0 {
		return Scalar{}, &DomainError{Op: "abs", Reason: fmt.Sprintf("|%s| is irrational", a)}
	}
	return newScalar(root, new(big.Int), new(big.Int).Set(a.den)), nil
}

// Cmp orders two real Scalars.
func (a Scalar) Cmp(b Scalar) (int, error) {
	if !a.IsReal() || !b.IsReal() {
		return 0, &DomainError{Op: "compare", Reason: fmt.Sprintf("%s and %s are not both real", a, b)}
	}
	l := new(big.Int).Mul(a.re, b.den)
	r := new(big.Int).Mul(b.re, a.den)
	return l.Cmp(r), nil
}

func (a Scalar) Complex128() complex128 {
	re, _ := new(big.Rat).SetFrac(a.re, a.den).Float64()
	im, _ := new(big.Rat).SetFrac(a.im, a.den).Float64()
	return complex(re, im)
}

func (a Scalar) Float64() float64 {
	f, _ := new(big.Rat).SetFrac(a.re, a.den).Float64()
	return f
}

func (a Scalar) String() string {
	re := new(big.Rat).SetFrac(a.re, a.den)
	if a.IsReal() {
		return re.RatString()
	}
	im := new(big.Rat).SetFrac(a.im, a.den)
	imText := imagString(im)
	if re.Sign() == 0 {
		return imText
	}
	if im.Sign() < 0 {
		return re.RatString() + " - " + strings.TrimPrefix(imText, "-")
	}
	return re.RatString() + " + " + imText
}

func imagString(im *big.Rat) string {
	switch {
	case im.Cmp(big.NewRat(1, 1)) == 0:
		return "i"
	case im.Cmp(big.NewRat(-1, 1)) == 0:
		return "-i"
	case im.IsInt():
		return im.RatString() + "i"
	}
	return im.RatString() + "*i"
}

func (a Scalar) mustDiv(b Scalar) Scalar {
	q, err := a.Div(b)
	if err != nil {
		raise(err)
	}
	return q
}

func (a Scalar) mustPow(n int64) Scalar {
	p, err := a.Pow(n)
	if err != nil {
		raise(err)
	}
	return p
}

func lcmInt(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	g := new(big.Int).GCD(nil, nil, a, b)
	l := new(big.Int).Quo(new(big.Int).Mul(a, b), g)
	return l.Abs(l)
}

func isFinite(z complex128) bool {
	return !math.IsNaN(real(z)) && !math.IsNaN(imag(z)) && !math.IsInf(real(z), 0) && !math.IsInf(imag(z), 0)
}
