package gocas

import "strings"

// ============================================================
// Power — base^exp
// ============================================================

type Power struct {
	base, exp Node
	d         digest
}

func newPower(base, exp Node) *Power {
	bd, ed := base.digest(), exp.digest()
	return &Power{base: base, exp: exp, d: hashParts('p', bd[:], ed[:])}
}

// maxConstPower bounds exact evaluation of integer powers of constants;
// larger ones stay unevaluated.
const maxConstPower = 4096

// PowOf returns the canonical base^exp.
func PowOf(base, exp Node) Node {
	switch {
	case isZero(exp):
		return one
	case isOne(exp):
		return base
	case isOne(base):
		return one
	}
	if p, ok := base.(*Power); ok {
		return PowOf(p.base, MulOf(p.exp, exp))
	}
	e, ok := constValue(exp)
	if !ok || !e.IsReal() {
		if isZero(base) {
			return zero
		}
		return newPower(base, exp)
	}
	switch b := base.(type) {
	case *Const:
		return powConst(b.v, e)
	case *Product:
		fs := make([]Node, len(b.factors))
		for i, f := range b.factors {
			fs[i] = PowOf(f, exp)
		}
		return MulOf(fs...)
	case *Sum:
		if !e.IsInteger() || e.Negative() {
			c, rest := sumContent(b)
			if !c.IsOne() {
				return MulOf(powConst(c, e), newPower(rest, exp))
			}
		}
	}
	return newPower(base, exp)
}

// powConst evaluates b^e for a real rational e, keeping irrational parts
// as a simplified radical.
func powConst(b, e Scalar) Node {
	if b.IsZero() {
		if e.Negative() {
			raise(ErrDivisionByZero)
		}
		return zero
	}
	if n, ok := e.Int64(); ok {
		if n > maxConstPower || n < -maxConstPower {
			return newPower(C(b), C(e))
		}
		return C(b.mustPow(n))
	}
	if !e.IsInteger() && e.den.IsInt64() && e.re.IsInt64() && e.den.Int64() <= maxConstPower {
		p, q := e.re.Int64(), e.den.Int64()
		if p > maxConstPower || p < -maxConstPower {
			return newPower(C(b), C(e))
		}
		v := b.mustPow(p)
		coef, rad, r := SimplifyRadical(v, int(q), ScalarInt(1))
		if r == 1 || rad.IsOne() {
			return C(coef.Mul(rad))
		}
		radical := newPower(C(rad), F(1, int64(r)))
		if coef.IsOne() {
			return radical
		}
		return newProduct([]Node{C(coef), radical})
	}
	return newPower(C(b), C(e))
}

func Sqrt(n Node) Node { return PowOf(n, half) }

// Root returns the principal nth root of n.
func Root(n Node, k int64) Node { return PowOf(n, F(1, k)) }

func (p *Power) Base() Node            { return p.base }
func (p *Power) Exp() Node             { return p.exp }
func (p *Power) Equal(other Node) bool { return sameNode(p, other) }
func (p *Power) Hash() uint64          { return hash64(p.d) }
func (p *Power) Kind() Kind            { return KindPower }
func (p *Power) digest() digest        { return p.d }

func (p *Power) String() string {
	if isNegativeExp(p.exp) {
		return "1/" + factorString(PowOf(p.base, Neg(p.exp)))
	}
	var b strings.Builder
	switch v := p.base.(type) {
	case *Symbol:
		b.WriteString(v.name)
	case *Const:
		if v.v.IsReal() && v.v.IsInteger() && !v.v.Negative() {
			b.WriteString(v.String())
		} else {
			b.WriteString("(" + v.String() + ")")
		}
	default:
		b.WriteString("(" + p.base.String() + ")")
	}
	b.WriteString("^")
	switch v := p.exp.(type) {
	case *Symbol:
		b.WriteString(v.name)
	case *Const:
		if v.v.IsInteger() && !v.v.Negative() {
			b.WriteString(v.String())
		} else {
			b.WriteString("(" + v.String() + ")")
		}
	default:
		b.WriteString("(" + p.exp.String() + ")")
	}
	return b.String()
}

func (p *Power) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
