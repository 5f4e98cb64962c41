package gocas

import "strings"

// ============================================================
// Sum — canonical sum of unlike terms
// ============================================================

type Sum struct {
	terms []Node // display order
	d     digest
}

func newSum(terms []Node) *Sum {
	keyed := append([]Node(nil), terms...)
	sortByDigest(keyed)
	return &Sum{terms: orderTerms(terms), d: hashChildren('a', keyed)}
}

// AddOf returns the canonical sum of terms.
func AddOf(terms ...Node) Node { return mergeSum(terms, true) }

// mergeSum groups terms by their unit-coefficient rest and sums the
// coefficients. With rationalize set, terms carrying polynomial
// denominators are combined over their lcm.
func mergeSum(args []Node, rationalize bool) Node {
	type group struct {
		coef Scalar
		rest Node
	}
	groups := map[digest]*group{}
	var order []digest
	constant := ScalarInt(0)

	queue := append([]Node(nil), args...)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if s, ok := t.(*Sum); ok {
			queue = append(queue, s.terms...)
			continue
		}
		c, rest := Canonical(t)
		if isOne(rest) {
			constant = constant.Add(c)
			continue
		}
		k := rest.digest()
		if g, ok := groups[k]; ok {
			g.coef = g.coef.Add(c)
			continue
		}
		groups[k] = &group{coef: c, rest: rest}
		order = append(order, k)
	}

	terms := make([]Node, 0, len(order)+1)
	fractional := false
	for _, k := range order {
		g := groups[k]
		if g.coef.IsZero() {
			continue
		}
		terms = append(terms, scaleUnit(g.coef, g.rest))
		if hasDenominator(g.rest) {
			fractional = true
		}
	}
	if !constant.IsZero() {
		terms = append(terms, C(constant))
	}
	switch len(terms) {
	case 0:
		return zero
	case 1:
		return terms[0]
	}
	if rationalize && fractional {
		if r, ok := combineOverDenominator(terms); ok {
			return r
		}
	}
	return newSum(terms)
}

// hasDenominator reports a polynomial denominator, the only kind a Sum
// rationalizes over.
func hasDenominator(n Node) bool {
	switch v := n.(type) {
	case *Power:
		return polynomialDenominator(v)
	case *Product:
		for _, f := range v.factors {
			if p, ok := f.(*Power); ok && polynomialDenominator(p) {
				return true
			}
		}
	}
	return false
}

func polynomialDenominator(p *Power) bool {
	e, ok := constValue(p.exp)
	return ok && e.IsInteger() && e.Negative() && IsPolynomial(p.base)
}

func combineOverDenominator(terms []Node) (Node, bool) {
	nums := make([]Node, len(terms))
	dens := make([]Node, len(terms))
	for i, t := range terms {
		nums[i], dens[i] = AsRatio(t)
		if !IsPolynomial(dens[i]) {
			return nil, false
		}
	}
	l := LCM(dens...)
	if !IsPolynomial(l) {
		return nil, false
	}
	scaled := make([]Node, len(terms))
	for i := range terms {
		q := exactQuotient(l, dens[i])
		if q == nil {
			return nil, false
		}
		scaled[i] = Expand(MulOf(nums[i], q))
		if hasDenominator(scaled[i]) {
			return nil, false
		}
	}
	num := mergeSum(scaled, false)
	if hasDenominator(num) {
		return nil, false
	}
	return MulOf(num, PowOf(l, negOne)), true
}

// scaleSum multiplies every term by c; like terms stay unlike, so no
// re-merge is needed.
func scaleSum(s *Sum, c Scalar) Node {
	if c.IsZero() {
		return zero
	}
	terms := make([]Node, len(s.terms))
	for i, t := range s.terms {
		terms[i] = scaleTerm(t, c)
	}
	return newSum(terms)
}

// sumContent splits s into its rational content and a primitive Sum with
// integer coefficients and positive leading coefficient.
func sumContent(s *Sum) (Scalar, *Sum) {
	num := new(bigIntAcc)
	den := new(bigIntAcc)
	for _, t := range s.terms {
		c, _ := Canonical(t)
		if !c.IsReal() {
			return ScalarInt(1), s
		}
		num.gcd(c.re)
		den.lcm(c.den)
	}
	content, err := NewScalar(num.value(), bigZero, den.value())
	if err != nil {
		return ScalarInt(1), s
	}
	if lc, _ := Canonical(s.terms[0]); lc.Negative() {
		content = content.Neg()
	}
	if content.IsOne() {
		return content, s
	}
	inv, _ := content.Inv()
	return content, scaleSum(s, inv).(*Sum)
}

func (s *Sum) Terms() []Node         { return append([]Node(nil), s.terms...) }
func (s *Sum) Equal(other Node) bool { return sameNode(s, other) }
func (s *Sum) Hash() uint64          { return hash64(s.d) }
func (s *Sum) Kind() Kind            { return KindSum }
func (s *Sum) digest() digest        { return s.d }

func (s *Sum) String() string {
	var b strings.Builder
	for i, t := range s.terms {
		c, _ := Canonical(t)
		switch {
		case i == 0:
			b.WriteString(t.String())
		case leadsNegative(c):
			b.WriteString(" - ")
			b.WriteString(scaleTerm(t, ScalarInt(-1)).String())
		default:
			b.WriteString(" + ")
			b.WriteString(t.String())
		}
	}
	return b.String()
}

// leadsNegative reports a coefficient that renders with a leading minus:
// negative real or negative imaginary.
func leadsNegative(c Scalar) bool {
	return c.Negative() || (c.Sign() == 0 && c.Im().Sign() < 0)
}

func (s *Sum) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(s.terms))
	for i, t := range s.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
