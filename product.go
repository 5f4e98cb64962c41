package gocas

import (
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Product — canonical product of unlike bases
// ============================================================

type Product struct {
	factors []Node // coefficient first, then display order
	d       digest
}

func newProduct(factors []Node) *Product {
	keyed := append([]Node(nil), factors...)
	sortByDigest(keyed)
	return &Product{factors: orderFactors(factors), d: hashChildren('m', keyed)}
}

// MulOf returns the canonical product of factors.
func MulOf(factors ...Node) Node { return mergeProduct(factors, 0) }

// maxPairRewrites bounds the shared-divisor rewriting of Sum factors.
const maxPairRewrites = 16

func mergeProduct(args []Node, depth int) Node {
	coef := ScalarInt(1)
	var bases []Node
	exps := map[digest][]Node{}
	var radicals []*Power
	add := func(base, exp Node) {
		k := base.digest()
		if _, ok := exps[k]; !ok {
			bases = append(bases, base)
		}
		exps[k] = append(exps[k], exp)
	}

	queue := append([]Node(nil), args...)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		switch v := f.(type) {
		case *Const:
			coef = coef.Mul(v.v)
		case *Product:
			queue = append(queue, v.factors...)
		case *Sum:
			c, rest := sumContent(v)
			coef = coef.Mul(c)
			add(rest, one)
		case *Power:
			if positiveRadical(v) {
				radicals = append(radicals, v)
			} else {
				add(v.base, v.exp)
			}
		default:
			add(f, one)
		}
	}
	if coef.IsZero() {
		return zero
	}

	var out []Node
	push := func(x Node) {
		switch v := x.(type) {
		case *Const:
			coef = coef.Mul(v.v)
		case *Power:
			if positiveRadical(v) {
				radicals = append(radicals, v)
				return
			}
			out = append(out, v)
		default:
			out = append(out, x)
		}
	}
	for _, b := range bases {
		es := exps[b.digest()]
		e := es[0]
		if len(es) > 1 {
			e = AddOf(es...)
		}
		pw := PowOf(b, e)
		if p, ok := pw.(*Product); ok {
			for _, x := range p.factors {
				push(x)
			}
			continue
		}
		push(pw)
	}
	if len(radicals) > 0 {
		c, r := combineRadicals(radicals)
		coef = coef.Mul(c)
		if r != nil {
			out = append(out, r)
		}
	}
	if coef.IsZero() {
		return zero
	}
	if depth < maxPairRewrites {
		if res, ok := cancelSharedDivisors(coef, out, depth); ok {
			return res
		}
	}

	switch len(out) {
	case 0:
		return C(coef)
	case 1:
		if coef.IsOne() {
			return out[0]
		}
		if s, ok := out[0].(*Sum); ok {
			return scaleSum(s, coef)
		}
	}
	if !coef.IsOne() {
		out = append([]Node{C(coef)}, out...)
	}
	return newProduct(out)
}

func positiveRadical(p *Power) bool {
	b, ok := constValue(p.base)
	if !ok || !b.IsReal() || b.Sign() <= 0 {
		return false
	}
	e, ok := constValue(p.exp)
	return ok && e.IsReal() && !e.IsInteger()
}

// combineRadicals folds positive numeric radicals into one radical over the
// lcm of their roots.
func combineRadicals(rs []*Power) (Scalar, Node) {
	if len(rs) == 1 {
		return ScalarInt(1), rs[0]
	}
	l := big.NewInt(1)
	for _, r := range rs {
		e, _ := constValue(r.exp)
		l = lcmInt(l, e.den)
	}
	if !l.IsInt64() {
		return ScalarInt(1), newProduct(radicalNodes(rs))
	}
	value := ScalarInt(1)
	for _, r := range rs {
		b, _ := constValue(r.base)
		e, _ := constValue(r.exp)
		k := new(big.Int).Quo(l, e.den)
		k.Mul(k, e.re)
		if !k.IsInt64() {
			return ScalarInt(1), newProduct(radicalNodes(rs))
		}
		value = value.Mul(b.mustPow(k.Int64()))
	}
	coef, radicand, root := SimplifyRadical(value, int(l.Int64()), ScalarInt(1))
	if root == 1 || radicand.IsOne() {
		return coef.Mul(radicand), nil
	}
	return coef, newPower(C(radicand), F(1, int64(root)))
}

func radicalNodes(rs []*Power) []Node {
	out := make([]Node, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

// cancelSharedDivisors rewrites two Sum factors that share a polynomial
// divisor g as g^(e1+e2)·(s1/g)^e1·(s2/g)^e2.
func cancelSharedDivisors(coef Scalar, out []Node, depth int) (Node, bool) {
	type sumFactor struct {
		idx  int
		base *Sum
		exp  int64
	}
	var sums []sumFactor
	for i, f := range out {
		switch v := f.(type) {
		case *Sum:
			if IsPolynomial(v) {
				sums = append(sums, sumFactor{idx: i, base: v, exp: 1})
			}
		case *Power:
			s, ok := v.base.(*Sum)
			if !ok || !IsPolynomial(s) {
				continue
			}
			if e, ok := constValue(v.exp); ok {
				if n, ok := e.Int64(); ok {
					sums = append(sums, sumFactor{idx: i, base: s, exp: n})
				}
			}
		}
	}
	for i := 0; i < len(sums); i++ {
		for j := i + 1; j < len(sums); j++ {
			a, b := sums[i], sums[j]
			g := GCD(a.base, b.base)
			if d, ok := Degree(g); !ok || d == 0 {
				continue
			}
			qa, qb := exactQuotient(a.base, g), exactQuotient(b.base, g)
			if qa == nil || qb == nil {
				continue
			}
			next := []Node{C(coef), PowOf(g, N(a.exp+b.exp)), PowOf(qa, N(a.exp)), PowOf(qb, N(b.exp))}
			for k, f := range out {
				if k != a.idx && k != b.idx {
					next = append(next, f)
				}
			}
			return mergeProduct(next, depth+1), true
		}
	}
	return nil, false
}

func (p *Product) Factors() []Node       { return append([]Node(nil), p.factors...) }
func (p *Product) Equal(other Node) bool { return sameNode(p, other) }
func (p *Product) Hash() uint64          { return hash64(p.d) }
func (p *Product) Kind() Kind            { return KindProduct }
func (p *Product) digest() digest        { return p.d }

// Coefficient is the leading constant factor, 1 when there is none.
func (p *Product) Coefficient() Scalar {
	if c, ok := p.factors[0].(*Const); ok {
		return c.v
	}
	return ScalarInt(1)
}

func (p *Product) String() string {
	var num, den []string
	coef := ""
	for _, f := range p.factors {
		if c, ok := f.(*Const); ok {
			coef = constFactorString(c.v)
			continue
		}
		if pw, ok := f.(*Power); ok && isNegativeExp(pw.exp) {
			den = append(den, factorString(PowOf(pw.base, Neg(pw.exp))))
			continue
		}
		num = append(num, factorString(f))
	}
	var b strings.Builder
	switch {
	case len(num) == 0 && coef == "":
		b.WriteString("1")
	case len(num) == 0:
		b.WriteString(coef)
	default:
		if coef == "-1" {
			b.WriteString("-")
		} else if coef != "" {
			b.WriteString(coef + "*")
		}
		b.WriteString(strings.Join(num, "*"))
	}
	if len(den) == 1 {
		b.WriteString("/" + den[0])
	} else if len(den) > 1 {
		b.WriteString("/(" + strings.Join(den, "*") + ")")
	}
	return b.String()
}

func constFactorString(v Scalar) string {
	if v.IsReal() {
		return v.String()
	}
	return "(" + v.String() + ")"
}

func factorString(n Node) string {
	switch n.(type) {
	case *Sum, *Product:
		return "(" + n.String() + ")"
	}
	return n.String()
}

func (p *Product) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(p.factors))
	for i, f := range p.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}

// orderFactors puts the coefficient first, then radicals, symbols and
// powers of symbols, then everything else, ties broken by text.
func orderFactors(factors []Node) []Node {
	out := append([]Node(nil), factors...)
	rank := func(n Node) int {
		switch v := n.(type) {
		case *Const:
			return 0
		case *Symbol:
			return 2
		case *Power:
			switch v.base.(type) {
			case *Const:
				return 1
			case *Symbol:
				return 2
			}
			return 3
		}
		return 4
	}
	keys := make([]string, len(out))
	for i, f := range out {
		keys[i] = f.String()
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := rank(out[idx[a]]), rank(out[idx[b]])
		if ra != rb {
			return ra < rb
		}
		return keys[idx[a]] < keys[idx[b]]
	})
	sorted := make([]Node, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}
