package gocas

import (
	"math"
	"math/cmplx"
	"strings"
)

// ============================================================
// Relations and statements
// ============================================================

type Relation int

const (
	RelEq Relation = iota
	RelNe
	RelLt
	RelLe
	RelGt
	RelGe
	RelIn
)

func (r Relation) String() string {
	switch r {
	case RelEq:
		return "="
	case RelNe:
		return "≠"
	case RelLt:
		return "<"
	case RelLe:
		return "≤"
	case RelGt:
		return ">"
	case RelGe:
		return "≥"
	case RelIn:
		return "∈"
	}
	return "?"
}

// ParseRelation accepts the printed form and the ASCII spellings.
func ParseRelation(s string) (Relation, bool) {
	switch s {
	case "=", "==", "eq":
		return RelEq, true
	case "≠", "!=", "ne":
		return RelNe, true
	case "<", "lt":
		return RelLt, true
	case "≤", "<=", "le":
		return RelLe, true
	case ">", "gt":
		return RelGt, true
	case "≥", ">=", "ge":
		return RelGe, true
	case "∈", "in":
		return RelIn, true
	}
	return 0, false
}

// Reverse is the relation seen from the other side: a < b iff b > a.
func (r Relation) Reverse() Relation {
	switch r {
	case RelLt:
		return RelGt
	case RelLe:
		return RelGe
	case RelGt:
		return RelLt
	case RelGe:
		return RelLe
	}
	return r
}

func (r Relation) IsInequality() bool { return r >= RelLt && r <= RelGe }

// holds reports whether the relation is satisfied when left - right has
// the given sign.
func (r Relation) holds(sign int) bool {
	switch r {
	case RelEq:
		return sign == 0
	case RelNe:
		return sign != 0
	case RelLt:
		return sign < 0
	case RelLe:
		return sign <= 0
	case RelGt:
		return sign > 0
	case RelGe:
		return sign >= 0
	}
	return false
}

// Statement is a Comparison or a *System.
type Statement interface {
	String() string
	statement()
	digest() digest
}

// Comparison relates two nodes, or a node and a Set for RelIn.
type Comparison struct {
	Left, Right Node
	Rel         Relation
	Set         Set
}

func Eq(l, r Node) Comparison { return Comparison{Left: l, Right: r, Rel: RelEq} }
func Ne(l, r Node) Comparison { return Comparison{Left: l, Right: r, Rel: RelNe} }
func Lt(l, r Node) Comparison { return Comparison{Left: l, Right: r, Rel: RelLt} }
func Le(l, r Node) Comparison { return Comparison{Left: l, Right: r, Rel: RelLe} }
func Gt(l, r Node) Comparison { return Comparison{Left: l, Right: r, Rel: RelGt} }
func Ge(l, r Node) Comparison { return Comparison{Left: l, Right: r, Rel: RelGe} }

// Member is x ∈ s.
func Member(x Node, s Set) Comparison { return Comparison{Left: x, Rel: RelIn, Set: s} }

func (c Comparison) statement() {}

func (c Comparison) String() string {
	if c.Rel == RelIn {
		return c.Left.String() + " ∈ " + c.Set.String()
	}
	return c.Left.String() + " " + c.Rel.String() + " " + c.Right.String()
}

func (c Comparison) digest() digest {
	ld := c.Left.digest()
	if c.Rel == RelIn {
		return hashParts('q', ld[:], []byte{byte(c.Rel)}, []byte(c.Set.String()))
	}
	rd := c.Right.digest()
	return hashParts('q', ld[:], []byte{byte(c.Rel)}, rd[:])
}

// Equal compares structurally.
func (c Comparison) Equal(o Comparison) bool { return c.digest() == o.digest() }

func (c Comparison) Add(n Node) Comparison {
	return Comparison{Left: AddOf(c.Left, n), Right: AddOf(c.Right, n), Rel: c.Rel}
}

func (c Comparison) Sub(n Node) Comparison { return c.Add(Neg(n)) }

// Mul multiplies both sides by n. Inequalities flip for negative n and
// require n of known sign.
func (c Comparison) Mul(n Node) (out Comparison, err error) {
	defer recoverKernel(&err)
	if c.Rel.IsInequality() {
		s, ok := signOf(n)
		if !ok {
			return c, &DomainError{Op: "multiply inequality", Reason: "sign of " + n.String() + " is unknown"}
		}
		if s == 0 {
			return c, &DomainError{Op: "multiply inequality", Reason: "factor is zero"}
		}
		out = Comparison{Left: MulOf(c.Left, n), Right: MulOf(c.Right, n), Rel: c.Rel}
		if s < 0 {
			out.Rel = out.Rel.Reverse()
		}
		return out, nil
	}
	if isZero(n) {
		return c, &DomainError{Op: "multiply equation", Reason: "factor is zero"}
	}
	return Comparison{Left: MulOf(c.Left, n), Right: MulOf(c.Right, n), Rel: c.Rel}, nil
}

// Div divides both sides by n.
func (c Comparison) Div(n Node) (Comparison, error) {
	if isZero(n) {
		return c, ErrDivisionByZero
	}
	inv, err := Catch(func() Node { return PowOf(n, negOne) })
	if err != nil {
		return c, err
	}
	return c.Mul(inv)
}

// Pow raises both sides to e. An even root of an equation splits into the
// two signs of the right side.
func (c Comparison) Pow(e Node) (out Statement, err error) {
	defer recoverKernel(&err)
	if c.Rel != RelEq {
		return c, &DomainError{Op: "power", Reason: "only equations can be raised to a power"}
	}
	l, r := PowOf(c.Left, e), PowOf(c.Right, e)
	if v, ok := constValue(e); ok && v.IsReal() && !v.IsInteger() && v.den.Bit(0) == 0 {
		return NewSystem(Eq(l, r), Eq(l, Neg(r))), nil
	}
	return Eq(l, r), nil
}

// Raise raises both sides of an equation to the integer power k. It can
// introduce extraneous solutions, which the solver filters.
func (c Comparison) Raise(k int64) Comparison {
	return Comparison{Left: Expand(PowOf(c.Left, N(k))), Right: Expand(PowOf(c.Right, N(k))), Rel: c.Rel}
}

func (c Comparison) Reversed() Comparison {
	return Comparison{Left: c.Right, Right: c.Left, Rel: c.Rel.Reverse(), Set: c.Set}
}

// Normalize moves everything to the left: left - right rel 0.
func (c Comparison) Normalize() Comparison {
	return Comparison{Left: Expand(Sub(c.Left, c.Right)), Right: zero, Rel: c.Rel}
}

func (c Comparison) Expand() Comparison {
	if c.Rel == RelIn {
		return Comparison{Left: Expand(c.Left), Rel: RelIn, Set: c.Set}
	}
	return Comparison{Left: Expand(c.Left), Right: Expand(c.Right), Rel: c.Rel}
}

// Holds evaluates a comparison without unknowns. ok is false when the
// sides are not comparable.
func (c Comparison) Holds() (holds, ok bool) {
	if c.Rel == RelIn {
		if c.Set == nil {
			return false, false
		}
		return c.Set.Contains(c.Left), true
	}
	if c.Rel == RelEq || c.Rel == RelNe {
		d := Expand(Sub(c.Left, c.Right))
		if v, isConst := constValue(d); isConst {
			return c.Rel.holds(boolSign(!v.IsZero())), true
		}
		x, ok := Approx(d)
		if !ok {
			return false, false
		}
		return c.Rel.holds(boolSign(cmplx.Abs(x) > 1e-12*math.Max(1, magnitude(c.Left, c.Right)))), true
	}
	s, ok := signOf(Sub(c.Left, c.Right))
	if !ok {
		return false, false
	}
	return c.Rel.holds(s), true
}

func boolSign(nonzero bool) int {
	if nonzero {
		return 1
	}
	return 0
}

func magnitude(nodes ...Node) float64 {
	m := 0.0
	for _, n := range nodes {
		if x, ok := Approx(n); ok {
			m = math.Max(m, cmplx.Abs(x))
		}
	}
	return m
}

// Contains reports whether the unknown occurs on either side.
func (c Comparison) Contains(name string) bool {
	if Contains(c.Left, name) {
		return true
	}
	return c.Right != nil && Contains(c.Right, name)
}

// signOf returns the sign of a symbol-free real node, exactly when
// possible and numerically otherwise.
func signOf(n Node) (int, bool) {
	n = Expand(n)
	if v, ok := constValue(n); ok {
		if !v.IsReal() {
			return 0, false
		}
		return v.Sign(), true
	}
	x, ok := Approx(n)
	if !ok || math.Abs(imag(x)) > 1e-12*math.Max(1, math.Abs(real(x))) {
		return 0, false
	}
	switch {
	case real(x) > 0:
		return 1, true
	case real(x) < 0:
		return -1, true
	}
	return 0, true
}

// compareNodes orders two real symbol-free nodes.
func compareNodes(a, b Node) (int, error) {
	s, ok := signOf(Sub(a, b))
	if !ok {
		return 0, &DomainError{Op: "compare", Reason: a.String() + " and " + b.String() + " are not ordered reals"}
	}
	return s, nil
}

// ============================================================
// System
// ============================================================

// System is an ordered, de-duplicated set of statements: simultaneous
// equations, or alternative solution branches.
type System struct {
	members []Statement
	d       digest
}

func NewSystem(members ...Statement) *System {
	seen := map[digest]bool{}
	var out []Statement
	for _, m := range members {
		if m == nil || seen[m.digest()] {
			continue
		}
		seen[m.digest()] = true
		out = append(out, m)
	}
	keys := make([][]byte, len(out))
	for i, m := range out {
		d := m.digest()
		keys[i] = d[:]
	}
	return &System{members: out, d: hashParts('y', keys...)}
}

func (s *System) statement()           {}
func (s *System) digest() digest       { return s.d }
func (s *System) Len() int             { return len(s.members) }
func (s *System) Members() []Statement { return append([]Statement(nil), s.members...) }

func (s *System) String() string {
	if len(s.members) == 0 {
		return "∅"
	}
	parts := make([]string, len(s.members))
	for i, m := range s.members {
		parts[i] = m.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Lookup returns the value bound to name by an equation of the form
// name = value.
func (s *System) Lookup(name string) (Node, bool) {
	for _, m := range s.members {
		c, ok := m.(Comparison)
		if !ok || c.Rel != RelEq {
			continue
		}
		if sym, ok := c.Left.(*Symbol); ok && sym.name == name {
			return c.Right, true
		}
	}
	return nil, false
}
