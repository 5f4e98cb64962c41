package gocas

import "sort"

// ============================================================
// Display order
// ============================================================

// orderDegree is the total degree of a term in its symbols; non-numeric
// exponents count as zero.
func orderDegree(n Node) float64 {
	switch v := n.(type) {
	case *Symbol:
		return 1
	case *Power:
		if e, ok := constValue(v.exp); ok && e.IsReal() {
			return orderDegree(v.base) * e.Float64()
		}
	case *Product:
		d := 0.0
		for _, f := range v.factors {
			d += orderDegree(f)
		}
		return d
	case *Sum:
		d := 0.0
		for _, t := range v.terms {
			if td := orderDegree(t); td > d {
				d = td
			}
		}
		return d
	}
	return 0
}

// exponentOf is the exponent of symbol name in a monomial term.
func exponentOf(n Node, name string) float64 {
	switch v := n.(type) {
	case *Symbol:
		if v.name == name {
			return 1
		}
	case *Power:
		if e, ok := constValue(v.exp); ok && e.IsReal() {
			return exponentOf(v.base, name) * e.Float64()
		}
	case *Product:
		d := 0.0
		for _, f := range v.factors {
			d += exponentOf(f, name)
		}
		return d
	case *Sum:
		d := 0.0
		for _, t := range v.terms {
			if td := exponentOf(t, name); td > d {
				d = td
			}
		}
		return d
	}
	return 0
}

// compareTerms orders by total degree descending, then by exponent vector
// over the symbol names, constants last, then by text.
func compareTerms(a, b Node) int {
	da, db := orderDegree(a), orderDegree(b)
	if da != db {
		if da > db {
			return -1
		}
		return 1
	}
	names := Symbols(a, b)
	for _, name := range names {
		ea, eb := exponentOf(a, name), exponentOf(b, name)
		if ea != eb {
			if ea > eb {
				return -1
			}
			return 1
		}
	}
	_, ca := a.(*Const)
	_, cb := b.(*Const)
	if ca != cb {
		if ca {
			return 1
		}
		return -1
	}
	sa, sb := a.String(), b.String()
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func orderTerms(terms []Node) []Node {
	out := append([]Node(nil), terms...)
	sort.SliceStable(out, func(i, j int) bool { return compareTerms(out[i], out[j]) < 0 })
	return out
}

// Leading returns the first term of n in display order.
func Leading(n Node) Node {
	if s, ok := n.(*Sum); ok {
		return s.terms[0]
	}
	return n
}

// LeadingOptions returns every term of maximal total degree, display
// order, for divisions that need to try more than one leading term.
func LeadingOptions(n Node) []Node {
	s, ok := n.(*Sum)
	if !ok {
		return []Node{n}
	}
	top := orderDegree(s.terms[0])
	var out []Node
	for _, t := range s.terms {
		if orderDegree(t) != top {
			break
		}
		out = append(out, t)
	}
	return out
}
