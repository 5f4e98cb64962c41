package gocas

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// Systems of equations
// ============================================================

// assignment binds unknowns to values free of every other unknown.
type assignment map[string]Node

func (a assignment) clone() assignment {
	out := make(assignment, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	return out
}

// flattenSystem collects the equations of sys and its nested systems.
func flattenSystem(sys *System) ([]Comparison, error) {
	var out []Comparison
	for _, m := range sys.members {
		switch v := m.(type) {
		case Comparison:
			if v.Rel != RelEq {
				return nil, fmt.Errorf("%w: systems take equations only, got %s", ErrMalformedInput, v)
			}
			out = append(out, v)
		case *System:
			inner, err := flattenSystem(v)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		}
	}
	return out, nil
}

// solveSystem eliminates the unknowns one at a time, cheapest first, and
// falls back to a lex Gröbner basis when substitution gets stuck.
func (s *Solver) solveSystem(unknowns []string, sys *System) (Statement, error) {
	eqs, err := flattenSystem(sys)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, u := range unknowns {
		if seen[u] {
			return nil, fmt.Errorf("%w: unknown %s listed twice", ErrMalformedInput, u)
		}
		seen[u] = true
		found := false
		for _, c := range eqs {
			if c.Contains(u) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown %s does not occur in the system", ErrMalformedInput, u)
		}
	}

	fs := make([]Node, 0, len(eqs))
	for _, c := range eqs {
		fs = append(fs, c.Normalize().Left)
	}
	branches, err := s.eliminate(fs, unknowns, 0)
	if err != nil && !errors.Is(err, errInconsistent) {
		s.log.Debug("substitution failed, trying gröbner basis", "error", err)
		gb, gerr := s.groebnerSolve(fs, unknowns)
		if gerr != nil {
			s.log.Debug("gröbner basis failed", "error", gerr)
			return nil, err
		}
		branches, err = gb, nil
	}
	if errors.Is(err, errInconsistent) {
		branches = nil
	}

	var kept []assignment
	keys := map[digest]bool{}
	for _, b := range branches {
		if !s.satisfies(eqs, b) {
			s.record("reject extraneous", nil, b.system(unknowns))
			continue
		}
		k := tupleKey(b.values(unknowns))
		if keys[k] {
			continue
		}
		keys[k] = true
		kept = append(kept, b)
	}
	sortBranches(kept, unknowns)
	switch len(kept) {
	case 0:
		return NewSystem(), nil
	case 1:
		return kept[0].system(unknowns), nil
	}
	out := make([]Statement, len(kept))
	for i, b := range kept {
		out[i] = b.system(unknowns)
	}
	return NewSystem(out...), nil
}

var errInconsistent = errors.New("inconsistent system")

type elimMove struct {
	eq     int
	v      string
	weight float64
}

// eliminate solves fs = 0 for unknowns by substitution. Each branch binds
// every unknown.
func (s *Solver) eliminate(fs []Node, unknowns []string, depth int) ([]assignment, error) {
	if depth > s.opts.MaxSolveDepth {
		return nil, &UnsolvableError{Unknown: strings.Join(unknowns, ", "), Reason: "depth ceiling reached"}
	}
	live := map[string]bool{}
	for _, u := range unknowns {
		live[u] = true
	}
	var rest []Node
	for _, f := range fs {
		f = Expand(f)
		if isZero(f) {
			continue
		}
		if !containsAny(f, unknowns) {
			if s.approximate(f) && s.nearZero(f, 1) {
				continue
			}
			if isConstant(f) {
				s.record("inconsistent", nil, Eq(f, zero))
				return nil, errInconsistent
			}
			return nil, &UnsolvableError{Unknown: strings.Join(unknowns, ", "), Residual: Eq(f, zero), Reason: "condition on parameters"}
		}
		rest = append(rest, f)
	}
	if len(unknowns) == 0 {
		return []assignment{{}}, nil
	}
	if len(rest) == 0 {
		return nil, &UnsolvableError{Unknown: strings.Join(unknowns, ", "), Reason: "underdetermined"}
	}

	var moves []elimMove
	for i, f := range rest {
		for _, v := range unknowns {
			if Contains(f, v) {
				moves = append(moves, elimMove{eq: i, v: v, weight: Difficulty(f, v, live)})
			}
		}
	}
	sort.SliceStable(moves, func(i, j int) bool { return moves[i].weight < moves[j].weight })

	var lastErr error
	for _, mv := range moves {
		branches, err := s.eliminateWith(rest, unknowns, mv, depth)
		if err == nil || errors.Is(err, errInconsistent) {
			return branches, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// eliminateWith solves equation mv.eq for mv.v, substitutes the result
// into the others and recurses on the remaining unknowns.
func (s *Solver) eliminateWith(fs []Node, unknowns []string, mv elimMove, depth int) ([]assignment, error) {
	roots, err := s.isolateZero(mv.v, fs[mv.eq], 0)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, errInconsistent
	}
	var others []string
	for _, u := range unknowns {
		if u != mv.v {
			others = append(others, u)
		}
	}
	h := s.rec.OpenBranch(len(roots))
	defer s.rec.CloseBranch()
	var out []assignment
	consistent := false
	for _, r := range roots {
		h.Next()
		s.record("substitute", r, Eq(S(mv.v), r))
		next := make([]Node, 0, len(fs)-1)
		ok := true
		for i, f := range fs {
			if i == mv.eq {
				continue
			}
			g, err := Substitute(f, mv.v, r)
			if err != nil {
				ok = false
				break
			}
			if s.approximate(r) {
				g = Expand(g)
				s.markApprox(g)
			}
			next = append(next, g)
		}
		if !ok {
			continue
		}
		sub, err := s.eliminate(next, others, depth+1)
		if errors.Is(err, errInconsistent) {
			continue
		}
		if err != nil {
			return nil, err
		}
		consistent = true
		for _, b := range sub {
			v, err := Subs(r, b)
			if err != nil {
				continue
			}
			nb := b.clone()
			nb[mv.v] = v
			if s.approximate(r) || s.approximate(b.values(others)...) {
				s.markApprox(v)
			}
			out = append(out, nb)
		}
	}
	if !consistent {
		return nil, errInconsistent
	}
	return out, nil
}

// groebnerSolve triangularizes fs with a lex basis and back-substitutes
// from the last unknown up.
func (s *Solver) groebnerSolve(fs []Node, unknowns []string) ([]assignment, error) {
	basis, err := groebnerBasis(fs, unknowns, s.opts.MaxGroebnerPairs)
	if err != nil {
		return nil, err
	}
	for _, g := range basis {
		s.record("basis", nil, Eq(g, zero))
	}
	if len(basis) == 1 && isConstant(basis[0]) {
		return nil, errInconsistent
	}
	branches := []assignment{{}}
	for i := len(unknowns) - 1; i >= 0; i-- {
		v := unknowns[i]
		var next []assignment
		for _, b := range branches {
			ext, err := s.extendBranch(basis, v, b)
			if err != nil {
				return nil, err
			}
			next = append(next, ext...)
		}
		branches = next
	}
	return branches, nil
}

// extendBranch solves the basis elements left univariate in v once b is
// substituted.
func (s *Solver) extendBranch(basis []Node, v string, b assignment) ([]assignment, error) {
	var uni []Node
	for _, g := range basis {
		h, err := Subs(g, b)
		if err != nil {
			return nil, nil
		}
		syms := Symbols(h)
		if len(syms) == 1 && syms[0] == v {
			uni = append(uni, h)
		}
	}
	if len(uni) == 0 {
		return nil, &UnsolvableError{Unknown: v, Reason: "free parameter in gröbner basis"}
	}
	sort.SliceStable(uni, func(i, j int) bool {
		di, _ := DegreeIn(uni[i], v)
		dj, _ := DegreeIn(uni[j], v)
		return di < dj
	})
	roots, err := s.isolateZero(v, uni[0], 0)
	if err != nil {
		return nil, err
	}
	var out []assignment
	for _, r := range roots {
		scale := exactOnly
		if s.approximate(r) || s.approximate(b.values(keysOf(b))...) {
			scale = termScale(map[string]Node{v: r}, uni[1:]...)
		}
		ok := true
		for _, h := range uni[1:] {
			if w, err := Substitute(h, v, r); err != nil || !s.balanced(w, zero, scale) {
				ok = false
				break
			}
		}
		if ok {
			nb := b.clone()
			nb[v] = r
			out = append(out, nb)
		}
	}
	return out, nil
}

// satisfies checks a complete branch against the original equations.
func (s *Solver) satisfies(eqs []Comparison, b assignment) bool {
	approx := s.approximate(b.values(keysOf(b))...)
	for _, c := range eqs {
		l, err := Subs(c.Left, b)
		if err != nil {
			return false
		}
		r, err := Subs(c.Right, b)
		if err != nil {
			return false
		}
		scale := exactOnly
		if approx {
			scale = termScale(b, c.Left, c.Right)
		}
		if !s.balanced(l, r, scale) {
			return false
		}
	}
	return true
}

func (a assignment) values(unknowns []string) []Node {
	out := make([]Node, len(unknowns))
	for i, u := range unknowns {
		out[i] = a[u]
	}
	return out
}

func keysOf(a assignment) []string {
	out := make([]string, 0, len(a))
	for k := range a {
		out = append(out, k)
	}
	return out
}

func (a assignment) system(unknowns []string) *System {
	ms := make([]Statement, len(unknowns))
	for i, u := range unknowns {
		ms[i] = Eq(S(u), a[u])
	}
	return NewSystem(ms...)
}

// sortBranches orders branches by their values, real before complex.
func sortBranches(bs []assignment, unknowns []string) {
	sort.SliceStable(bs, func(i, j int) bool {
		for _, u := range unknowns {
			a, okA := Approx(bs[i][u])
			b, okB := Approx(bs[j][u])
			if !okA || !okB {
				return false
			}
			if ra, rb := isRealApprox(a), isRealApprox(b); ra != rb {
				return ra
			}
			if real(a) != real(b) {
				return real(a) < real(b)
			}
		}
		return false
	})
}

func containsAny(n Node, names []string) bool {
	for _, name := range names {
		if Contains(n, name) {
			return true
		}
	}
	return false
}

// SolveSystem solves a system of equations for unknowns with default
// options.
func SolveSystem(unknowns []string, sys *System) (Statement, error) {
	return defaultSolver.Solve(unknowns, sys)
}
