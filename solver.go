package gocas

import (
	"errors"
	"fmt"
	"log/slog"
	"math/cmplx"
	"sort"
)

// ============================================================
// Solver
// ============================================================

// Solver isolates unknowns in comparisons and eliminates them from
// systems. Its only shared state is the factor cache, so a Solver is safe
// for concurrent use when its Recorder is.
type Solver struct {
	opts     Options
	factorer *Factorer
	rec      Recorder
	log      *slog.Logger
	approx   approxSet
}

func NewSolver(opts Options) *Solver {
	opts = opts.withDefaults()
	return &Solver{opts: opts, factorer: NewFactorer(opts), rec: opts.Recorder, log: opts.Logger}
}

var defaultSolver = NewSolver(DefaultOptions())

// Solve solves s for the unknowns with default options. A single unknown
// and a Comparison yield `x = v` or `x ∈ set`; inequalities always yield
// `x ∈ interval`. A System over several unknowns yields a System of
// `unknown = value` equations, or a System of such Systems when there are
// several solution branches.
func Solve(unknowns []string, s Statement) (Statement, error) {
	return defaultSolver.Solve(unknowns, s)
}

// SolveFor solves a single comparison for one unknown.
func SolveFor(unknown string, c Comparison) (Statement, error) {
	return defaultSolver.Solve([]string{unknown}, c)
}

// Factorer exposes the solver's memoizing factorer.
func (s *Solver) Factorer() *Factorer { return s.factorer }

func (s *Solver) Solve(unknowns []string, st Statement) (out Statement, err error) {
	defer recoverKernel(&err)
	if s.approx == nil {
		s = s.session()
	}
	if len(unknowns) == 0 {
		return nil, fmt.Errorf("%w: no unknowns", ErrMalformedInput)
	}
	switch v := st.(type) {
	case Comparison:
		if len(unknowns) > 1 {
			return s.solveSystem(unknowns, NewSystem(v))
		}
		out, err = s.solveComparison(unknowns[0], v)
	case *System:
		if len(unknowns) == 1 && v.Len() == 1 {
			if c, ok := v.members[0].(Comparison); ok {
				return s.Solve(unknowns, c)
			}
		}
		out, err = s.solveSystem(unknowns, v)
	default:
		return nil, fmt.Errorf("%w: unsupported statement %T", ErrMalformedInput, st)
	}
	if err != nil {
		s.log.Info("solve failed", "unknowns", unknowns, "statement", st.String(), "error", err)
		return nil, err
	}
	s.log.Info("solved", "unknowns", unknowns, "statement", st.String(), "result", out.String())
	return out, nil
}

func (s *Solver) record(move string, operand Node, result Statement) {
	s.rec.Record(Step{Move: move, Operand: operand, Result: result})
	if result != nil {
		s.log.Debug("move", "name", move, "result", result.String())
	}
}

// errIdentity reports that an equation reduced to 0 = 0.
var errIdentity = errors.New("identity")

func (s *Solver) solveComparison(x string, c Comparison) (Statement, error) {
	if c.Rel == RelIn {
		if sym, ok := c.Left.(*Symbol); ok && sym.name == x {
			return c, nil
		}
		return nil, fmt.Errorf("%w: membership of %s", ErrMalformedInput, c.Left)
	}
	if c.Rel != RelEq {
		return s.solveInequality(x, c)
	}
	if !c.Contains(x) {
		holds, ok := c.Holds()
		if !ok {
			return nil, &UnsolvableError{Unknown: x, Residual: c, Reason: "unknown does not occur"}
		}
		if holds {
			return Member(S(x), Reals()), nil
		}
		return Member(S(x), NewSolutionSet()), nil
	}
	cands, err := s.isolate(x, c, 0)
	if errors.Is(err, errIdentity) {
		s.record("identity", nil, c)
		dom, err := s.Domain(x, c.Left, c.Right)
		if err != nil {
			return nil, err
		}
		return Member(S(x), dom), nil
	}
	if err != nil {
		return nil, err
	}
	roots := s.filter(x, c, cands)
	switch len(roots) {
	case 0:
		return Member(S(x), NewSolutionSet()), nil
	case 1:
		return Eq(S(x), roots[0]), nil
	}
	return Member(S(x), NewSolutionSet(roots...)), nil
}

// filter de-duplicates candidates, drops extraneous ones and orders real
// roots ascending ahead of complex ones.
func (s *Solver) filter(x string, c Comparison, cands []Node) []Node {
	seen := map[digest]bool{}
	var out []Node
	for _, r := range cands {
		if seen[r.digest()] {
			continue
		}
		seen[r.digest()] = true
		if s.verify(x, c, r) {
			out = append(out, r)
		} else {
			s.record("reject extraneous", r, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, okA := Approx(out[i])
		b, okB := Approx(out[j])
		if !okA || !okB {
			return false
		}
		ra, rb := isRealApprox(a), isRealApprox(b)
		if ra != rb {
			return ra
		}
		return real(a) < real(b)
	})
	return out
}

func isRealApprox(z complex128) bool {
	return cmplx.Abs(complex(0, imag(z))) <= 1e-12*maxf(1, cmplx.Abs(z))
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
