package gocas

import "strings"

// SolutionSet is a de-duplicated, insertion-ordered set of value tuples.
type SolutionSet struct {
	tuples [][]Node
}

// NewSolutionSet builds a set of single values.
func NewSolutionSet(values ...Node) *SolutionSet {
	tuples := make([][]Node, len(values))
	for i, v := range values {
		tuples[i] = []Node{v}
	}
	return NewTupleSet(tuples...)
}

func NewTupleSet(tuples ...[]Node) *SolutionSet {
	seen := map[digest]bool{}
	s := &SolutionSet{}
	for _, t := range tuples {
		k := tupleKey(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		s.tuples = append(s.tuples, append([]Node(nil), t...))
	}
	return s
}

func tupleKey(t []Node) digest { return hashChildren('t', t) }

func (s *SolutionSet) set()          {}
func (s *SolutionSet) Len() int      { return len(s.tuples) }
func (s *SolutionSet) IsEmpty() bool { return len(s.tuples) == 0 }

func (s *SolutionSet) Tuples() [][]Node {
	out := make([][]Node, len(s.tuples))
	for i, t := range s.tuples {
		out[i] = append([]Node(nil), t...)
	}
	return out
}

// Values returns the first element of every tuple.
func (s *SolutionSet) Values() []Node {
	out := make([]Node, len(s.tuples))
	for i, t := range s.tuples {
		out[i] = t[0]
	}
	return out
}

func (s *SolutionSet) Contains(x Node) bool {
	for _, t := range s.tuples {
		if len(t) != 1 {
			continue
		}
		if t[0].Equal(x) {
			return true
		}
		if c, err := compareNodes(t[0], x); err == nil && c == 0 {
			return true
		}
	}
	return false
}

func (s *SolutionSet) String() string {
	if len(s.tuples) == 0 {
		return "∅"
	}
	parts := make([]string, len(s.tuples))
	for i, t := range s.tuples {
		if len(t) == 1 {
			parts[i] = t[0].String()
			continue
		}
		vs := make([]string, len(t))
		for j, v := range t {
			vs[j] = v.String()
		}
		parts[i] = "(" + strings.Join(vs, ", ") + ")"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
