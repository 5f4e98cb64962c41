package gocas

// Difficulty weights used to order eliminations: isolating a variable
// from an equation is cheaper the lighter the equation is in it.
const (
	weightConst      = 0.05
	weightOther      = 0.4
	weightTarget     = 1.0
	weightFractional = 1.3
	weightInteger    = 1.2
	weightSum        = 1.1
	weightProduct    = 1.2
)

// Difficulty scores how hard n is to solve for target when the names in
// unknowns are also being eliminated.
func Difficulty(n Node, target string, unknowns map[string]bool) float64 {
	switch v := n.(type) {
	case *Const:
		return weightConst
	case *Symbol:
		switch {
		case v.name == target:
			return weightTarget
		case unknowns[v.name]:
			return weightOther
		}
		return weightConst
	case *Power:
		w := Difficulty(v.base, target, unknowns)
		e, ok := constValue(v.exp)
		if !ok {
			return w * 2 * Difficulty(v.exp, target, unknowns)
		}
		if e.IsInteger() {
			k := e.Float64()
			if k < 0 {
				k = -k
			}
			return w * weightInteger * k
		}
		return w * weightFractional * float64(e.den.Int64())
	case *Sum:
		w := 0.0
		for _, t := range v.terms {
			w += Difficulty(t, target, unknowns)
		}
		return w * weightSum
	case *Product:
		w := 0.0
		for _, f := range v.factors {
			w += Difficulty(f, target, unknowns)
		}
		return w * weightProduct
	}
	return weightConst
}
