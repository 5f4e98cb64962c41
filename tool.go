package gocas

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ============================================================
// Tool interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall runs one tool with the default solver.
func HandleToolCall(req ToolRequest) ToolResponse { return defaultSolver.HandleToolCall(req) }

// HandleToolCall runs one tool. Failures, including arithmetic errors
// raised while building nodes, are reported in ToolResponse.Error.
func (s *Solver) HandleToolCall(req ToolRequest) ToolResponse {
	resp, err := s.runTool(req)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	return resp
}

type toolParams map[string]interface{}

func (p toolParams) expr(key string) (Node, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing param: %s", ErrMalformedInput, key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid type for param %s", ErrMalformedInput, key)
	}
	return FromJSON(m)
}

func (p toolParams) exprs(key string) ([]Node, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing param: %s", ErrMalformedInput, key)
	}
	raw, ok := v.([]interface{})
	if ms, isMaps := v.([]map[string]interface{}); isMaps {
		raw, ok = make([]interface{}, len(ms)), true
		for i, m := range ms {
			raw[i] = m
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: param %s must be array", ErrMalformedInput, key)
	}
	out := make([]Node, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: param %s[%d] must be expression object", ErrMalformedInput, key, i)
		}
		n, err := FromJSON(m)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (p toolParams) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: missing param: %s", ErrMalformedInput, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: param %s must be a non-empty string", ErrMalformedInput, key)
	}
	return s, nil
}

func (p toolParams) strs(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing param: %s", ErrMalformedInput, key)
	}
	if ss, ok := v.([]string); ok {
		return ss, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: param %s must be array", ErrMalformedInput, key)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("%w: param %s[%d] must be string", ErrMalformedInput, key, i)
		}
		out[i] = s
	}
	return out, nil
}

func (p toolParams) statement(key string) (Statement, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing param: %s", ErrMalformedInput, key)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid type for param %s", ErrMalformedInput, key)
	}
	return StatementFromJSON(m)
}

// unknowns reads "unknowns" as an array, or "unknown" as a single name.
func (p toolParams) unknowns() ([]string, error) {
	if _, ok := p["unknowns"]; ok {
		return p.strs("unknowns")
	}
	u, err := p.str("unknown")
	if err != nil {
		return nil, err
	}
	return []string{u}, nil
}

// variable is the named param, or the single free symbol of n.
func (p toolParams) variable(n Node) (string, error) {
	if _, ok := p["var"]; ok {
		return p.str("var")
	}
	syms := Symbols(n)
	if len(syms) != 1 {
		return "", fmt.Errorf("%w: param var is required for %s", ErrMalformedInput, n)
	}
	return syms[0], nil
}

func respondNode(n Node) ToolResponse {
	return ToolResponse{Result: n.toJSON(), String: n.String()}
}

func respondStatement(st Statement) ToolResponse {
	return ToolResponse{Result: StatementMap(st), String: st.String()}
}

func (s *Solver) runTool(req ToolRequest) (resp ToolResponse, err error) {
	defer recoverKernel(&err)
	p := toolParams(req.Params)

	switch req.Tool {
	case "simplify":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		return respondNode(s.factorer.Factor(Expand(e))), nil

	case "expand":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		return respondNode(Expand(e)), nil

	case "factor":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		return respondNode(s.factorer.Factor(e)), nil

	case "gcd", "lcm":
		es, err := p.exprs("exprs")
		if err != nil {
			return resp, err
		}
		if req.Tool == "gcd" {
			return respondNode(GCD(es...)), nil
		}
		return respondNode(LCM(es...)), nil

	case "long_division":
		a, err := p.expr("dividend")
		if err != nil {
			return resp, err
		}
		b, err := p.expr("divisor")
		if err != nil {
			return resp, err
		}
		q, r, err := LongDivision(a, b)
		if err != nil {
			return resp, err
		}
		return ToolResponse{
			Result: map[string]interface{}{"quotient": q.toJSON(), "remainder": r.toJSON()},
			String: fmt.Sprintf("quotient %s, remainder %s", q, r),
		}, nil

	case "degree":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		var d int
		var ok bool
		if _, named := p["var"]; named {
			v, err := p.str("var")
			if err != nil {
				return resp, err
			}
			d, ok = DegreeIn(e, v)
		} else {
			d, ok = Degree(e)
		}
		if !ok {
			return resp, fmt.Errorf("%w: %s is not a polynomial", ErrMalformedInput, e)
		}
		return ToolResponse{Result: d, String: fmt.Sprint(d)}, nil

	case "rational_roots", "square_free":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		v, err := p.variable(e)
		if err != nil {
			return resp, err
		}
		coeffs, ok := Extract(Expand(e), v)
		if !ok {
			return resp, fmt.Errorf("%w: %s is not a polynomial in %s", ErrMalformedInput, e, v)
		}
		cs, ok := scalarCoeffs(coeffs)
		if !ok {
			return resp, fmt.Errorf("%w: %s has symbolic coefficients", ErrMalformedInput, e)
		}
		if req.Tool == "rational_roots" {
			return rationalRootsResponse(cs, v), nil
		}
		return squareFreeResponse(cs, v), nil

	case "solve", "solve_system":
		st, err := p.statement("statement")
		if err != nil {
			return resp, err
		}
		us, err := p.unknowns()
		if err != nil {
			return resp, err
		}
		if req.Tool == "solve_system" {
			sys, ok := st.(*System)
			if !ok {
				sys = NewSystem(st)
			}
			st = sys
		}
		out, err := s.Solve(us, st)
		if err != nil {
			return resp, err
		}
		return respondStatement(out), nil

	case "substitute":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		v, err := p.str("var")
		if err != nil {
			return resp, err
		}
		val, err := p.expr("value")
		if err != nil {
			return resp, err
		}
		out, err := Substitute(e, v, val)
		if err != nil {
			return resp, err
		}
		return respondNode(out), nil

	case "approx":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		z, ok := Approx(e)
		if !ok {
			return resp, &DomainError{Op: "approx", Reason: e.String() + " has no numeric value"}
		}
		result := map[string]interface{}{"re": real(z), "im": imag(z)}
		if imag(z) == 0 {
			return ToolResponse{Result: result, String: fmt.Sprintf("%.15g", real(z))}, nil
		}
		return ToolResponse{Result: result, String: fmt.Sprintf("%.15g", z)}, nil

	case "free_symbols":
		e, err := p.expr("expr")
		if err != nil {
			return resp, err
		}
		names := Symbols(e)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}, nil

	case "tool_spec":
		return ToolResponse{Result: ToolSpec(), String: "tool specification"}, nil
	}

	return resp, fmt.Errorf("unknown tool: %s", req.Tool)
}

func rationalRootsResponse(cs []Scalar, v string) ToolResponse {
	roots, rest := RationalRoots(cs)
	strs := make([]string, len(roots))
	vals := make([]interface{}, len(roots))
	for i, r := range roots {
		strs[i] = r.String()
		vals[i] = C(r).toJSON()
	}
	cofactor := Rebuild(v, scalarNodes(rest))
	return ToolResponse{
		Result: map[string]interface{}{"roots": vals, "cofactor": cofactor.toJSON()},
		String: "{" + strings.Join(strs, ", ") + "}",
	}
}

func squareFreeResponse(cs []Scalar, v string) ToolResponse {
	lc, parts := SquareFree(cs)
	var strs []string
	out := make([]interface{}, len(parts))
	if !lc.IsOne() {
		strs = append(strs, lc.String())
	}
	for i, part := range parts {
		f := Rebuild(v, scalarNodes(part.Coeffs))
		out[i] = map[string]interface{}{"factor": f.toJSON(), "multiplicity": part.Multiplicity}
		if part.Multiplicity == 1 {
			strs = append(strs, factorString(f))
		} else {
			strs = append(strs, factorString(f)+"^"+fmt.Sprint(part.Multiplicity))
		}
	}
	return ToolResponse{
		Result: map[string]interface{}{"leading": lc.String(), "parts": out},
		String: strings.Join(strs, "*"),
	}
}

// ToolSpec returns the JSON schema of every tool, for agent registration.
func ToolSpec() string {
	spec := map[string]interface{}{"tools": toolSchemas()}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

// IsTool reports whether HandleToolCall knows the named tool.
func IsTool(name string) bool {
	for _, t := range toolSchemas() {
		if t["name"] == name {
			return true
		}
	}
	return false
}

func toolSchemas() []map[string]interface{} {
	return []map[string]interface{}{
		ts("simplify", "Expand then factor an expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("expand", "Algebraically expand an expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("factor", "Factor over the Gaussian rationals", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("gcd", "Greatest common divisor of expressions", []string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("lcm", "Least common multiple of expressions", []string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("long_division", "Polynomial long division: quotient and remainder", []string{"dividend", "divisor"}, map[string]string{"dividend": "object", "divisor": "object"}),
		ts("degree", "Total degree, or degree in var", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("rational_roots", "Rational roots of a univariate polynomial", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("square_free", "Square-free decomposition of a univariate polynomial", []string{"expr"}, map[string]string{"expr": "object", "var": "string"}),
		ts("solve", "Solve an equation or inequality for an unknown", []string{"statement"}, map[string]string{"statement": "object", "unknown": "string", "unknowns": "array"}),
		ts("solve_system", "Solve a system of equations for several unknowns", []string{"statement", "unknowns"}, map[string]string{"statement": "object", "unknowns": "array"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("approx", "Numeric value of a symbol-free expression", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
