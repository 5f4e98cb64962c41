package gocas

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// JSON serialization
// ============================================================

func ToJSON(n Node) (string, error) {
	b, err := json.Marshal(n.toJSON())
	return string(b), err
}

// NodeMap is the decoded JSON object form of n.
func NodeMap(n Node) map[string]interface{} { return n.toJSON() }

// ParseJSON decodes a node from its JSON text.
func ParseJSON(data []byte) (Node, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return FromJSON(m)
}

// FromJSON decodes a node. Arithmetic failures while rebuilding, such as a
// zero base raised to a negative power, are returned as errors.
func FromJSON(data map[string]interface{}) (n Node, err error) {
	defer recoverKernel(&err)
	n, err = decodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return n, nil
}

// fields wraps a decoded object with typed accessors that name the
// offending field on failure.
type fields struct {
	typ  string
	data map[string]interface{}
}

func newFields(data map[string]interface{}) (fields, error) {
	if data == nil {
		return fields{}, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return fields{}, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return fields{}, fmt.Errorf("field 'type' must be a non-empty string")
	}
	return fields{typ: typ, data: data}, nil
}

func (f fields) object(field string) (map[string]interface{}, error) {
	v, ok := f.data[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", f.typ, field)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an object", f.typ, field)
	}
	return m, nil
}

func (f fields) objects(field string) ([]map[string]interface{}, error) {
	v, ok := f.data[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", f.typ, field)
	}
	if ms, ok := v.([]map[string]interface{}); ok {
		return ms, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an array", f.typ, field)
	}
	out := make([]map[string]interface{}, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q[%d] must be an object", f.typ, field, i)
		}
		out[i] = m
	}
	return out, nil
}

func (f fields) str(field string) (string, error) {
	v, ok := f.data[field]
	if !ok {
		return "", fmt.Errorf("%s: missing %q", f.typ, field)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: %q must be a non-empty string", f.typ, field)
	}
	return s, nil
}

func (f fields) flag(field string) bool {
	b, _ := f.data[field].(bool)
	return b
}

// optNode decodes an optional node field; JSON null and absence are nil.
func (f fields) optNode(field string) (Node, error) {
	v, ok := f.data[field]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an object or null", f.typ, field)
	}
	return decodeNode(m)
}

func (f fields) nodes(field string) ([]Node, error) {
	objs, err := f.objects(field)
	if err != nil {
		return nil, err
	}
	out := make([]Node, len(objs))
	for i, o := range objs {
		n, err := decodeNode(o)
		if err != nil {
			return nil, fmt.Errorf("%s: %s[%d]: %w", f.typ, field, i, err)
		}
		out[i] = n
	}
	return out, nil
}

// rational reads a decimal or p/q string, or a JSON number.
func rational(typ, field string, v interface{}) (*big.Rat, error) {
	switch x := v.(type) {
	case string:
		r, ok := new(big.Rat).SetString(x)
		if !ok {
			return nil, fmt.Errorf("%s: invalid %s %q", typ, field, x)
		}
		return r, nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return nil, fmt.Errorf("%s: %s must be finite", typ, field)
		}
		return new(big.Rat).SetFloat64(x), nil
	}
	return nil, fmt.Errorf("%s: %q must be a string or number", typ, field)
}

func decodeNode(data map[string]interface{}) (Node, error) {
	f, err := newFields(data)
	if err != nil {
		return nil, err
	}
	switch f.typ {
	case "num":
		valAny, ok := data["value"]
		if !ok {
			return nil, fmt.Errorf("num: missing 'value'")
		}
		re, err := rational("num", "value", valAny)
		if err != nil {
			return nil, err
		}
		im := new(big.Rat)
		if imAny, ok := data["imag"]; ok {
			if im, err = rational("num", "imag", imAny); err != nil {
				return nil, err
			}
		}
		return C(ScalarGaussian(re, im)), nil

	case "sym":
		name, err := f.str("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "add":
		terms, err := f.nodes("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := f.nodes("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		baseM, err := f.object("base")
		if err != nil {
			return nil, err
		}
		expM, err := f.object("exp")
		if err != nil {
			return nil, err
		}
		base, err := decodeNode(baseM)
		if err != nil {
			return nil, fmt.Errorf("pow: base: %w", err)
		}
		exp, err := decodeNode(expM)
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return PowOf(base, exp), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", f.typ)
}

// ============================================================
// Statements and sets
// ============================================================

// StatementMap encodes a Comparison or System as a JSON-ready object.
func StatementMap(st Statement) map[string]interface{} {
	switch v := st.(type) {
	case Comparison:
		m := map[string]interface{}{"type": "cmp", "left": v.Left.toJSON(), "rel": v.Rel.String()}
		if v.Rel == RelIn {
			m["set"] = SetMap(v.Set)
		} else {
			m["right"] = v.Right.toJSON()
		}
		return m
	case *System:
		ms := make([]interface{}, len(v.members))
		for i, s := range v.members {
			ms[i] = StatementMap(s)
		}
		return map[string]interface{}{"type": "system", "members": ms}
	}
	return nil
}

// SetMap encodes a Set as a JSON-ready object.
func SetMap(s Set) map[string]interface{} {
	switch v := s.(type) {
	case Interval:
		return intervalMap(v)
	case *IntervalUnion:
		parts := make([]interface{}, len(v.parts))
		for i, p := range v.parts {
			parts[i] = intervalMap(p)
		}
		return map[string]interface{}{"type": "union", "parts": parts}
	case *SolutionSet:
		tuples := make([]interface{}, len(v.tuples))
		for i, t := range v.tuples {
			if len(t) == 1 {
				tuples[i] = t[0].toJSON()
				continue
			}
			row := make([]interface{}, len(t))
			for j, n := range t {
				row[j] = n.toJSON()
			}
			tuples[i] = row
		}
		return map[string]interface{}{"type": "set", "values": tuples}
	}
	return nil
}

func intervalMap(iv Interval) map[string]interface{} {
	m := map[string]interface{}{"type": "interval", "open_start": iv.OpenStart, "open_end": iv.OpenEnd}
	if iv.Start != nil {
		m["start"] = iv.Start.toJSON()
	}
	if iv.End != nil {
		m["end"] = iv.End.toJSON()
	}
	return m
}

// ParseStatementJSON decodes a statement from its JSON text.
func ParseStatementJSON(data []byte) (Statement, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return StatementFromJSON(m)
}

// StatementFromJSON decodes a "cmp" or "system" object.
func StatementFromJSON(data map[string]interface{}) (st Statement, err error) {
	defer recoverKernel(&err)
	st, err = decodeStatement(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return st, nil
}

func decodeStatement(data map[string]interface{}) (Statement, error) {
	f, err := newFields(data)
	if err != nil {
		return nil, err
	}
	switch f.typ {
	case "cmp":
		leftM, err := f.object("left")
		if err != nil {
			return nil, err
		}
		left, err := decodeNode(leftM)
		if err != nil {
			return nil, fmt.Errorf("cmp: left: %w", err)
		}
		relS, err := f.str("rel")
		if err != nil {
			return nil, err
		}
		rel, ok := ParseRelation(relS)
		if !ok {
			return nil, fmt.Errorf("cmp: unknown relation %q", relS)
		}
		if rel == RelIn {
			setM, err := f.object("set")
			if err != nil {
				return nil, err
			}
			set, err := decodeSet(setM)
			if err != nil {
				return nil, fmt.Errorf("cmp: set: %w", err)
			}
			return Member(left, set), nil
		}
		rightM, err := f.object("right")
		if err != nil {
			return nil, err
		}
		right, err := decodeNode(rightM)
		if err != nil {
			return nil, fmt.Errorf("cmp: right: %w", err)
		}
		return Comparison{Left: left, Right: right, Rel: rel}, nil

	case "system":
		objs, err := f.objects("members")
		if err != nil {
			return nil, err
		}
		ms := make([]Statement, len(objs))
		for i, o := range objs {
			if ms[i], err = decodeStatement(o); err != nil {
				return nil, fmt.Errorf("system: members[%d]: %w", i, err)
			}
		}
		return NewSystem(ms...), nil
	}
	return nil, fmt.Errorf("unknown statement type: %s", f.typ)
}

func decodeSet(data map[string]interface{}) (Set, error) {
	f, err := newFields(data)
	if err != nil {
		return nil, err
	}
	switch f.typ {
	case "interval":
		return decodeInterval(f)
	case "union":
		objs, err := f.objects("parts")
		if err != nil {
			return nil, err
		}
		parts := make([]Interval, len(objs))
		for i, o := range objs {
			pf, err := newFields(o)
			if err != nil {
				return nil, err
			}
			if parts[i], err = decodeInterval(pf); err != nil {
				return nil, fmt.Errorf("union: parts[%d]: %w", i, err)
			}
		}
		return Union(parts...), nil
	case "set":
		raw, ok := data["values"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("set: %q must be an array", "values")
		}
		var tuples [][]Node
		for i, it := range raw {
			switch v := it.(type) {
			case map[string]interface{}:
				n, err := decodeNode(v)
				if err != nil {
					return nil, fmt.Errorf("set: values[%d]: %w", i, err)
				}
				tuples = append(tuples, []Node{n})
			case []interface{}:
				row := make([]Node, len(v))
				for j, e := range v {
					m, ok := e.(map[string]interface{})
					if !ok {
						return nil, fmt.Errorf("set: values[%d][%d] must be an object", i, j)
					}
					if row[j], err = decodeNode(m); err != nil {
						return nil, fmt.Errorf("set: values[%d][%d]: %w", i, j, err)
					}
				}
				tuples = append(tuples, row)
			default:
				return nil, fmt.Errorf("set: values[%d] must be an object or array", i)
			}
		}
		return NewTupleSet(tuples...), nil
	}
	return nil, fmt.Errorf("unknown set type: %s", f.typ)
}

func decodeInterval(f fields) (Interval, error) {
	if f.typ != "interval" {
		return Interval{}, fmt.Errorf("expected interval, got %s", f.typ)
	}
	start, err := f.optNode("start")
	if err != nil {
		return Interval{}, err
	}
	end, err := f.optNode("end")
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end, OpenStart: f.flag("open_start") || start == nil, OpenEnd: f.flag("open_end") || end == nil}, nil
}
