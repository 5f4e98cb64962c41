// Package gocas is an exact computer-algebra engine: Gaussian-rational
// arithmetic, canonical expression trees, polynomial algorithms and a
// solver for equations, inequalities and systems.
//
// Design goals:
//   - Exact arithmetic (math/big), approximations only as a fallback
//   - Every constructor returns a canonical tree; equal values are equal trees
//   - Deterministic output order
//   - JSON and tool-call APIs for services and agents
package gocas

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"sort"

	"lukechampine.com/blake3"
)

// ============================================================
// Core Interface
// ============================================================

// Node is an immutable canonical expression. The set of implementations is
// closed: *Const, *Symbol, *Sum, *Product and *Power.
type Node interface {
	String() string
	Equal(other Node) bool
	Hash() uint64
	Kind() Kind
	digest() digest
	toJSON() map[string]interface{}
}

type Kind int

const (
	KindConst Kind = iota + 1
	KindSymbol
	KindSum
	KindProduct
	KindPower
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "num"
	case KindSymbol:
		return "sym"
	case KindSum:
		return "add"
	case KindProduct:
		return "mul"
	case KindPower:
		return "pow"
	}
	return "unknown"
}

// digest is the structural hash computed once per node.
type digest [32]byte

// hashParts length-prefixes every part so distinct part lists never share
// a byte stream.
func hashParts(tag byte, parts ...[]byte) digest {
	h := blake3.New(32, nil)
	h.Write([]byte{tag})
	var n [binary.MaxVarintLen64]byte
	for _, p := range parts {
		h.Write(n[:binary.PutUvarint(n[:], uint64(len(p)))])
		h.Write(p)
	}
	var d digest
	copy(d[:], h.Sum(nil))
	return d
}

// hashChildren hashes an unordered child set; callers pass children
// already sorted with sortByDigest.
func hashChildren(tag byte, children []Node) digest {
	parts := make([][]byte, len(children))
	for i, c := range children {
		d := c.digest()
		parts[i] = d[:]
	}
	return hashParts(tag, parts...)
}

func sortByDigest(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		di, dj := nodes[i].digest(), nodes[j].digest()
		return bytes.Compare(di[:], dj[:]) < 0
	})
}

func sameNode(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.digest() == b.digest()
}

func hash64(d digest) uint64 { return binary.BigEndian.Uint64(d[:8]) }

// ============================================================
// Const — exact Gaussian rational constant
// ============================================================

type Const struct {
	v Scalar
	d digest
}

func newConst(v Scalar) *Const {
	return &Const{v: v, d: hashParts('c', signByte(v.re), v.re.Bytes(), signByte(v.im), v.im.Bytes(), v.den.Bytes())}
}

func signByte(n *big.Int) []byte {
	if n.Sign() < 0 {
		return []byte{'-'}
	}
	return []byte{'+'}
}

var (
	zero   = newConst(ScalarInt(0))
	one    = newConst(ScalarInt(1))
	negOne = newConst(ScalarInt(-1))
	two    = newConst(ScalarInt(2))
	half   = newConst(Scalar{re: big.NewInt(1), im: new(big.Int), den: big.NewInt(2)})
)

func N(n int64) *Const { return newConst(ScalarInt(n)) }

// F builds p/q. It panics with ErrDivisionByZero when q is zero, as the
// node constructors do; use Catch to recover.
func F(p, q int64) *Const {
	v, err := ScalarFrac(p, q)
	if err != nil {
		raise(err)
	}
	return newConst(v)
}

func C(v Scalar) *Const { return newConst(v) }

// I is the imaginary unit.
func I() *Const { return newConst(imagUnit) }

func (c *Const) Value() Scalar         { return c.v }
func (c *Const) String() string        { return c.v.String() }
func (c *Const) Equal(other Node) bool { return sameNode(c, other) }
func (c *Const) Hash() uint64          { return hash64(c.d) }
func (c *Const) Kind() Kind            { return KindConst }
func (c *Const) digest() digest        { return c.d }
func (c *Const) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "num", "value": c.v.Re().String()}
	if !c.v.IsReal() {
		m["imag"] = c.v.Im().String()
	}
	return m
}

// ============================================================
// Symbol — named unknown
// ============================================================

type Symbol struct {
	name string
	d    digest
}

func S(name string) *Symbol { return &Symbol{name: name, d: hashParts('s', []byte(name))} }

func (s *Symbol) Name() string          { return s.name }
func (s *Symbol) String() string        { return s.name }
func (s *Symbol) Equal(other Node) bool { return sameNode(s, other) }
func (s *Symbol) Hash() uint64          { return hash64(s.d) }
func (s *Symbol) Kind() Kind            { return KindSymbol }
func (s *Symbol) digest() digest        { return s.d }
func (s *Symbol) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

// ============================================================
// Predicates
// ============================================================

func constValue(n Node) (Scalar, bool) {
	if c, ok := n.(*Const); ok {
		return c.v, true
	}
	return Scalar{}, false
}

func isZero(n Node) bool {
	v, ok := constValue(n)
	return ok && v.IsZero()
}

func isOne(n Node) bool {
	v, ok := constValue(n)
	return ok && v.IsOne()
}

func isSum(n Node) bool {
	_, ok := n.(*Sum)
	return ok
}

// IsZero reports whether n is the constant 0.
func IsZero(n Node) bool { return isZero(n) }
