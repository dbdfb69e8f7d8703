// Package curve is a small short-Weierstrass curve toolkit over F_p with
// p < 2^64. It is the main consumer of package tonelli: decompressing a point
// from its x coordinate is one square root, and counting points is one
// Legendre symbol per x.
//
//	E: y^2 = x^3 + A x + B  (mod p), p an odd prime > 3
package curve

import (
	"errors"
	"fmt"
	"math/bits"

	"tonelli/internal/log"
	"tonelli/tonelli"
)

var (
	ErrSingular   = errors.New("curve: singular curve (4A^3 + 27B^2 = 0)")
	ErrModulus    = errors.New("curve: modulus must be an odd prime > 3")
	ErrNotOnCurve = errors.New("curve: no point with this x coordinate")
	ErrTooLarge   = errors.New("curve: modulus too large to scan")
)

// MaxScanPrime bounds Count and Points, which are O(p log p).
const MaxScanPrime uint64 = 1 << 24

// Point is an affine point, or the point at infinity when Inf is set.
type Point struct {
	X, Y uint64
	Inf  bool
}

func (pt Point) String() string {
	if pt.Inf {
		return "O"
	}
	return fmt.Sprintf("(%d, %d)", pt.X, pt.Y)
}

// ------------------- uint64 mod arithmetic -------------------

type mod64 struct{ p uint64 }

func (m mod64) add(a, b uint64) uint64 {
	c := a + b
	if c >= m.p || c < a {
		c -= m.p
	}
	return c
}

func (m mod64) sub(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return a + m.p - b
}

func (m mod64) neg(a uint64) uint64 {
	if a == 0 {
		return 0
	}
	return m.p - a
}

func (m mod64) mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m.p)
}

// inv uses Fermat's little theorem; a must be non-zero.
func (m mod64) inv(a uint64) uint64 {
	r, _ := tonelli.PowMod(a, m.p-2, m.p)
	return r
}

// ------------------- curve -------------------

type Curve struct {
	P, A, B uint64

	m   mod64
	log log.Logger
}

type Option func(*Curve)

// WithLogger makes the scanning methods report progress to l.
func WithLogger(l log.Logger) Option {
	return func(c *Curve) { c.log = l }
}

// New validates the parameters and reduces A and B modulo p. Primality of p
// is the caller's responsibility.
func New(p, a, b uint64, opts ...Option) (*Curve, error) {
	if p <= 3 || p%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrModulus, p)
	}
	m := mod64{p}
	c := &Curve{P: p, A: a % p, B: b % p, m: m, log: log.Nop()}
	for _, opt := range opts {
		opt(c)
	}

	a3 := m.mul(m.mul(c.A, c.A), c.A)
	disc := m.add(m.mul(4, a3), m.mul(27, m.mul(c.B, c.B)))
	if disc == 0 {
		return nil, ErrSingular
	}
	return c, nil
}

// RHS returns x^3 + A x + B mod p.
func (c *Curve) RHS(x uint64) uint64 {
	m := c.m
	x %= c.P
	x3 := m.mul(m.mul(x, x), x)
	return m.add(m.add(x3, m.mul(c.A, x)), c.B)
}

func (c *Curve) OnCurve(pt Point) bool {
	if pt.Inf {
		return true
	}
	if pt.X >= c.P || pt.Y >= c.P {
		return false
	}
	return c.m.mul(pt.Y, pt.Y) == c.RHS(pt.X)
}

func (c *Curve) Neg(pt Point) Point {
	if pt.Inf {
		return pt
	}
	return Point{X: pt.X, Y: c.m.neg(pt.Y)}
}

// Decompress recovers the point with the given x coordinate whose y has the
// requested parity, as in SEC1 compressed encoding.
func (c *Curve) Decompress(x uint64, odd bool) (Point, error) {
	x %= c.P
	lo, hi, err := tonelli.SqrtPair(c.RHS(x), c.P)
	if tonelli.IsAbsent(err) {
		return Point{}, fmt.Errorf("%w: x=%d", ErrNotOnCurve, x)
	}
	if err != nil {
		return Point{}, err
	}
	if lo == 0 {
		// y = 0 is the only root and it is even
		if odd {
			return Point{}, fmt.Errorf("%w: x=%d has only y=0", ErrNotOnCurve, x)
		}
		return Point{X: x}, nil
	}
	// p is odd, so lo and hi = p - lo have opposite parity
	y := lo
	if (lo&1 == 1) != odd {
		y = hi
	}
	return Point{X: x, Y: y}, nil
}

// Compress returns x and the parity of y, the inverse of Decompress.
func (c *Curve) Compress(pt Point) (x uint64, odd bool) {
	return pt.X, pt.Y&1 == 1
}

// Add is the chord-and-tangent group law.
func (c *Curve) Add(p1, p2 Point) Point {
	if p1.Inf {
		return p2
	}
	if p2.Inf {
		return p1
	}
	m := c.m
	var lam uint64
	if p1.X == p2.X {
		if m.add(p1.Y, p2.Y) == 0 {
			// P + (-P), including the vertical tangent at y = 0
			return Point{Inf: true}
		}
		num := m.add(m.mul(3, m.mul(p1.X, p1.X)), c.A)
		lam = m.mul(num, m.inv(m.add(p1.Y, p1.Y)))
	} else {
		lam = m.mul(m.sub(p2.Y, p1.Y), m.inv(m.sub(p2.X, p1.X)))
	}
	x3 := m.sub(m.sub(m.mul(lam, lam), p1.X), p2.X)
	y3 := m.sub(m.mul(lam, m.sub(p1.X, x3)), p1.Y)
	return Point{X: x3, Y: y3}
}

func (c *Curve) Double(pt Point) Point { return c.Add(pt, pt) }

// Count returns #E(F_p), the point at infinity included.
func (c *Curve) Count() (uint64, error) {
	if c.P > MaxScanPrime {
		return 0, fmt.Errorf("%w: p=%d > %d", ErrTooLarge, c.P, MaxScanPrime)
	}
	n := uint64(1)
	for x := uint64(0); x < c.P; x++ {
		s, err := tonelli.Legendre(c.RHS(x), c.P)
		if err != nil {
			return 0, err
		}
		n += uint64(1 + s)
	}
	c.log.Debugw("counted points", "p", c.P, "A", c.A, "B", c.B, "count", n)
	return n, nil
}

// Points calls fn for every affine point in increasing x, and for each x in
// increasing y. It stops early when fn returns false.
func (c *Curve) Points(fn func(Point) bool) error {
	if c.P > MaxScanPrime {
		return fmt.Errorf("%w: p=%d > %d", ErrTooLarge, c.P, MaxScanPrime)
	}
	emitted := 0
	for x := uint64(0); x < c.P; x++ {
		lo, hi, err := tonelli.SqrtPair(c.RHS(x), c.P)
		if tonelli.IsAbsent(err) {
			continue
		}
		if err != nil {
			return err
		}
		emitted++
		if !fn(Point{X: x, Y: lo}) {
			return nil
		}
		if hi != lo {
			emitted++
			if !fn(Point{X: x, Y: hi}) {
				return nil
			}
		}
	}
	c.log.Debugw("enumerated points", "p", c.P, "affine", emitted)
	return nil
}
