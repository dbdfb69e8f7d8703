// Package tonelli computes square roots modulo a prime with the
// Tonelli–Shanks algorithm.
//
// All values are uint64. Modular products are formed in 128 bits with
// math/bits, so every modulus below 2^64 is supported without overflow.
//
// The modulus given to Legendre, FindNonResidue, Sqrt and SqrtPair must be
// prime. Primality is not checked: a composite modulus gives meaningless
// results, and in the worst case one of the internal consistency errors.
package tonelli

import (
	"fmt"
	"math/bits"
)

// Symbol is the value of the Legendre symbol (a/p).
type Symbol int

const (
	NonResidue Symbol = -1
	Zero       Symbol = 0
	Residue    Symbol = 1
)

func (s Symbol) String() string {
	switch s {
	case Residue:
		return "residue"
	case NonResidue:
		return "non-residue"
	case Zero:
		return "zero"
	}
	return fmt.Sprintf("Symbol(%d)", int(s))
}

// modulus is a non-zero uint64 modulus. Callers check p != 0 before
// converting.
type modulus uint64

func (p modulus) mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, uint64(p))
}

func (p modulus) pow(x, n uint64) uint64 {
	res := uint64(1)
	x %= uint64(p)
	for n > 0 {
		if n&1 == 1 {
			res = p.mul(res, x)
		}
		x = p.mul(x, x)
		n >>= 1
	}
	return res
}

func (p modulus) legendre(a uint64) Symbol {
	a %= uint64(p)
	if a == 0 {
		return Zero
	}
	// Euler's criterion. Anything other than 1 or p-1 means p is not prime.
	switch p.pow(a, (uint64(p)-1)/2) {
	case 1:
		return Residue
	case uint64(p) - 1:
		return NonResidue
	}
	return Zero
}

func (p modulus) nonResidue() (uint64, error) {
	for z := uint64(2); z < uint64(p); z++ {
		if p.legendre(z) == NonResidue {
			return z, nil
		}
	}
	return 0, fmt.Errorf("%w: modulus %d", ErrNoNonResidue, uint64(p))
}

// shanks runs the general Tonelli–Shanks loop for a residue n, 0 < n < p.
func (p modulus) shanks(n uint64) (uint64, error) {
	// p-1 = q * 2^s with q odd
	q, s := uint64(p)-1, 0
	for q&1 == 0 {
		q >>= 1
		s++
	}

	z, err := p.nonResidue()
	if err != nil {
		return 0, err
	}
	c := p.pow(z, q)
	r := p.pow(n, (q+1)/2)
	t := p.pow(n, q)
	m := s

	// t is a 2^m-th root of unity; m shrinks every round.
	for t != 1 {
		i, tt := 0, t
		for tt != 1 {
			tt = p.mul(tt, tt)
			i++
			if i == m {
				return 0, fmt.Errorf("%w: %d^(2^%d) never reached 1 modulo %d", ErrNoSquareRoot, t, m, uint64(p))
			}
		}
		b := p.pow(c, uint64(1)<<uint(m-i-1))
		b2 := p.mul(b, b)
		r = p.mul(r, b)
		t = p.mul(t, b2)
		c = b2
		m = i
	}
	return r, nil
}

// PowMod returns x^n mod p. x^0 is 1 for every x.
func PowMod(x, n, p uint64) (uint64, error) {
	if p == 0 {
		return 0, ErrZeroModulus
	}
	return modulus(p).pow(x, n), nil
}

// Legendre classifies a mod p as a quadratic residue, a non-residue or zero.
func Legendre(a, p uint64) (Symbol, error) {
	if p == 0 {
		return Zero, ErrZeroModulus
	}
	return modulus(p).legendre(a), nil
}

// FindNonResidue returns the smallest z in [2, p) that is a quadratic
// non-residue mod p.
func FindNonResidue(p uint64) (uint64, error) {
	if p == 0 {
		return 0, ErrZeroModulus
	}
	return modulus(p).nonResidue()
}

// Sqrt returns r with r*r ≡ n (mod p). When n is a non-residue the error
// satisfies IsAbsent.
func Sqrt(n, p uint64) (uint64, error) {
	switch {
	case p == 0:
		return 0, ErrZeroModulus
	case p == 2:
		return n % 2, nil
	case p%2 == 0:
		return 0, fmt.Errorf("%w: %d", ErrEvenModulus, p)
	}

	m := modulus(p)
	n %= p
	if n == 0 {
		return 0, nil
	}
	if m.legendre(n) != Residue {
		return 0, fmt.Errorf("%w: %d is not a quadratic residue modulo %d", ErrNoSquareRoot, n, p)
	}
	if p%4 == 3 {
		// (p+1)/4, written so that p close to 2^64 does not overflow
		e := p>>2 + 1
		return m.pow(n, e), nil
	}
	return m.shanks(n)
}

// SqrtPair returns both square roots of n mod p in ascending order. For
// n ≡ 0 both roots are 0.
func SqrtPair(n, p uint64) (lo, hi uint64, err error) {
	r, err := Sqrt(n, p)
	if err != nil {
		return 0, 0, err
	}
	other := (p - r) % p
	if r <= other {
		return r, other, nil
	}
	return other, r, nil
}
