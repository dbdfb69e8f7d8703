package tonelli

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---------- helpers ----------

var smallPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 113, 193, 257, 337, 401, 577, 641, 769, 1009,
}

const (
	// largest prime below 2^64, ≡ 1 mod 4
	p64 uint64 = 18446744073709551557
	// largest prime below 2^63, ≡ 3 mod 4
	p63 uint64 = 9223372036854775783
	// 1 + 2^32*(2^32-1), s = 32
	goldilocks uint64 = 18446744069414584321
)

func squareMod(r, p uint64) uint64 {
	return modulus(p).mul(r, r)
}

// bigPair is the ascending root pair computed with math/big, ok=false when
// n has no root.
func bigPair(n, p uint64) (uint64, uint64, bool) {
	P := new(big.Int).SetUint64(p)
	r := new(big.Int).ModSqrt(new(big.Int).SetUint64(n%p), P)
	if r == nil {
		return 0, 0, false
	}
	other := new(big.Int).Sub(P, r)
	other.Mod(other, P)
	if r.Cmp(other) > 0 {
		r, other = other, r
	}
	return r.Uint64(), other.Uint64(), true
}

// ---------- modular power ----------

func TestPowMod(t *testing.T) {
	tests := []struct {
		x, n, p, want uint64
	}{
		{2, 10, 1000, 24}, // 1024 mod 1000
		{3, 5, 7, 5},      // 243 = 34*7 + 5
		{2, 0, 7, 1},
		{0, 5, 7, 0},
		{0, 0, 7, 1},
		{10, 3, 7, 6}, // base reduced first: 3^3 = 27 ≡ 6
		{5, 3, 1, 0},
		{p64 - 1, 2, p64, 1}, // (-1)^2
		{p64 - 1, 3, p64, p64 - 1},
	}
	for _, tt := range tests {
		got, err := PowMod(tt.x, tt.n, tt.p)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "%d^%d mod %d", tt.x, tt.n, tt.p)
	}
}

func TestPowModZeroExponent(t *testing.T) {
	for _, m := range []uint64{1, 2, 7, 1000, p63, p64} {
		for _, x := range []uint64{0, 1, 2, m - 1, m, ^uint64(0)} {
			got, err := PowMod(x, 0, m)
			require.NoError(t, err)
			require.Equal(t, uint64(1), got)
		}
	}
}

func TestPowModZeroModulus(t *testing.T) {
	_, err := PowMod(2, 10, 0)
	require.ErrorIs(t, err, ErrZeroModulus)
}

func TestPowModMatchesBig(t *testing.T) {
	bases := []uint64{2, 3, 0xdeadbeefcafebabe, p64 - 2, ^uint64(0)}
	exps := []uint64{1, 2, 63, 1 << 40, p64 - 2, ^uint64(0)}
	for _, p := range []uint64{p63, p64, goldilocks, 1<<61 - 1} {
		for _, x := range bases {
			for _, n := range exps {
				want := new(big.Int).Exp(new(big.Int).SetUint64(x), new(big.Int).SetUint64(n), new(big.Int).SetUint64(p))
				got, err := PowMod(x, n, p)
				require.NoError(t, err)
				require.Equal(t, want.Uint64(), got, "%d^%d mod %d", x, n, p)
			}
		}
	}
}

// ---------- Legendre symbol ----------

func TestLegendre(t *testing.T) {
	// residues mod 7 are 1, 2, 4
	want := map[uint64]Symbol{
		0: Zero, 1: Residue, 2: Residue, 3: NonResidue,
		4: Residue, 5: NonResidue, 6: NonResidue, 7: Zero, 9: Residue,
	}
	for a, w := range want {
		got, err := Legendre(a, 7)
		require.NoError(t, err)
		require.Equal(t, w, got, "(%d/7)", a)
	}
}

func TestLegendreMatchesBig(t *testing.T) {
	for _, p := range smallPrimes {
		P := new(big.Int).SetUint64(p)
		for a := uint64(0); a < p; a++ {
			got, err := Legendre(a, p)
			require.NoError(t, err)
			require.Equal(t, Symbol(big.Jacobi(new(big.Int).SetUint64(a), P)), got, "(%d/%d)", a, p)
		}
	}
}

func TestLegendreCompositeModulus(t *testing.T) {
	// 2^7 = 128 ≡ 8 (mod 15) is neither 1 nor 14
	got, err := Legendre(2, 15)
	require.NoError(t, err)
	require.Equal(t, Zero, got)
}

func TestLegendreZeroModulus(t *testing.T) {
	_, err := Legendre(3, 0)
	require.ErrorIs(t, err, ErrZeroModulus)
}

func TestSymbolString(t *testing.T) {
	require.Equal(t, "residue", Residue.String())
	require.Equal(t, "non-residue", NonResidue.String())
	require.Equal(t, "zero", Zero.String())
	require.Equal(t, "Symbol(5)", Symbol(5).String())
}

// ---------- non-residue finder ----------

func TestFindNonResidue(t *testing.T) {
	tests := map[uint64]uint64{3: 2, 7: 3, 11: 2, 13: 2, 17: 3, 41: 3, 71: 7, p64: 2}
	for p, want := range tests {
		got, err := FindNonResidue(p)
		require.NoError(t, err)
		require.Equal(t, want, got, "p=%d", p)
	}
}

func TestFindNonResidueIsSmallest(t *testing.T) {
	for _, p := range smallPrimes {
		z, err := FindNonResidue(p)
		require.NoError(t, err)
		for a := uint64(2); a < z; a++ {
			s, _ := Legendre(a, p)
			require.NotEqual(t, NonResidue, s, "%d before %d mod %d", a, z, p)
		}
		s, _ := Legendre(z, p)
		require.Equal(t, NonResidue, s)
	}
}

func TestFindNonResidueExhausted(t *testing.T) {
	// 9 is composite: no element of [2, 9) yields 8 under Euler's criterion
	for _, p := range []uint64{1, 2, 9} {
		_, err := FindNonResidue(p)
		require.ErrorIs(t, err, ErrNoNonResidue, "p=%d", p)
	}
	_, err := FindNonResidue(0)
	require.ErrorIs(t, err, ErrZeroModulus)
}

// ---------- solver ----------

func TestSqrt(t *testing.T) {
	tests := []struct {
		n, p, want uint64
	}{
		{2, 7, 4}, // 4^2 = 16 ≡ 2
		{4, 7, 2},
		{1, 7, 1},
		{0, 7, 0},
		{7, 7, 0},
		{9, 7, 4}, // reduced to 2 first
		{2, 17, 6},
		{9, 17, 14},
		{1, 2, 1},
		{4, 2, 0},
		{5, 1, 0},
	}
	for _, tt := range tests {
		got, err := Sqrt(tt.n, tt.p)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "sqrt(%d) mod %d", tt.n, tt.p)
	}
}

func TestSqrtAbsent(t *testing.T) {
	for _, tc := range [][2]uint64{{3, 7}, {5, 7}, {3, 17}, {2, 11}} {
		_, err := Sqrt(tc[0], tc[1])
		require.Error(t, err)
		require.True(t, IsAbsent(err), "sqrt(%d) mod %d: %v", tc[0], tc[1], err)
	}
}

func TestSqrtInvalidModulus(t *testing.T) {
	_, err := Sqrt(4, 0)
	require.ErrorIs(t, err, ErrZeroModulus)
	require.False(t, IsAbsent(err))

	for _, p := range []uint64{4, 10, 1 << 40} {
		_, err = Sqrt(4, p)
		require.ErrorIs(t, err, ErrEvenModulus)
		require.False(t, IsAbsent(err))
	}
}

func TestSqrtRoundTrip(t *testing.T) {
	for _, p := range smallPrimes {
		for n := uint64(0); n < 2*p; n++ {
			r, err := Sqrt(n, p)
			s, _ := Legendre(n, p)
			if s == NonResidue {
				require.True(t, IsAbsent(err), "sqrt(%d) mod %d", n, p)
				continue
			}
			require.NoError(t, err, "sqrt(%d) mod %d", n, p)
			require.Less(t, r, p)
			require.Equal(t, n%p, squareMod(r, p), "sqrt(%d) mod %d = %d", n, p, r)
		}
	}
}

func TestSqrtLargePrimes(t *testing.T) {
	const p9 = 1000000007
	for _, n := range []uint64{4, 123456789, 999999999, p9 - 1} {
		r, err := Sqrt(n, p9)
		if s, _ := Legendre(n, p9); s != Residue {
			require.True(t, IsAbsent(err))
			continue
		}
		require.NoError(t, err)
		require.Equal(t, n%p9, squareMod(r, p9))
	}

	ns := []uint64{2, 3, 5, 4, 1 << 62, 0xfedcba9876543210, p63 - 1, p64 - 1, p64 - 4}
	for _, p := range []uint64{p63, p64, goldilocks} {
		for _, n := range ns {
			lo, hi, ok := bigPair(n, p)
			r, err := Sqrt(n, p)
			if !ok {
				require.True(t, IsAbsent(err), "sqrt(%d) mod %d", n, p)
				continue
			}
			require.NoError(t, err)
			require.Contains(t, []uint64{lo, hi}, r, "sqrt(%d) mod %d", n, p)
			require.Equal(t, n%p, squareMod(r, p))
		}
	}
}

func TestFastPathMatchesGeneralLoop(t *testing.T) {
	primes := append([]uint64{p63}, smallPrimes...)
	for _, p := range primes {
		if p%4 != 3 {
			continue
		}
		m := modulus(p)
		limit := p
		if limit > 2000 {
			limit = 2000
		}
		for n := uint64(1); n < limit; n++ {
			if m.legendre(n) != Residue {
				continue
			}
			fast, err := Sqrt(n, p)
			require.NoError(t, err)
			general, err := m.shanks(n)
			require.NoError(t, err)
			require.Equal(t, fast, general, "sqrt(%d) mod %d", n, p)
		}
	}
}

func TestShanksRejectsNonResidue(t *testing.T) {
	// 3 is a non-residue mod 17; t = 3 has order 16 = 2^s, so the search for
	// i runs into m.
	_, err := modulus(17).shanks(3)
	require.True(t, IsAbsent(err))

	_, err = modulus(17).shanks(0)
	require.True(t, IsAbsent(err))
}

// ---------- root pair ----------

func TestSqrtPair(t *testing.T) {
	tests := []struct {
		n, p, lo, hi uint64
	}{
		{2, 7, 3, 4},
		{4, 7, 2, 5},
		{2, 17, 6, 11},
		{0, 7, 0, 0},
		{14, 7, 0, 0},
		{1, 2, 1, 1},
	}
	for _, tt := range tests {
		lo, hi, err := SqrtPair(tt.n, tt.p)
		require.NoError(t, err)
		require.Equal(t, [2]uint64{tt.lo, tt.hi}, [2]uint64{lo, hi}, "roots of %d mod %d", tt.n, tt.p)
	}

	_, _, err := SqrtPair(3, 17)
	require.True(t, IsAbsent(err))
	_, _, err = SqrtPair(3, 7)
	require.True(t, IsAbsent(err))
	_, _, err = SqrtPair(3, 8)
	require.ErrorIs(t, err, ErrEvenModulus)
}

func TestSqrtPairSymmetry(t *testing.T) {
	primes := append([]uint64{p63, p64, goldilocks}, smallPrimes...)
	for _, p := range primes {
		limit := p
		if limit > 500 {
			limit = 500
		}
		for n := uint64(0); n < limit; n++ {
			lo, hi, err := SqrtPair(n, p)
			if IsAbsent(err) {
				continue
			}
			require.NoError(t, err)
			require.LessOrEqual(t, lo, hi)
			if n%p == 0 {
				require.Equal(t, [2]uint64{0, 0}, [2]uint64{lo, hi})
				continue
			}
			require.Equal(t, p, lo+hi, "roots of %d mod %d", n, p)
			require.Equal(t, n%p, squareMod(lo, p))
			require.Equal(t, n%p, squareMod(hi, p))

			blo, bhi, ok := bigPair(n, p)
			require.True(t, ok)
			require.Equal(t, [2]uint64{blo, bhi}, [2]uint64{lo, hi})
		}
	}
}

// ---------- fuzz ----------

func FuzzSqrt(f *testing.F) {
	for _, n := range []uint64{0, 1, 2, 3, 4, p64 - 1, goldilocks - 1} {
		f.Add(n)
	}
	primes := []uint64{7, 17, 1009, p63, p64, goldilocks}
	f.Fuzz(func(t *testing.T, n uint64) {
		for _, p := range primes {
			r, err := Sqrt(n, p)
			s, lerr := Legendre(n, p)
			require.NoError(t, lerr)
			if s == NonResidue {
				require.True(t, IsAbsent(err))
				continue
			}
			require.NoError(t, err)
			require.Equal(t, n%p, squareMod(r, p))
		}
	})
}
