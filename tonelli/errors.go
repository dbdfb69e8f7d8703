package tonelli

import "errors"

// ErrZeroModulus is returned by every operation when the modulus is 0.
var ErrZeroModulus = errors.New("tonelli: modulus is zero")

// ErrEvenModulus is returned by Sqrt and SqrtPair for an even modulus other
// than 2, which cannot be prime.
var ErrEvenModulus = errors.New("tonelli: even modulus is not an odd prime")

// ErrNoNonResidue means the scan for a quadratic non-residue exhausted [2, p).
// It never happens for an odd prime p.
var ErrNoNonResidue = errors.New("tonelli: no quadratic non-residue below modulus")

// ErrNoSquareRoot reports that n has no square root modulo p.
var ErrNoSquareRoot = errors.New("tonelli: no square root exists")

// IsAbsent reports whether err means "no square root" rather than a misuse of
// the API.
func IsAbsent(err error) bool {
	return errors.Is(err, ErrNoSquareRoot)
}
