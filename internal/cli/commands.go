package cli

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/urfave/cli/v2"

	"tonelli/internal/config"
	"tonelli/internal/curve"
	"tonelli/tonelli"
)

var errNotPrime = errors.New("modulus failed the primality test")

var tableLimitFlag = &cli.Uint64Flag{
	Name:  "limit",
	Usage: "Refuse to print a table for a modulus above `N` (default from config).",
}

var curveAFlag = &cli.StringFlag{
	Name:  "a",
	Value: "0",
	Usage: "Curve coefficient A in y^2 = x^3 + A x + B.",
}

var curveBFlag = &cli.StringFlag{
	Name:  "b",
	Value: "7",
	Usage: "Curve coefficient B in y^2 = x^3 + A x + B.",
}

var oddFlag = &cli.BoolFlag{
	Name:  "odd",
	Usage: "Select the root y with odd parity (default even).",
}

var appCommands = []*cli.Command{
	{
		Name:      "sqrt",
		Usage:     "Compute the square roots of N modulo the prime P.",
		ArgsUsage: "<N> <P>",
		Action:    sqrtCmd,
	},
	{
		Name:      "powmod",
		Usage:     "Compute X^N mod M.",
		ArgsUsage: "<X> <N> <M>",
		Action:    powModCmd,
	},
	{
		Name:      "legendre",
		Usage:     "Classify A as a quadratic residue, non-residue or zero modulo the prime P.",
		ArgsUsage: "<A> <P>",
		Action:    legendreCmd,
	},
	{
		Name:      "nonresidue",
		Usage:     "Find the smallest quadratic non-residue modulo the prime P.",
		ArgsUsage: "<P>",
		Action:    nonResidueCmd,
	},
	{
		Name:      "table",
		Usage:     "Print every residue class modulo a small prime P with its square roots.",
		ArgsUsage: "<P>",
		Flags:     []cli.Flag{tableLimitFlag},
		Action:    tableCmd,
	},
	{
		Name:      "decompress",
		Usage:     "Recover the curve point with abscissa X from its y parity.",
		ArgsUsage: "<X> <P>",
		Flags:     []cli.Flag{curveAFlag, curveBFlag, oddFlag},
		Action:    decompressCmd,
	},
	{
		Name:      "count",
		Usage:     "Count the points of y^2 = x^3 + A x + B over F_P, infinity included.",
		ArgsUsage: "<P>",
		Flags:     []cli.Flag{curveAFlag, curveBFlag},
		Action:    countCmd,
	},
}

// operands parses exactly len(names) positional arguments.
func operands(c *cli.Context, names ...string) ([]uint64, error) {
	if c.NArg() != len(names) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", c.Command.Name, len(names), c.NArg())
	}
	vals := make([]uint64, len(names))
	for i, name := range names {
		v, err := config.ParseUint(c.Args().Get(i), name)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// checkPrime runs the optional primality gate. The arithmetic itself never
// checks.
func (e *env) checkPrime(p uint64) error {
	if !e.cfg.Strict {
		return nil
	}
	if !new(big.Int).SetUint64(p).ProbablyPrime(20) {
		return fmt.Errorf("%w: %d", errNotPrime, p)
	}
	return nil
}

func sqrtCmd(c *cli.Context) error {
	e := envFrom(c)
	args, err := operands(c, "N", "P")
	if err != nil {
		return err
	}
	n, p := args[0], args[1]
	if err := e.checkPrime(p); err != nil {
		return err
	}

	done := e.rec.Start("sqrt")
	lo, hi, err := tonelli.SqrtPair(n, p)
	done(err)
	if err != nil && !tonelli.IsAbsent(err) {
		return err
	}
	res := sqrtResult{N: n, P: p, Exists: err == nil}
	if res.Exists {
		// the root Sqrt itself returns, for display
		r, _ := tonelli.Sqrt(n, p)
		res.Root = &r
		res.Roots = []uint64{lo, hi}
	}
	e.log.Debugw("sqrt", "n", n, "p", p, "exists", res.Exists, "roots", res.Roots)
	return e.print(res)
}

func powModCmd(c *cli.Context) error {
	e := envFrom(c)
	args, err := operands(c, "X", "N", "M")
	if err != nil {
		return err
	}
	done := e.rec.Start("powmod")
	v, err := tonelli.PowMod(args[0], args[1], args[2])
	done(err)
	if err != nil {
		return err
	}
	return e.print(powModResult{X: args[0], N: args[1], M: args[2], Value: v})
}

func legendreCmd(c *cli.Context) error {
	e := envFrom(c)
	args, err := operands(c, "A", "P")
	if err != nil {
		return err
	}
	if err := e.checkPrime(args[1]); err != nil {
		return err
	}
	done := e.rec.Start("legendre")
	s, err := tonelli.Legendre(args[0], args[1])
	done(err)
	if err != nil {
		return err
	}
	return e.print(legendreResult{A: args[0], P: args[1], Symbol: int(s), Class: s.String()})
}

func nonResidueCmd(c *cli.Context) error {
	e := envFrom(c)
	args, err := operands(c, "P")
	if err != nil {
		return err
	}
	if err := e.checkPrime(args[0]); err != nil {
		return err
	}
	done := e.rec.Start("nonresidue")
	z, err := tonelli.FindNonResidue(args[0])
	done(err)
	if err != nil {
		return err
	}
	return e.print(nonResidueResult{P: args[0], Z: z})
}

func tableCmd(c *cli.Context) error {
	e := envFrom(c)
	args, err := operands(c, "P")
	if err != nil {
		return err
	}
	p := args[0]
	limit := e.cfg.TableLimit
	if c.IsSet(tableLimitFlag.Name) {
		limit = c.Uint64(tableLimitFlag.Name)
	}
	if p > limit {
		return fmt.Errorf("table: modulus %d is above the limit %d", p, limit)
	}
	if err := e.checkPrime(p); err != nil {
		return err
	}

	done := e.rec.Start("table")
	res := tableResult{P: p}
	for n := uint64(0); n < p; n++ {
		s, err := tonelli.Legendre(n, p)
		if err != nil {
			done(err)
			return err
		}
		row := tableRow{N: n, Class: s.String()}
		lo, hi, err := tonelli.SqrtPair(n, p)
		switch {
		case err == nil:
			row.Roots = []uint64{lo, hi}
		case !tonelli.IsAbsent(err):
			done(err)
			return err
		}
		res.Rows = append(res.Rows, row)
	}
	done(nil)
	e.log.Debugw("table", "p", p, "rows", len(res.Rows))
	return e.print(res)
}

func newCurve(c *cli.Context, e *env, p uint64) (*curve.Curve, error) {
	a, err := config.ParseUint(c.String(curveAFlag.Name), "A")
	if err != nil {
		return nil, err
	}
	b, err := config.ParseUint(c.String(curveBFlag.Name), "B")
	if err != nil {
		return nil, err
	}
	if err := e.checkPrime(p); err != nil {
		return nil, err
	}
	return curve.New(p, a, b, curve.WithLogger(e.log.Named("curve")))
}

func decompressCmd(c *cli.Context) error {
	e := envFrom(c)
	args, err := operands(c, "X", "P")
	if err != nil {
		return err
	}
	cv, err := newCurve(c, e, args[1])
	if err != nil {
		return err
	}
	odd := c.Bool(oddFlag.Name)
	done := e.rec.Start("decompress")
	pt, err := cv.Decompress(args[0], odd)
	if errors.Is(err, curve.ErrNotOnCurve) {
		done(tonelli.ErrNoSquareRoot)
		return e.print(pointResult{P: cv.P, A: cv.A, B: cv.B, X: args[0] % cv.P, Odd: odd})
	}
	done(err)
	if err != nil {
		return err
	}
	y := pt.Y
	return e.print(pointResult{P: cv.P, A: cv.A, B: cv.B, X: pt.X, Odd: odd, Exists: true, Y: &y})
}

func countCmd(c *cli.Context) error {
	e := envFrom(c)
	args, err := operands(c, "P")
	if err != nil {
		return err
	}
	cv, err := newCurve(c, e, args[0])
	if err != nil {
		return err
	}
	done := e.rec.Start("count")
	n, err := cv.Count()
	done(err)
	if err != nil {
		return err
	}
	return e.print(countResult{P: cv.P, A: cv.A, B: cv.B, Count: n})
}
