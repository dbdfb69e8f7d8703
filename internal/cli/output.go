package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"tonelli/internal/config"
)

// result is anything a command prints: JSON through its struct tags, text
// through writeText.
type result interface {
	writeText(w io.Writer) error
}

func (e *env) print(r result) error {
	if e.cfg.Format == config.FormatJSON {
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return r.writeText(e.out)
}

type sqrtResult struct {
	N      uint64   `json:"n"`
	P      uint64   `json:"p"`
	Exists bool     `json:"exists"`
	Root   *uint64  `json:"root,omitempty"`
	Roots  []uint64 `json:"roots,omitempty"`
}

func (r sqrtResult) writeText(w io.Writer) error {
	if !r.Exists {
		_, err := fmt.Fprintln(w, "No square root exists")
		return err
	}
	lo, hi := r.Roots[0], r.Roots[1]
	_, err := fmt.Fprintf(w, "Square root: %d\n%d² ≡ %d (mod %d)\nBoth square roots: %d and %d\n%d² ≡ %d² ≡ %d (mod %d)\n",
		*r.Root, *r.Root, r.N%r.P, r.P, lo, hi, lo, hi, r.N%r.P, r.P)
	return err
}

type powModResult struct {
	X     uint64 `json:"x"`
	N     uint64 `json:"n"`
	M     uint64 `json:"m"`
	Value uint64 `json:"value"`
}

func (r powModResult) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d^%d mod %d = %d\n", r.X, r.N, r.M, r.Value)
	return err
}

type legendreResult struct {
	A      uint64 `json:"a"`
	P      uint64 `json:"p"`
	Symbol int    `json:"symbol"`
	Class  string `json:"class"`
}

func (r legendreResult) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "(%d/%d) = %d (%s)\n", r.A, r.P, r.Symbol, r.Class)
	return err
}

type nonResidueResult struct {
	P uint64 `json:"p"`
	Z uint64 `json:"nonResidue"`
}

func (r nonResidueResult) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "smallest non-residue mod %d: %d\n", r.P, r.Z)
	return err
}

type tableRow struct {
	N     uint64   `json:"n"`
	Class string   `json:"class"`
	Roots []uint64 `json:"roots,omitempty"`
}

type tableResult struct {
	P    uint64     `json:"p"`
	Rows []tableRow `json:"rows"`
}

func (r tableResult) writeText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%8s  %-11s  %s\n", "n", "class", "roots")
	for _, row := range r.Rows {
		roots := "-"
		if len(row.Roots) == 2 {
			roots = fmt.Sprintf("%d, %d", row.Roots[0], row.Roots[1])
		}
		fmt.Fprintf(&b, "%8d  %-11s  %s\n", row.N, row.Class, roots)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type pointResult struct {
	P      uint64  `json:"p"`
	A      uint64  `json:"A"`
	B      uint64  `json:"B"`
	X      uint64  `json:"x"`
	Odd    bool    `json:"odd"`
	Exists bool    `json:"exists"`
	Y      *uint64 `json:"y,omitempty"`
}

func (r pointResult) writeText(w io.Writer) error {
	if !r.Exists {
		parity := "even"
		if r.Odd {
			parity = "odd"
		}
		_, err := fmt.Fprintf(w, "No point with x = %d and %s y on y^2 = x^3 + %d x + %d over F_%d\n", r.X, parity, r.A, r.B, r.P)
		return err
	}
	_, err := fmt.Fprintf(w, "(%d, %d) on y^2 = x^3 + %d x + %d over F_%d\n", r.X, *r.Y, r.A, r.B, r.P)
	return err
}

type countResult struct {
	P     uint64 `json:"p"`
	A     uint64 `json:"A"`
	B     uint64 `json:"B"`
	Count uint64 `json:"pointCount"`
}

func (r countResult) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "#E(F_%d) = %d for y^2 = x^3 + %d x + %d\n", r.P, r.Count, r.A, r.B)
	return err
}
