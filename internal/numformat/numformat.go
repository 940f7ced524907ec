// Package numformat renders double values with a stable, deterministic
// text form, used wherever the VM or the code generator needs canonical
// text for a double (WRITE, TOSTR, dtos_double). Built on
// shopspring/decimal rather than strconv.FormatFloat, whose shortest
// round-trip heuristic can vary the number of printed digits for values
// that are arithmetically equal but reached via different float64 paths.
package numformat

import "github.com/shopspring/decimal"

// Double formats f as the shortest decimal that round-trips to the same
// float64, with no trailing zeros, the language's "host default" double
// text (spec.md §4.5's WRITE, §6's dtos_double). Mirrors
// Python's str(float), which always carries at least one fractional
// digit (3.0, not 3) even for whole-valued doubles.
func Double(f float64) string {
	d := decimal.NewFromFloat(f)
	if d.Exponent() >= 0 {
		return d.StringFixed(1)
	}
	return d.String()
}
