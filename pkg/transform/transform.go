// Package transform parses CSS transform strings into 2D translation offsets.
//
// Canvas nodes are positioned by the rendering layer through computed
// transforms (usually a single matrix() produced from the node's x/y), so
// recovering a node's screen position means extracting the translation
// component from whatever transform text the style engine reports.
package transform

import (
	"regexp"
	"strconv"
	"strings"
)

// Offset is the 2D translation component of a transform.
type Offset struct {
	X float64
	Y float64
}

var (
	// funcPattern matches one function call in a (possibly chained)
	// transform list, e.g. "matrix(1, 0, 0, 1, 200, -1000)".
	funcPattern = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9]*)\(([^)]*)\)`)

	// numberPattern extracts the leading numeric value from an argument
	// such as "-42.5px" or ".5em". Units are ignored.
	numberPattern = regexp.MustCompile(`-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// Parse extracts the translation from a computed CSS transform string.
//
// Recognized forms:
//   - "" or "none": zero offset
//   - matrix(a, b, c, d, tx, ty): returns (tx, ty)
//   - matrix3d(...16 args...): returns arguments 13 and 14
//   - translate(x[, y]): returns (x, y), y defaulting to 0
//
// Function calls may be chained; the last recognized call wins. Malformed
// input never fails: anything unrecognized yields a zero offset.
func Parse(text string) Offset {
	text = strings.TrimSpace(text)
	if text == "" || text == "none" {
		return Offset{}
	}

	var off Offset
	for _, call := range funcPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(call[1])
		args := parseArgs(call[2])

		switch name {
		case "matrix":
			if len(args) == 6 {
				off = Offset{X: args[4], Y: args[5]}
			}
		case "matrix3d":
			if len(args) == 16 {
				off = Offset{X: args[12], Y: args[13]}
			}
		case "translate":
			if len(args) >= 2 {
				off = Offset{X: args[0], Y: args[1]}
			} else if len(args) == 1 {
				off = Offset{X: args[0]}
			}
		}
	}
	return off
}

// parseArgs splits a function argument list and parses each entry's numeric
// value. Entries with no parsable number are dropped, which also guards the
// arity checks above against garbage input.
func parseArgs(list string) []float64 {
	parts := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	args := make([]float64, 0, len(parts))
	for _, p := range parts {
		match := numberPattern.FindString(p)
		if match == "" {
			continue
		}
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		args = append(args, v)
	}
	return args
}
