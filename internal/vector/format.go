package vector

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// printPrecision is the maximum number of fractional digits printed.
	printPrecision = 8
	// printLineWidth is the column at which long rows wrap.
	printLineWidth = 75
)

// ShapeString returns the shape as a tuple literal, e.g. "(100, 2)".
func (m *Matrix) ShapeString() string {
	return FormatShape(m.rows, m.cols)
}

// FormatShape formats a two-dimensional shape as a tuple literal.
func FormatShape(rows, cols int) string {
	return fmt.Sprintf("(%d, %d)", rows, cols)
}

// String renders the matrix in the bracketed layout used by numpy, e.g.
//
//	[[ 0.5  0.5]
//	 [-0.5 -0.5]]
//
// All elements share one width so columns line up.
func (m *Matrix) String() string {
	f := newFloatFormat(m.data)
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		line := "["
		if i > 0 {
			line = " ["
		}
		for j := 0; j < m.cols; j++ {
			word := f.format(m.data[i*m.cols+j])
			limit := printLineWidth
			if j == m.cols-1 {
				limit -= 2 // closing brackets
			}
			if len(line)+len(word) > limit && strings.TrimSpace(line) != "[" {
				sb.WriteString(strings.TrimRight(line, " "))
				sb.WriteString("\n")
				line = "  "
			}
			line += word
			if j < m.cols-1 {
				line += " "
			}
		}
		sb.WriteString(line)
		sb.WriteString("]")
		if i < m.rows-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// floatFormat holds the widths shared by every element of one array.
type floatFormat struct {
	scientific bool
	padLeft    int
	padRight   int // fractional width in positional mode
	precision  int // mantissa digits in scientific mode
}

func newFloatFormat(values []float32) floatFormat {
	var f floatFormat

	maxAbs, minAbs := 0.0, math.Inf(1)
	finite := 0
	for _, v := range values {
		x := float64(v)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		finite++
		a := math.Abs(x)
		if a == 0 {
			continue
		}
		maxAbs = math.Max(maxAbs, a)
		minAbs = math.Min(minAbs, a)
	}
	if maxAbs > 0 {
		f.scientific = maxAbs >= 1e8 || minAbs < 0.0001 || maxAbs/minAbs > 1000
	}
	if finite == 0 {
		return f
	}

	for _, v := range values {
		x := float64(v)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if f.scientific {
			mant, _ := splitExp(shortestExp(x))
			intPart, frac := splitFrac(mant)
			f.padLeft = max(f.padLeft, len(intPart))
			f.precision = max(f.precision, len(frac))
		} else {
			intPart, frac := splitFrac(shortestPositional(x))
			f.padLeft = max(f.padLeft, len(intPart))
			f.padRight = max(f.padRight, len(frac))
		}
	}
	return f
}

func (f floatFormat) width() int {
	return f.padLeft + 1 + f.padRight
}

func (f floatFormat) format(v float32) string {
	x := float64(v)
	switch {
	case math.IsNaN(x):
		return padLeft("nan", f.width())
	case math.IsInf(x, 1):
		return padLeft("inf", f.width())
	case math.IsInf(x, -1):
		return padLeft("-inf", f.width())
	}

	if f.scientific {
		s := strconv.FormatFloat(x, 'e', f.precision, 32)
		mant, exp := splitExp(s)
		intPart, frac := splitFrac(mant)
		return padLeft(intPart, f.padLeft) + "." + frac + "e" + exp
	}

	intPart, frac := splitFrac(shortestPositional(x))
	return padLeft(intPart, f.padLeft) + "." + frac + strings.Repeat(" ", f.padRight-len(frac))
}

// shortestPositional returns the shortest decimal that round-trips the
// float32 value, limited to printPrecision fractional digits.
func shortestPositional(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 32)
	if _, frac := splitFrac(s); len(frac) > printPrecision {
		s = strconv.FormatFloat(x, 'f', printPrecision, 64)
		if strings.Contains(s, ".") {
			s = strings.TrimRight(s, "0")
		}
	}
	return s
}

func shortestExp(x float64) string {
	s := strconv.FormatFloat(x, 'e', -1, 32)
	mant, exp := splitExp(s)
	if _, frac := splitFrac(mant); len(frac) > printPrecision {
		s = strconv.FormatFloat(x, 'e', printPrecision, 64)
		mant, exp = splitExp(s)
		if strings.Contains(mant, ".") {
			mant = strings.TrimRight(mant, "0")
		}
		s = mant + "e" + exp
	}
	return s
}

// splitFrac splits "12.5" into ("12", "5") and "3" into ("3", "").
func splitFrac(s string) (string, string) {
	intPart, frac, _ := strings.Cut(s, ".")
	return intPart, frac
}

func splitExp(s string) (string, string) {
	mant, exp, _ := strings.Cut(s, "e")
	return mant, exp
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
