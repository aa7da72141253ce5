package mip

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// WriteLP writes the model in CPLEX LP format.
func (m *Model) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\\ Problem: %s\n", m.name)
	fmt.Fprintln(bw, "Minimize")
	objExpr := m.linear(denseTerms(m.obj))
	if objExpr == "" {
		objExpr = " 0 " + m.vars0()
	}
	fmt.Fprintf(bw, " obj:%s\n", objExpr)
	fmt.Fprintln(bw, "Subject To")
	for _, c := range m.constrs {
		expr := m.linear(c.ind, c.val)
		if len(c.ind) == 0 {
			expr = " 0 " + m.vars0()
		}
		fmt.Fprintf(bw, " %s:%s %s %s\n", c.name, expr, c.sense, formatCoef(c.rhs))
	}

	fmt.Fprintln(bw, "Bounds")
	var generals, binaries []string
	for _, v := range m.vars {
		switch {
		case v.integer && v.lb == 0 && v.ub == 1:
			binaries = append(binaries, v.name)
			continue
		case v.integer:
			generals = append(generals, v.name)
		}
		if math.IsInf(v.ub, 1) {
			fmt.Fprintf(bw, " %s >= %s\n", v.name, formatCoef(v.lb))
		} else {
			fmt.Fprintf(bw, " %s <= %s <= %s\n", formatCoef(v.lb), v.name, formatCoef(v.ub))
		}
	}
	writeSection(bw, "Generals", generals)
	writeSection(bw, "Binaries", binaries)
	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func writeSection(w io.Writer, title string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, name := range names {
		fmt.Fprintf(w, " %s\n", name)
	}
}

func denseTerms(coefs []float64) ([]int, []float64) {
	var ind []int
	var val []float64
	for j, c := range coefs {
		if c != 0 {
			ind = append(ind, j)
			val = append(val, c)
		}
	}
	return ind, val
}

func (m *Model) linear(ind []int, val []float64) string {
	if len(ind) == 0 {
		return ""
	}
	s := ""
	for k, j := range ind {
		c := val[k]
		switch {
		case c < 0:
			s += " - "
			c = -c
		case k > 0:
			s += " + "
		default:
			s += " "
		}
		if c != 1 {
			s += formatCoef(c) + " "
		}
		s += m.vars[j].name
	}
	return s
}

// vars0 names some variable so an empty row stays parseable.
func (m *Model) vars0() string {
	if len(m.vars) == 0 {
		return "dummy"
	}
	return m.vars[0].name
}

func formatCoef(c float64) string {
	return strconv.FormatFloat(c, 'g', -1, 64)
}
