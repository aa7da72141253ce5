package mip

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	pivTol  = 1e-9
	costTol = 1e-9
)

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
	lpIterLimit
)

type lpResult struct {
	status lpStatus
	x      []float64
	obj    float64
}

// lpRow is one row of the shifted problem: sum(val*y[col]) sense rhs, y >= 0.
type lpRow struct {
	cols  []int
	vals  []float64
	sense Sense
	rhs   float64
}

// tableau is a dense simplex tableau. Rows 0..m-1 are constraints, row m is
// the reduced cost row; the last column holds the right-hand side.
type tableau struct {
	t      *mat.Dense
	m      int
	cols   int // columns excluding the rhs
	nonArt int // columns below nonArt are structural or slack
	basis  []int
}

func (tb *tableau) row(i int) []float64 { return tb.t.RawRowView(i) }
func (tb *tableau) rhs(i int) float64   { return tb.t.At(i, tb.cols) }

func (tb *tableau) pivot(pr, pc int) {
	prow := tb.row(pr)
	floats.Scale(1/prow[pc], prow)
	prow[pc] = 1
	for i := 0; i <= tb.m; i++ {
		if i == pr {
			continue
		}
		r := tb.row(i)
		if f := r[pc]; f != 0 {
			floats.AddScaled(r, -f, prow)
			r[pc] = 0
		}
	}
	tb.basis[pr] = pc
}

// iterate runs primal simplex on the current reduced cost row. Only columns
// below limit may enter the basis. Dantzig pricing is used until the
// iteration count suggests cycling, after which Bland's rule takes over.
func (tb *tableau) iterate(limit int) lpStatus {
	size := tb.m + tb.cols
	blandAfter := 10*size + 100
	maxIter := 50*size + 1000
	for iter := 0; ; iter++ {
		if iter > maxIter {
			return lpIterLimit
		}
		bland := iter > blandAfter
		obj := tb.row(tb.m)
		pc := -1
		best := -costTol
		for j := 0; j < limit; j++ {
			if obj[j] < best {
				pc = j
				if bland {
					break
				}
				best = obj[j]
			}
		}
		if pc < 0 {
			return lpOptimal
		}
		pr := -1
		minRatio := math.Inf(1)
		for i := 0; i < tb.m; i++ {
			a := tb.t.At(i, pc)
			if a <= pivTol {
				continue
			}
			ratio := tb.rhs(i) / a
			switch {
			case ratio < minRatio-1e-12:
				pr, minRatio = i, ratio
			case ratio <= minRatio+1e-12 && tb.basis[i] < tb.basis[pr]:
				pr, minRatio = i, ratio
			}
		}
		if pr < 0 {
			return lpUnbounded
		}
		tb.pivot(pr, pc)
	}
}

// solveLP minimizes c*y over rows with 0 <= y <= ub (ub may be +Inf).
func solveLP(c []float64, rows []lpRow, ub []float64) lpResult {
	n := len(c)
	rows = append(rows[:len(rows):len(rows)], boundRows(rows, ub)...)
	m := len(rows)

	// sign[i] normalizes the row to a non-negative rhs; slack[i] is the
	// coefficient of the slack column after normalization.
	sign := make([]float64, m)
	slack := make([]float64, m)
	nSlack, nArt := 0, 0
	for i, r := range rows {
		sign[i] = 1
		if r.rhs < 0 {
			sign[i] = -1
		}
		switch r.sense {
		case LessEqual:
			slack[i] = sign[i]
			nSlack++
		case GreaterEqual:
			slack[i] = -sign[i]
			nSlack++
		}
		if slack[i] != 1 {
			nArt++
		}
	}

	cols := n + nSlack + nArt
	tb := &tableau{
		t:      mat.NewDense(m+1, cols+1, nil),
		m:      m,
		cols:   cols,
		nonArt: n + nSlack,
		basis:  make([]int, m),
	}
	nextSlack, nextArt := n, n+nSlack
	for i, r := range rows {
		row := tb.row(i)
		for k, j := range r.cols {
			row[j] += sign[i] * r.vals[k]
		}
		row[cols] = sign[i] * r.rhs
		if slack[i] != 0 {
			row[nextSlack] = slack[i]
			if slack[i] == 1 {
				tb.basis[i] = nextSlack
			}
			nextSlack++
		}
		if slack[i] != 1 {
			row[nextArt] = 1
			tb.basis[i] = nextArt
			nextArt++
		}
	}

	if nArt > 0 {
		obj := tb.row(m)
		for j := tb.nonArt; j < cols; j++ {
			obj[j] = 1
		}
		for i := 0; i < m; i++ {
			if tb.basis[i] >= tb.nonArt {
				floats.AddScaled(obj, -1, tb.row(i))
			}
		}
		switch tb.iterate(tb.nonArt) {
		case lpIterLimit:
			return lpResult{status: lpIterLimit}
		case lpUnbounded:
			// phase one is bounded below by zero
			return lpResult{status: lpIterLimit}
		}
		if -tb.rhs(m) > feasTol*(1+maxAbsRHS(tb)) {
			return lpResult{status: lpInfeasible}
		}
		tb.expelArtificials()
	}

	obj := tb.row(m)
	for j := range obj {
		obj[j] = 0
	}
	copy(obj, c)
	for i := 0; i < m; i++ {
		if b := tb.basis[i]; b < n && c[b] != 0 {
			floats.AddScaled(obj, -c[b], tb.row(i))
		}
	}
	switch tb.iterate(tb.nonArt) {
	case lpUnbounded:
		return lpResult{status: lpUnbounded}
	case lpIterLimit:
		return lpResult{status: lpIterLimit}
	}

	y := make([]float64, n)
	for i := 0; i < m; i++ {
		if b := tb.basis[i]; b < n {
			y[b] = math.Max(tb.rhs(i), 0)
		}
	}
	return lpResult{status: lpOptimal, x: y, obj: floats.Dot(c, y)}
}

// expelArtificials pivots artificial columns out of the basis after phase
// one. Rows where that is impossible are redundant and get cleared so they
// never take part in a later pivot.
func (tb *tableau) expelArtificials() {
	for i := 0; i < tb.m; i++ {
		if tb.basis[i] < tb.nonArt {
			continue
		}
		row := tb.row(i)
		if math.Abs(row[tb.cols]) < feasTol {
			row[tb.cols] = 0
		}
		pc, best := -1, pivTol
		for j := 0; j < tb.nonArt; j++ {
			if a := math.Abs(row[j]); a > best {
				pc, best = j, a
			}
		}
		if pc >= 0 {
			tb.pivot(i, pc)
			continue
		}
		for j := 0; j < tb.nonArt; j++ {
			row[j] = 0
		}
	}
}

// boundRows returns the rows y[j] <= ub[j] that no row already implies. A
// row with only positive coefficients and sense <= or = caps each of its
// columns at rhs/coefficient, since y >= 0.
func boundRows(rows []lpRow, ub []float64) []lpRow {
	implied := make([]float64, len(ub))
	for j := range implied {
		implied[j] = math.Inf(1)
	}
	for _, r := range rows {
		if r.sense == GreaterEqual || r.rhs < 0 || len(r.vals) == 0 || floats.Min(r.vals) <= 0 {
			continue
		}
		for k, j := range r.cols {
			implied[j] = math.Min(implied[j], r.rhs/r.vals[k])
		}
	}

	var bounds []lpRow
	for j, u := range ub {
		if !math.IsInf(u, 1) && implied[j] > u {
			bounds = append(bounds, lpRow{cols: []int{j}, vals: []float64{1}, sense: LessEqual, rhs: u})
		}
	}
	return bounds
}

func maxAbsRHS(tb *tableau) float64 {
	max := 0.0
	for i := 0; i < tb.m; i++ {
		max = math.Max(max, math.Abs(tb.rhs(i)))
	}
	return max
}
