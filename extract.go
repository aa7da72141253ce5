package netdesign

import (
	"github.com/pkg/errors"

	"git.solver4all.com/azaryc2s/netdesign/mip"
)

// selected interprets the value of a binary variable.
func selected(value float64) bool {
	return value > SelectTolerance
}

// ExtractEdgeMatrix reads a matrix of binary edge variables into a 0/1
// matrix. Slots holding mip.NoVar stay 0.
func ExtractEdgeMatrix(eng mip.Engine, vars [][]mip.Var) [][]int {
	res := make([][]int, len(vars))
	for i := range vars {
		res[i] = make([]int, len(vars[i]))
		for j, v := range vars[i] {
			if v != mip.NoVar && selected(eng.Value(v)) {
				res[i][j] = 1
			}
		}
	}
	return res
}

// SelectedEdges lists the edges of a 0/1 matrix in row major order.
func SelectedEdges(edges [][]int) []Edge {
	var res []Edge
	for i := range edges {
		for j, e := range edges[i] {
			if e == 1 {
				res = append(res, Edge{From: i, To: j})
			}
		}
	}
	return res
}

// successors maps every location with exactly one selected out-edge to its
// successor. Locations with none are absent; more than one is an error.
func successors(edges [][]int, skipRoot bool) (map[int]int, error) {
	succ := make(map[int]int, len(edges))
	for i := range edges {
		if skipRoot && i == 0 {
			continue
		}
		for j, e := range edges[i] {
			if e != 1 {
				continue
			}
			if prev, ok := succ[i]; ok {
				return nil, errors.Wrapf(ErrExtraction, "location %d leaves to both %d and %d", i, prev, j)
			}
			succ[i] = j
		}
	}
	return succ, nil
}

// followTour walks selected out-edges from the root for at most n steps and
// returns the visiting order, starting with 0. The tour must come back to
// the root having visited every location.
func followTour(edges [][]int) ([]int, error) {
	n := len(edges)
	succ, err := successors(edges, false)
	if err != nil {
		return nil, err
	}
	tour := []int{0}
	visited := make([]bool, n)
	visited[0] = true
	cur := 0
	for step := 0; step < n; step++ {
		next, ok := succ[cur]
		if !ok {
			return nil, errors.Wrapf(ErrExtraction, "tour stops at location %d", cur)
		}
		if next == 0 {
			break
		}
		if visited[next] {
			return nil, errors.Wrapf(ErrExtraction, "tour revisits location %d", next)
		}
		visited[next] = true
		tour = append(tour, next)
		cur = next
	}
	if len(tour) != n {
		return nil, errors.Wrapf(ErrExtraction, "tour %v visits %d of %d locations", tour, len(tour), n)
	}
	if n > 1 && succ[cur] != 0 {
		return nil, errors.Wrapf(ErrExtraction, "tour does not return to the root")
	}
	return tour, nil
}

// decomposeRoutes splits the selected edges of a routing solution into one
// route per departure from the root. Every route starts with 0; the return
// leg is implicit. A location not reached from the root is an error.
func decomposeRoutes(edges [][]int) ([][]int, error) {
	n := len(edges)
	succ, err := successors(edges, true)
	if err != nil {
		return nil, err
	}
	visited := make([]bool, n)
	visited[0] = true
	var routes [][]int
	for first, e := range edges[0] {
		if e != 1 {
			continue
		}
		route := []int{0}
		cur := first
		for cur != 0 {
			if visited[cur] {
				return nil, errors.Wrapf(ErrExtraction, "location %d is reached twice", cur)
			}
			visited[cur] = true
			route = append(route, cur)
			next, ok := succ[cur]
			if !ok {
				return nil, errors.Wrapf(ErrExtraction, "route %v stops at location %d", route, cur)
			}
			cur = next
		}
		routes = append(routes, route)
	}
	for j := 1; j < n; j++ {
		if !visited[j] {
			return nil, errors.Wrapf(ErrExtraction, "location %d is not reachable from the root", j)
		}
	}
	return routes, nil
}
