package netdesign

import "git.solver4all.com/azaryc2s/netdesign/mip"

// setStart hands a known assignment to engines that take one.
func setStart(eng mip.Engine, ind []mip.Var, val []float64) error {
	s, ok := eng.(mip.Starter)
	if !ok {
		return nil
	}
	return s.SetStart(ind, val)
}

// nearestNeighbourTour starts at the root and always moves to the closest
// unvisited location over an allowed edge. It returns nil if it gets stuck.
func nearestNeighbourTour(d [][]float64, allowed func(i, j int) bool) []int {
	n := len(d)
	visited := make([]bool, n)
	visited[0] = true
	tour := []int{0}
	for cur := 0; len(tour) < n; {
		next := -1
		for j := 0; j < n; j++ {
			if visited[j] || !allowed(cur, j) {
				continue
			}
			if next < 0 || d[cur][j] < d[cur][next] {
				next = j
			}
		}
		if next < 0 {
			return nil
		}
		tour = append(tour, next)
		visited[next] = true
		cur = next
	}
	if n > 1 && !allowed(tour[n-1], 0) {
		return nil
	}
	return tour
}

// twoOpt reverses segments of the tour as long as that shortens it and
// every edge stays allowed. The root stays in front. Distances may be
// asymmetric, so every candidate is measured in full.
func twoOpt(tour []int, d [][]float64, allowed func(i, j int) bool) []int {
	best := RouteDistance(tour, d)
	cand := make([]int, len(tour))
	for improved := true; improved; {
		improved = false
		for i := 1; i < len(tour)-1; i++ {
			for k := i + 1; k < len(tour); k++ {
				copy(cand, tour)
				for a, b := i, k; a < b; a, b = a+1, b-1 {
					cand[a], cand[b] = cand[b], cand[a]
				}
				if length := RouteDistance(cand, d); length < best-1e-9 && tourAllowed(cand, allowed) {
					copy(tour, cand)
					best = length
					improved = true
				}
			}
		}
	}
	return tour
}

func tourAllowed(tour []int, allowed func(i, j int) bool) bool {
	for k := range tour {
		if !allowed(tour[k], tour[(k+1)%len(tour)]) {
			return false
		}
	}
	return true
}

// greedyRoutes sends out one agent after the other. Each moves to the
// nearest unvisited location it can still return from within budget. It
// fails if some location cannot be reached at all.
func greedyRoutes(d [][]float64, budget float64) ([][]int, bool) {
	n := len(d)
	visited := make([]bool, n)
	visited[0] = true
	routes := [][]int{}
	for left := n - 1; left > 0; {
		route := []int{0}
		cur, used := 0, 0.0
		for {
			next := -1
			for j := 1; j < n; j++ {
				if visited[j] || used+d[cur][j]+d[j][0] > budget {
					continue
				}
				if next < 0 || d[cur][j] < d[cur][next] {
					next = j
				}
			}
			if next < 0 {
				break
			}
			route = append(route, next)
			visited[next] = true
			used += d[cur][next]
			cur = next
			left--
		}
		if len(route) == 1 {
			return nil, false
		}
		routes = append(routes, route)
	}
	return routes, true
}
