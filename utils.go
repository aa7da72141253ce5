package netdesign

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// CalcEdgeDist computes a symmetric distance matrix from 2D coordinates.
func CalcEdgeDist(coordinates [][]float64, distType string) ([][]float64, error) {
	n := len(coordinates)
	result := make([][]float64, n)
	for node := 0; node < n; node++ {
		if len(coordinates[node]) < 2 {
			return nil, fmt.Errorf("node %d has %d coordinates, need 2", node, len(coordinates[node]))
		}
		result[node] = make([]float64, n)
		for node2 := 0; node2 < node; node2++ {
			eucl := math.Hypot(coordinates[node][0]-coordinates[node2][0], coordinates[node][1]-coordinates[node2][1])
			var distance float64
			switch distType {
			case DIST_EUC_2D:
				distance = math.Floor(eucl + 0.5)
			case DIST_CEIL_2D:
				distance = math.Ceil(eucl)
			default:
				return nil, fmt.Errorf("unsupported edge weight type %q", distType)
			}
			result[node][node2] = distance
			result[node2][node] = distance
		}
	}
	return result, nil
}

// FormatMatrix renders a matrix one row per line, values separated by commas.
func FormatMatrix(a [][]float64) string {
	var sb strings.Builder
	for _, x := range a {
		for j, y := range x {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%g", y)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

var (
	jsonNumbers  = regexp.MustCompile(`\s*([-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?),\s+([-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?)(,)?`)
	jsonBrackets = regexp.MustCompile(`\[(([-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?,)*[-]?[0-9]+(\.[0-9]+)?(e[-+]?[0-9]+)?)\s+\](,?)(\s+)`)
)

// SanitizeJsonArrayLineBreaks puts numeric arrays of indented JSON on a single
// line, so matrices stay readable.
func SanitizeJsonArrayLineBreaks(json string) string {
	res := json
	for jsonNumbers.MatchString(res) {
		res = jsonNumbers.ReplaceAllString(res, "$1,$4$7")
	}
	for jsonBrackets.MatchString(res) {
		res = jsonBrackets.ReplaceAllString(res, "[$1]$7$8")
	}
	return res
}

// RouteDistance is the length of the closed route, including the leg from
// its last stop back to the first.
func RouteDistance(route []int, d [][]float64) float64 {
	length := 0.0
	for j := 0; j < len(route); j++ {
		k := (j + 1) % len(route)
		length += d[route[j]][route[k]]
	}
	return length
}

// CheckRouteValidity verifies that every route starts at the root, that no
// route exceeds maxDistance and that every location is visited exactly once.
func CheckRouteValidity(routes [][]int, d [][]float64, maxDistance float64) (bool, string) {
	seen := make([]bool, len(d))
	for i, route := range routes {
		if len(route) == 0 || route[0] != 0 {
			return false, fmt.Sprintf("Route %d does not start at the root: %v", i, route)
		}
		for _, stop := range route[1:] {
			if stop <= 0 || stop >= len(d) {
				return false, fmt.Sprintf("Route %d visits unknown location %d", i, stop)
			}
			if seen[stop] {
				return false, fmt.Sprintf("Location %d is visited more than once", stop)
			}
			seen[stop] = true
		}
		if length := RouteDistance(route, d); length > maxDistance+1e-6 {
			return false, fmt.Sprintf("Route %d is too long! Is %g but can only be %g!", i, length, maxDistance)
		}
	}
	for j := 1; j < len(seen); j++ {
		if !seen[j] {
			return false, fmt.Sprintf("Location %d is not visited", j)
		}
	}
	return true, ""
}
