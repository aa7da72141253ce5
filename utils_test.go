package netdesign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcEdgeDist(t *testing.T) {
	coords := [][]float64{{0, 0}, {3, 4}, {1, 1}}
	d, err := CalcEdgeDist(coords, DIST_EUC_2D)
	require.NoError(t, err)
	assert.Equal(t, 5.0, d[0][1])
	assert.Equal(t, 5.0, d[1][0])
	assert.Equal(t, 1.0, d[0][2])
	assert.Equal(t, 0.0, d[2][2])

	d, err = CalcEdgeDist(coords, DIST_CEIL_2D)
	require.NoError(t, err)
	assert.Equal(t, 2.0, d[0][2])

	_, err = CalcEdgeDist(coords, "GEO")
	assert.Error(t, err)
	_, err = CalcEdgeDist([][]float64{{1}}, DIST_EUC_2D)
	assert.Error(t, err)
}

func TestSanitizeJsonArrayLineBreaks(t *testing.T) {
	in := "{\n\t\"tour\": [\n\t\t0,\n\t\t2,\n\t\t1\n\t],\n\t\"obj\": 4.5\n}"
	assert.Equal(t, "{\n\t\"tour\": [0,2,1],\n\t\"obj\": 4.5\n}", SanitizeJsonArrayLineBreaks(in))

	floats := "[\n\t0.25,\n\t-1.5\n]\n"
	assert.Equal(t, "[0.25,-1.5]\n", SanitizeJsonArrayLineBreaks(floats))
}

func TestFormatMatrix(t *testing.T) {
	assert.Equal(t, "0,1.5\n2,0\n", FormatMatrix([][]float64{{0, 1.5}, {2, 0}}))
}

func TestRouteDistance(t *testing.T) {
	d := starInstance(4).Distances
	assert.Equal(t, 6.0, RouteDistance([]int{0, 1, 2, 3}, d))
	assert.Equal(t, 4.0, RouteDistance([]int{0, 2}, d))
	assert.Equal(t, 0.0, RouteDistance([]int{0}, d))
}

func TestCheckRouteValidity(t *testing.T) {
	d := starInstance(4).Distances
	tests := []struct {
		name   string
		routes [][]int
		budget float64
		valid  bool
	}{
		{"single route", [][]int{{0, 1, 2, 3}}, 6, true},
		{"too long", [][]int{{0, 1, 2, 3}}, 5, false},
		{"split", [][]int{{0, 1, 2}, {0, 3}}, 5, true},
		{"missing location", [][]int{{0, 1, 2}}, 6, false},
		{"visited twice", [][]int{{0, 1, 2}, {0, 2, 3}}, 6, false},
		{"not rooted", [][]int{{1, 2, 3}}, 6, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			valid, comment := CheckRouteValidity(test.routes, d, test.budget)
			assert.Equal(t, test.valid, valid, comment)
		})
	}
}
