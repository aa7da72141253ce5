package netdesign

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestResolveDataSource(t *testing.T) {
	tests := []struct {
		arg, dir, want string
	}{
		{"", "", filepath.Join(DefaultDataDir, "data.xlsx")},
		{DefFileArg, "", filepath.Join(DefaultDataDir, "data.xlsx")},
		{"city", "in", filepath.Join("in", "city.xlsx")},
		{"other/net.json", "in", "other/net.json"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, ResolveDataSource(test.arg, test.dir), "arg %q", test.arg)
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	inst := starInstance(4)
	inst.Probabilities[0][1] = 0.25
	inst.Probabilities[2][3] = 0.75
	path := filepath.Join(t.TempDir(), "net.xlsx")
	require.NoError(t, SaveWorkbook(inst, path))

	got, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, "net", got.Name)
	assert.Equal(t, 4, got.NodeCount)
	if diff := cmp.Diff(inst.Distances, got.Distances); diff != "" {
		t.Errorf("distances mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(inst.Probabilities, got.Probabilities); diff != "" {
		t.Errorf("probabilities mismatch (-want +got):\n%s", diff)
	}
}

func writeSheets(t *testing.T, sheets map[string][][]interface{}, order ...string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for k, name := range order {
		if k == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbookFallsBackToFirstSheets(t *testing.T) {
	path := writeSheets(t, map[string][][]interface{}{
		"D":    {{0, 7}, {7, 0}},
		"Risk": {{0, 0.5}, {0.1, 0}},
	}, "D", "Risk")
	inst, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 7}, {7, 0}}, inst.Distances)
	assert.Equal(t, [][]float64{{0, 0.5}, {0.1, 0}}, inst.Probabilities)
}

func TestWorkbookNamedSheetsCaseInsensitive(t *testing.T) {
	path := writeSheets(t, map[string][][]interface{}{
		"Notes":       {{"ignored"}},
		"PROBABILITY": {{0, 0.2}, {0.2, 0}},
		"Distance":    {{0, 3}, {3, 0}},
	}, "Notes", "PROBABILITY", "Distance")
	inst, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 3}, {3, 0}}, inst.Distances)
	assert.Equal(t, [][]float64{{0, 0.2}, {0.2, 0}}, inst.Probabilities)
}

func TestWorkbookShapeErrors(t *testing.T) {
	path := writeSheets(t, map[string][][]interface{}{
		"distance":    {{0, 1, 2}, {1, 0}},
		"probability": {{0, 0}, {0, 0}},
	}, "distance", "probability")
	_, err := LoadInstance(path)
	var shapeErr *InputShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "distance", shapeErr.Sheet)

	path = writeSheets(t, map[string][][]interface{}{
		"distance":    {{0, "far"}, {1, 0}},
		"probability": {{0, 0}, {0, 0}},
	}, "distance", "probability")
	_, err = LoadInstance(path)
	require.ErrorAs(t, err, &shapeErr)
	assert.Contains(t, shapeErr.Reason, "B1")

	path = writeSheets(t, map[string][][]interface{}{
		"distance":    {{0, 1}, {1, 0}},
		"probability": {{0, 1.5}, {0, 0}},
	}, "distance", "probability")
	_, err = LoadInstance(path)
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, SheetProbability, shapeErr.Sheet)
}

func TestLoadJSONFromCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coords.json")
	js := `{"name": "tri", "edge_weight_type": "EUC_2D", "node_coordinates": [[0,0],[3,4],[0,4]]}`
	require.NoError(t, ioutil.WriteFile(path, []byte(js), 0644))

	inst, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, "tri", inst.Name)
	assert.Equal(t, [][]float64{{0, 5, 4}, {5, 0, 3}, {4, 3, 0}}, inst.Distances)
	assert.Equal(t, zeroMatrix(3), inst.Probabilities)
}

func TestLoadInstanceRejectsUnknownFormat(t *testing.T) {
	_, err := LoadInstance("data.csv")
	assert.Error(t, err)
}

func TestValidateInstance(t *testing.T) {
	assert.NoError(t, ValidateInstance(starInstance(3)))

	inst := starInstance(3)
	inst.Distances[1][2] = -1
	assert.Error(t, ValidateInstance(inst))

	inst = starInstance(3)
	inst.Probabilities = zeroMatrix(2)
	assert.Error(t, ValidateInstance(inst))

	assert.Error(t, ValidateInstance(&Instance{}))
}
