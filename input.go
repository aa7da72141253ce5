package netdesign

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const (
	DefaultDataName = "data"
	DefaultDataDir  = "./DataFolder"
	// DefFileArg keeps the default data name when given as first argument.
	DefFileArg = "def-file"

	SheetDistance    = "distance"
	SheetProbability = "probability"
)

// ResolveDataSource maps the data argument of the solver to a file path. A
// bare name is looked up as <dataDir>/<name>.xlsx, an argument with a file
// extension is used as is.
func ResolveDataSource(arg, dataDir string) string {
	if arg == "" || arg == DefFileArg {
		arg = DefaultDataName
	}
	if filepath.Ext(arg) != "" {
		return arg
	}
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return filepath.Join(dataDir, arg+".xlsx")
}

// LoadInstance reads an instance from a .xlsx workbook or a .json file and
// validates its matrices.
func LoadInstance(path string) (*Instance, error) {
	var inst *Instance
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		inst, err = loadWorkbook(path)
	case ".json":
		inst, err = loadJSON(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if inst.Name == "" {
		inst.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := ValidateInstance(inst); err != nil {
		return nil, err
	}
	inst.NodeCount = inst.N()
	return inst, nil
}

func loadJSON(path string) (*Instance, error) {
	instStr, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	inst := &Instance{}
	if err := json.Unmarshal(instStr, inst); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if len(inst.Distances) == 0 && len(inst.NodeCoordinates) > 0 {
		if inst.Distances, err = CalcEdgeDist(inst.NodeCoordinates, inst.EdgeWeightType); err != nil {
			return nil, errors.Wrapf(err, "computing distances of %s", path)
		}
	}
	if inst.Probabilities == nil {
		n := len(inst.Distances)
		inst.Probabilities = make([][]float64, n)
		for i := range inst.Probabilities {
			inst.Probabilities[i] = make([]float64, n)
		}
	}
	return inst, nil
}

func loadWorkbook(path string) (*Instance, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	distSheet, probSheet, err := pickSheets(f.GetSheetList())
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	inst := &Instance{EdgeWeightType: DIST_EXPLICIT, Comment: fmt.Sprintf("read from %s", filepath.Base(path))}
	if inst.Distances, err = readMatrix(f, distSheet); err != nil {
		return nil, err
	}
	if inst.Probabilities, err = readMatrix(f, probSheet); err != nil {
		return nil, err
	}
	Log(3, "Read %dx%d distances from sheet %q:\n%s", len(inst.Distances), len(inst.Distances), distSheet, FormatMatrix(inst.Distances))
	return inst, nil
}

// pickSheets prefers sheets named after their content and falls back to the
// first two sheets of the workbook.
func pickSheets(sheets []string) (string, string, error) {
	var dist, prob string
	for _, s := range sheets {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case SheetDistance:
			dist = s
		case SheetProbability:
			prob = s
		}
	}
	if dist != "" && prob != "" {
		return dist, prob, nil
	}
	if len(sheets) < 2 {
		return "", "", fmt.Errorf("workbook needs a distance and a probability sheet, found %v", sheets)
	}
	return sheets[0], sheets[1], nil
}

func readMatrix(f *excelize.File, sheet string) ([][]float64, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	for len(rows) > 0 && isBlank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	n := len(rows)
	res := make([][]float64, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, &InputShapeError{Sheet: sheet, Rows: n, Cols: len(row), Reason: fmt.Sprintf("row %d has %d cells, want %d", i+1, len(row), n)}
		}
		res[i] = make([]float64, n)
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				name, _ := excelize.CoordinatesToCellName(j+1, i+1)
				return nil, &InputShapeError{Sheet: sheet, Rows: n, Cols: len(row), Reason: fmt.Sprintf("cell %s: %q is not a number", name, cell)}
			}
			res[i][j] = v
		}
	}
	return res, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ValidateInstance checks what the formulations rely on: square matrices of
// equal size, finite non-negative distances and probabilities in [0,1].
func ValidateInstance(inst *Instance) error {
	n := len(inst.Distances)
	if n == 0 {
		return &InputShapeError{Sheet: SheetDistance, Reason: "no locations"}
	}
	if len(inst.Probabilities) != n {
		return &InputShapeError{Sheet: SheetProbability, Rows: len(inst.Probabilities), Cols: n, Reason: fmt.Sprintf("want %d rows like the distance matrix", n)}
	}
	for i := 0; i < n; i++ {
		if len(inst.Distances[i]) != n {
			return &InputShapeError{Sheet: SheetDistance, Rows: n, Cols: len(inst.Distances[i]), Reason: fmt.Sprintf("row %d is not square", i)}
		}
		if len(inst.Probabilities[i]) != n {
			return &InputShapeError{Sheet: SheetProbability, Rows: n, Cols: len(inst.Probabilities[i]), Reason: fmt.Sprintf("row %d is not square", i)}
		}
		for j := 0; j < n; j++ {
			if dv := inst.Distances[i][j]; dv < 0 || math.IsNaN(dv) || math.IsInf(dv, 0) {
				return &InputShapeError{Sheet: SheetDistance, Rows: n, Cols: n, Reason: fmt.Sprintf("distance %d -> %d is %g", i, j, dv)}
			}
			if pv := inst.Probabilities[i][j]; pv < 0 || pv > 1 || math.IsNaN(pv) {
				return &InputShapeError{Sheet: SheetProbability, Rows: n, Cols: n, Reason: fmt.Sprintf("probability %d -> %d is %g", i, j, pv)}
			}
		}
	}
	return nil
}

// SaveWorkbook writes the distance and probability matrices of inst into an
// xlsx workbook that LoadInstance reads back.
func SaveWorkbook(inst *Instance, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetDistance); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetProbability); err != nil {
		return err
	}
	for sheet, matrix := range map[string][][]float64{SheetDistance: inst.Distances, SheetProbability: inst.Probabilities} {
		for i := range matrix {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			row := matrix[i]
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return errors.Wrapf(err, "writing row %d of sheet %s", i+1, sheet)
			}
		}
	}
	return f.SaveAs(path)
}
