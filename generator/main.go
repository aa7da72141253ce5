/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/netdesign"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "generator"
	app.Usage = "generate random network design instances"
	app.Flags = []cli.Flag{
		cli.IntSliceFlag{Name: "n", Usage: "List of number of locations"},
		cli.StringFlag{Name: "name", Value: "zarychta", Usage: "Name for the instance"},
		cli.StringFlag{Name: "outputDir", Value: ".", Usage: "Output directory"},
		cli.IntFlag{Name: "count", Value: 1, Usage: "Number of instances per number of locations"},
		cli.IntFlag{Name: "x", Value: 100, Usage: "Max value on the x-axis"},
		cli.IntFlag{Name: "y", Value: 100, Usage: "Max value on the y-axis"},
		cli.StringFlag{Name: "w", Value: netdesign.DIST_EUC_2D, Usage: "EDGE_WEIGHT_TYPE - how the distance between nodes is calculated. EUC_2D|CEIL_2D"},
		cli.Float64Flag{Name: "maxProb", Value: 0.9, Usage: "Highest blockage probability of an edge"},
		cli.Int64Flag{Name: "seed", Usage: "Seed of the random generator, 0 seeds from the clock"},
		cli.BoolFlag{Name: "xlsx", Usage: "Also write every instance as xlsx workbook"},
		cli.IntFlag{Name: "log", Value: 2, Usage: "Level of the logging output. Range 1-4", EnvVar: "NETDESIGN_LOG"},
	}
	app.Action = generate
	return app
}

func generate(c *cli.Context) error {
	netdesign.InitLoggers(c.Int("log"))
	nodes := c.IntSlice("n")
	if len(nodes) == 0 {
		return cli.NewExitError("no number of locations given, use -n", 2)
	}
	seed := c.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	name := c.String("name")
	output := c.String("outputDir")

	for l := 0; l < c.Int("count"); l++ {
		for _, n := range nodes {
			coordinatesArray := make([][]float64, n)
			for node := 0; node < n; node++ {
				coordinatesArray[node] = []float64{float64(rng.Intn(c.Int("x"))), float64(rng.Intn(c.Int("y")))}
			}
			distances, err := netdesign.CalcEdgeDist(coordinatesArray, c.String("w"))
			if err != nil {
				return cli.NewExitError(err.Error(), 2)
			}
			probabilities := make([][]float64, n)
			for i := range probabilities {
				probabilities[i] = make([]float64, n)
			}
			for i := 0; i < n; i++ {
				for j := 0; j < i; j++ {
					p := math.Round(rng.Float64()*c.Float64("maxProb")*100) / 100
					probabilities[i][j] = p
					probabilities[j][i] = p
				}
			}

			instName := fmt.Sprintf("%s_%d_%d", name, n, l)
			inst := netdesign.Instance{
				Name:            instName,
				Comment:         fmt.Sprintf("%s instance Nr. %d with %d locations, seed %d", name, l, n, seed),
				Type:            "netdesign",
				NodeCount:       n,
				EdgeWeightType:  c.String("w"),
				NodeCoordinates: coordinatesArray,
				Distances:       distances,
				Probabilities:   probabilities,
			}

			jsonInst, err := json.MarshalIndent(inst, "", "\t")
			if err != nil {
				return err
			}
			jsonInst = []byte(netdesign.SanitizeJsonArrayLineBreaks(string(jsonInst)))
			if err := ioutil.WriteFile(filepath.Join(output, instName+".json"), jsonInst, 0644); err != nil {
				return err
			}
			if c.Bool("xlsx") {
				if err := netdesign.SaveWorkbook(&inst, filepath.Join(output, instName+".xlsx")); err != nil {
					return err
				}
			}
			netdesign.Log(2, "Generated %s", instName)
		}
	}
	return nil
}
