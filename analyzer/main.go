/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/netdesign"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		netdesign.Log(1, "%s", err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "analyzer"
	app.Usage = "print a CSV summary of the solution files in a directory"
	app.ArgsUsage = "<directory>"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "log", Value: 1, Usage: "Level of the logging output. Range 1-4", EnvVar: "NETDESIGN_LOG"},
	}
	app.Action = analyze
	return app
}

func analyze(c *cli.Context) error {
	netdesign.InitLoggers(c.Int("log"))
	if c.NArg() < 1 {
		return cli.NewExitError("No arguments passed!", 2)
	}
	dirName := c.Args().Get(0)
	dir, err := ioutil.ReadDir(dirName)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("Couldn't open directory %s: %s", dirName, err.Error()), 1)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "RunID,Instance,Problem,Status,Optimal,Time,Obj,RouteCostSum,Dimension,Comment\n")
	for _, f := range dir {
		if filepath.Ext(f.Name()) != ".json" {
			continue
		}
		fileName := filepath.Join(dirName, f.Name())
		solStr, err := ioutil.ReadFile(fileName)
		if err != nil {
			netdesign.Log(1, "Couldn't read %s: %s", f.Name(), err.Error())
			continue
		}
		var sols []netdesign.Solution
		if err := json.Unmarshal(solStr, &sols); err != nil {
			netdesign.Log(1, "Couldn't parse %s: %s", f.Name(), err.Error())
			continue
		}
		netdesign.Log(3, "%s holds %d solutions", f.Name(), len(sols))
		for _, sol := range sols {
			costSum := 0.0
			for _, rc := range sol.RouteCosts {
				costSum += rc
			}
			costSum = math.Round(costSum*1000) / 1000
			comment := strings.ReplaceAll(sol.Comment, ",", ";")
			fmt.Fprintf(w, "%s,%s,%d,%s,%t,%s,%g,%g,%d,%s\n", sol.RunID, sol.Instance, sol.Problem, sol.Status, sol.Optimal, sol.Time, sol.Obj, costSum, sol.Dimension, comment)
		}
	}
	return nil
}
