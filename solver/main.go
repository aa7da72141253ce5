/* Copyright 2021, Arkadiusz Zarychta, arkadiusz.zarychta@h-brs.de */

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/urfave/cli"

	"git.solver4all.com/azaryc2s/netdesign"
	"git.solver4all.com/azaryc2s/netdesign/mip"
)

func main() {
	def := netdesign.DefaultConfig()
	app := cli.NewApp()
	app.Name = "solver"
	app.Usage = "solve the network design problems of one instance"
	app.ArgsUsage = "[dataName|def-file] [problemIndex 1-4]"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "concurrent, c", Usage: "Solve the selected problems in parallel", EnvVar: "NETDESIGN_CONCURRENT"},
		cli.IntFlag{Name: "log", Value: 2, Usage: "Level of the logging output. Higher value is more verbose. Range 1-4", EnvVar: "NETDESIGN_LOG"},
		cli.StringFlag{Name: "data-dir", Value: netdesign.DefaultDataDir, Usage: "Directory bare data names are looked up in", EnvVar: "NETDESIGN_DATA_DIR"},
		cli.IntFlag{Name: "facilities, k", Value: def.Facilities, Usage: "Number of facilities to open", EnvVar: "NETDESIGN_FACILITIES"},
		cli.IntFlag{Name: "capacity", Value: def.Capacity, Usage: "Locations a facility can serve", EnvVar: "NETDESIGN_CAPACITY"},
		cli.Float64Flag{Name: "risk", Value: def.RiskThreshold, Usage: "Highest blockage probability an assignment or edge may have", EnvVar: "NETDESIGN_RISK"},
		cli.Float64Flag{Name: "speed", Value: def.Speed, Usage: "Travel speed of the agents", EnvVar: "NETDESIGN_SPEED"},
		cli.Float64Flag{Name: "time-limit", Value: def.TimeLimit, Usage: "Travel time of one agent; the distance budget is speed*time-limit", EnvVar: "NETDESIGN_TIME_LIMIT"},
		cli.StringFlag{Name: "facility-objective", Value: def.FacilityObjective, Usage: "MINMAX or TOTAL assignment distance", EnvVar: "NETDESIGN_FACILITY_OBJECTIVE"},
		cli.StringFlag{Name: "routing", Value: def.Routing, Usage: "Routing formulation. FLOW or THREE_INDEX", EnvVar: "NETDESIGN_ROUTING"},
		cli.StringFlag{Name: "engine", Value: mip.EngineBuiltin, Usage: "MIP engine. builtin or lpsolve (needs a build with -tags lpsolve)", EnvVar: "NETDESIGN_ENGINE"},
		cli.IntFlag{Name: "node-limit", Usage: "Branch-and-bound node limit per problem, 0 for none. Builtin engine only", EnvVar: "NETDESIGN_NODE_LIMIT"},
		cli.DurationFlag{Name: "max-solve-time", Usage: "Wall clock limit per problem, e.g. 30s, 0 for none", EnvVar: "NETDESIGN_MAX_SOLVE_TIME"},
		cli.StringFlag{Name: "output, o", Usage: "Path of a JSON file receiving the solutions", EnvVar: "NETDESIGN_OUTPUT"},
		cli.StringFlag{Name: "write-lp", Usage: "Directory receiving one LP file per problem", EnvVar: "NETDESIGN_WRITE_LP"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	netdesign.InitLoggers(c.Int("log"))

	inputF := netdesign.ResolveDataSource(c.Args().Get(0), c.String("data-dir"))
	problems := netdesign.Problems
	if c.NArg() >= 2 {
		idx, err := strconv.Atoi(c.Args().Get(1))
		if err != nil || idx < 1 || idx > len(netdesign.Problems) {
			return cli.NewExitError(fmt.Sprintf("problem index must be between 1 and %d, got %q", len(netdesign.Problems), c.Args().Get(1)), 2)
		}
		problems = []netdesign.Problem{netdesign.Problem(idx)}
	}
	netdesign.Log(2, "Data file to load is: %s", inputF)
	netdesign.Log(2, "Problems to run: %v", problems)

	cfg := netdesign.Config{
		Facilities:        c.Int("facilities"),
		Capacity:          c.Int("capacity"),
		RiskThreshold:     c.Float64("risk"),
		Speed:             c.Float64("speed"),
		TimeLimit:         c.Float64("time-limit"),
		FacilityObjective: c.String("facility-objective"),
		Routing:           c.String("routing"),
	}
	if err := cfg.Validate(); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	factory, err := mip.NewEngineFactory(c.String("engine"), mip.Settings{
		Logger:    netdesign.EngineLogger{Lvl: 4},
		NodeLimit: c.Int("node-limit"),
		TimeLimit: c.Duration("max-solve-time"),
	})
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	netdesign.Log(2, "MIP engine: %s", c.String("engine"))

	inst, err := netdesign.LoadInstance(inputF)
	if err != nil {
		netdesign.Log(1, "At %s: %s", inputF, err.Error())
		return cli.NewExitError(fmt.Sprintf("At %s: %s", inputF, err.Error()), 1)
	}

	runner := &netdesign.Runner{
		Instance:   inst,
		Config:     cfg,
		Factory:    factory,
		Reporter:   netdesign.NewReporter(os.Stdout),
		Concurrent: c.Bool("concurrent"),
		LPDir:      c.String("write-lp"),
	}
	outcomes := runner.Run(problems)

	if outputF := c.String("output"); outputF != "" {
		if err := writeSolutions(outputF, inst, cfg, outcomes); err != nil {
			netdesign.Log(1, "At %s: %s", outputF, err.Error())
			return cli.NewExitError(err.Error(), 1)
		}
	}
	return nil
}

func writeSolutions(fileName string, inst *netdesign.Instance, cfg netdesign.Config, outcomes []netdesign.Outcome) error {
	runID := uuid.New().String()
	sys := netdesign.GetSysInfo()
	sols := make([]netdesign.Solution, len(outcomes))
	for i, out := range outcomes {
		sols[i] = netdesign.NewSolution(runID, inst, cfg, out, sys)
	}
	jsonSol, err := json.MarshalIndent(sols, "", "\t")
	if err != nil {
		return err
	}
	jsonSol = []byte(netdesign.SanitizeJsonArrayLineBreaks(string(jsonSol)))
	return ioutil.WriteFile(fileName, jsonSol, 0644)
}
