package netdesign

import (
	"fmt"
	"strings"
)

const (
	OBJ_MINMAX        = "MINMAX"
	OBJ_TOTAL         = "TOTAL"
	ROUTING_FLOW      = "FLOW"
	ROUTING_THREE_IDX = "THREE_INDEX"
	DIST_EUC_2D       = "EUC_2D"
	DIST_CEIL_2D      = "CEIL_2D"
	DIST_EXPLICIT     = "EXPLICIT"

	// SelectTolerance is the value above which a nominally binary variable
	// counts as selected.
	SelectTolerance = 0.5
)

// Instance holds the distance and blockage-probability matrices for one set
// of locations. Location 0 is the depot.
type Instance struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Type    string `json:"type"`

	NodeCount       int         `json:"node_count"`
	EdgeWeightType  string      `json:"edge_weight_type"`
	NodeCoordinates [][]float64 `json:"node_coordinates,omitempty"`
	Distances       [][]float64 `json:"distances"`
	Probabilities   [][]float64 `json:"probabilities"`
}

// N is the number of locations.
func (inst *Instance) N() int {
	return len(inst.Distances)
}

type Problem int

const (
	FacilityLocation Problem = iota + 1
	RiskFacilityLocation
	ConstrainedTour
	MultiAgentRouting
)

// Problems lists all problems in their command line order.
var Problems = []Problem{FacilityLocation, RiskFacilityLocation, ConstrainedTour, MultiAgentRouting}

func (p Problem) String() string {
	switch p {
	case FacilityLocation:
		return "capacitated facility location"
	case RiskFacilityLocation:
		return "risk-capped facility location"
	case ConstrainedTour:
		return "constrained tour"
	case MultiAgentRouting:
		return "multi-agent routing"
	default:
		return fmt.Sprintf("problem %d", int(p))
	}
}

// Slug is a file name friendly form of the problem name.
func (p Problem) Slug() string {
	return strings.ReplaceAll(p.String(), " ", "_")
}

// Config carries the constants of the four formulations.
type Config struct {
	Facilities        int     `json:"facilities"`
	Capacity          int     `json:"capacity"`
	RiskThreshold     float64 `json:"risk_threshold"`
	Speed             float64 `json:"speed"`
	TimeLimit         float64 `json:"time_limit"`
	FacilityObjective string  `json:"facility_objective"`
	Routing           string  `json:"routing"`
}

func DefaultConfig() Config {
	return Config{
		Facilities:        4,
		Capacity:          8,
		RiskThreshold:     0.60,
		Speed:             50,
		TimeLimit:         10,
		FacilityObjective: OBJ_MINMAX,
		Routing:           ROUTING_FLOW,
	}
}

// MaxDistance is the distance budget of a single routing agent.
func (c Config) MaxDistance() float64 {
	return c.Speed * c.TimeLimit
}

func (c Config) Validate() error {
	switch {
	case c.Facilities < 0:
		return fmt.Errorf("negative facility count %d", c.Facilities)
	case c.Capacity < 0:
		return fmt.Errorf("negative capacity %d", c.Capacity)
	case c.Speed <= 0:
		return fmt.Errorf("speed must be positive, got %g", c.Speed)
	case c.TimeLimit < 0:
		return fmt.Errorf("negative time limit %g", c.TimeLimit)
	}
	switch c.FacilityObjective {
	case OBJ_MINMAX, OBJ_TOTAL:
	default:
		return fmt.Errorf("unknown facility objective %q", c.FacilityObjective)
	}
	switch c.Routing {
	case ROUTING_FLOW, ROUTING_THREE_IDX:
	default:
		return fmt.Errorf("unknown routing formulation %q", c.Routing)
	}
	return nil
}

// Solution is the persisted record of one solved problem.
type Solution struct {
	RunID     string  `json:"run_id"`
	Instance  string  `json:"instance"`
	Problem   int     `json:"problem"`
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	Optimal   bool    `json:"optimal"`
	Obj       float64 `json:"obj"`
	Time      string  `json:"time"`
	System    SysInfo `json:"system"`
	Config    Config  `json:"config"`
	Comment   string  `json:"comment"`
	Dimension int     `json:"dimension"`

	Facilities []Facility `json:"facilities,omitempty"`
	Tour       []int      `json:"tour,omitempty"`
	Routes     [][]int    `json:"routes,omitempty"`
	RouteCosts []float64  `json:"route_costs,omitempty"`
}

// SysInfo saves the basic system information
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}
