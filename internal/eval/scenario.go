package eval

import (
	"errors"
	"fmt"
	"math"
)

// EnergyScore scores scenario trajectories against the realized path.
// scenarios[t][s] is scenario s at time t; step is the trajectory length
// (forecast horizon). The score is averaged over whole trajectories; a
// trailing partial block is ignored.
func EnergyScore(targets []float64, scenarios [][]float64, step int) (float64, error) {
	if step <= 0 {
		return 0, errors.New("step must be > 0")
	}
	if len(targets) < step {
		return 0, fmt.Errorf("need at least %d targets, got %d", step, len(targets))
	}
	if len(scenarios) != len(targets) {
		return 0, fmt.Errorf("scenario rows %d != targets %d", len(scenarios), len(targets))
	}
	nScen := len(scenarios[0])
	if nScen == 0 {
		return 0, errors.New("no scenarios")
	}
	for _, row := range scenarios {
		if len(row) != nScen {
			return 0, errors.New("ragged scenario matrix")
		}
	}

	var scores []float64
	for end := step; end <= len(targets); end += step {
		lo := end - step

		// Mean distance from each scenario trajectory to the realized one.
		dist := 0.0
		for s := 0; s < nScen; s++ {
			sq := 0.0
			for t := lo; t < end; t++ {
				d := scenarios[t][s] - targets[t]
				sq += d * d
			}
			dist += math.Sqrt(sq)
		}
		dist /= float64(nScen)

		// Pairwise scenario spread term.
		spread := 0.0
		for i := 0; i < nScen; i++ {
			for j := 0; j < nScen; j++ {
				sq := 0.0
				for t := lo; t < end; t++ {
					d := scenarios[t][i] - scenarios[t][j]
					sq += d * d
				}
				spread += math.Sqrt(sq)
			}
		}
		spread /= 2 * float64(nScen) * float64(nScen)

		scores = append(scores, dist-spread)
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}
