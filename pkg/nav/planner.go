package nav

import "math"

// Candidate is one sampled heading with its obstacle cost in [0,1].
type Candidate struct {
	Angle float64 // degrees from current forward direction
	Cost  float64 // fraction of occupied pixels along this heading
}

// CostField is an ordered set of candidates, angles strictly
// increasing. It is recomputed from vision every tick.
type CostField []Candidate

// PlannerConfig holds the heading selection weights.
type PlannerConfig struct {
	ObstacleWeight float64 // weight on obstacle cost
	GoalWeight     float64 // weight on goal alignment error
	SafeThreshold  float64 // costs below this count as safe
}

// DefaultPlannerConfig returns the tuned planner weights.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		ObstacleWeight: 1.2,
		GoalWeight:     0.6,
		SafeThreshold:  0.35,
	}
}

// score combines obstacle cost and goal misalignment. The angular
// error is normalized by 60 degrees so the two terms are comparable.
func (c PlannerConfig) score(cand Candidate, goalBearing float64) float64 {
	angErr := math.Abs(cand.Angle-goalBearing) / 60.0
	return c.ObstacleWeight*cand.Cost + c.GoalWeight*angErr
}

// SelectHeading picks one candidate heading toward goalBearing.
//
// Two passes: first only headings with cost below SafeThreshold are
// considered and the minimum score wins. If no heading is safe, the
// minimum score over the whole field wins instead, so the robot keeps
// moving with the least-bad option rather than stalling. Ties go to
// the first candidate encountered, i.e. the smallest angle.
func SelectHeading(field CostField, goalBearing float64, cfg PlannerConfig) (angle, score float64) {
	bestAngle := 0.0
	bestScore := math.Inf(1)
	for _, cand := range field {
		if cand.Cost >= cfg.SafeThreshold {
			continue
		}
		if s := cfg.score(cand, goalBearing); s < bestScore {
			bestScore = s
			bestAngle = cand.Angle
		}
	}
	if !math.IsInf(bestScore, 1) {
		return bestAngle, bestScore
	}

	// No safe option, pick the least bad
	for _, cand := range field {
		if s := cfg.score(cand, goalBearing); s < bestScore {
			bestScore = s
			bestAngle = cand.Angle
		}
	}
	return bestAngle, bestScore
}
