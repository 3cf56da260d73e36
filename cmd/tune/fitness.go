package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/tidal/config"
	"github.com/pthm-cable/tidal/phase"
	"github.com/pthm-cable/tidal/scene"
	"github.com/pthm-cable/tidal/telemetry"
)

// FitnessEvaluator runs headless encounters and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastSummary runSummary // averaged over seeds of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
	}
}

// LastSummary returns the seed-averaged results of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() runSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// runResult holds the results from a single encounter.
type runResult struct {
	emitted  int // Stream particles accepted
	captured int // Stream particles handed to the disk
	consumed int // Stream particles swallowed before reaching the disk

	disruptStart float64 // Sim seconds; negative if never entered
	disruptEnd   float64 // Sim seconds; negative if never left
	finished     bool    // Reached the stable phase

	windowStats []telemetry.WindowStats
}

// runSummary is the part of a run the progress line reports.
type runSummary struct {
	CaptureFrac float64
	DisruptSec  float64
	Quality     float64
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var sum runSummary
	for _, r := range results {
		total += fe.computeFitness(r)
		sum.CaptureFrac += r.captureFrac()
		sum.DisruptSec += r.disruptDuration()
		sum.Quality += computeQuality(r.windowStats)
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastSummary = runSummary{
		CaptureFrac: sum.CaptureFrac / n,
		DisruptSec:  sum.DisruptSec / n,
		Quality:     sum.Quality / n,
	}
	fe.mu.Unlock()

	return total / n
}

// runSimulation executes a single headless encounter until the stable
// phase or maxTicks, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	sc := scene.New(cfg, seed)
	result := &runResult{disruptStart: -1, disruptEnd: -1}
	dt := cfg.Physics.DT

	for sc.Tick() < fe.maxTicks {
		rep := sc.Update(dt)

		result.emitted += rep.Emitted
		result.captured += len(rep.Captured)
		result.consumed += rep.Stream.Consumed
		if rep.Stats != nil {
			result.windowStats = append(result.windowStats, *rep.Stats)
		}

		for _, t := range rep.Transitions {
			switch {
			case t.To == phase.Disrupt:
				result.disruptStart = sc.SimTime()
			case t.From == phase.Disrupt:
				result.disruptEnd = sc.SimTime()
			}
		}

		if sc.Phase() == phase.Stable {
			result.finished = true
			break
		}
	}

	return result
}

// copyConfig returns a private copy of the base config with the stats
// window the quality score is computed over.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	return fe.baseConfig.WithStatsWindow(fe.statsWindow)
}

func (r *runResult) captureFrac() float64 {
	if r.emitted == 0 {
		return 0
	}
	return float64(r.captured) / float64(r.emitted)
}

// disruptDuration returns how long disruption took, or -1 if it never ended.
func (r *runResult) disruptDuration() float64 {
	if r.disruptStart < 0 || r.disruptEnd < 0 {
		return -1
	}
	return r.disruptEnd - r.disruptStart
}

// Fitness weights.
const (
	timingWeight     = 0.5
	unfinishedCost   = 2.0
	qualityBonusFrac = 0.2
)

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(captureFrac × (1 + 0.2 × quality)) + 0.5 × timingErr²
// where timingErr is the relative miss of the disrupt reference duration.
// Runs that never finish disruption pay a flat cost on top.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	quality := computeQuality(r.windowStats)
	fitness := -r.captureFrac() * (1 + qualityBonusFrac*quality)

	ref := fe.baseConfig.Phases.DisruptReference
	d := r.disruptDuration()
	if d < 0 {
		return fitness + unfinishedCost
	}
	if ref > 0 {
		e := (d - ref) / ref
		fitness += timingWeight * e * e
	}
	if !r.finished {
		fitness += unfinishedCost / 2
	}
	return fitness
}

// Quality component weights.
const (
	qualityWeightFill      = 0.5
	qualityWeightStability = 0.5

	qualityMinDisk = 20 // exclude windows with fewer disk particles
)

// computeQuality scores the disk ∈ [0, 1] over the accrete phase: how full
// it is and how steady its median radius stays.
func computeQuality(windows []telemetry.WindowStats) float64 {
	var fillSum float64
	var medians []float64
	peak := 0

	for _, w := range windows {
		if w.DiskCount > peak {
			peak = w.DiskCount
		}
	}
	if peak == 0 {
		return 0
	}

	for _, w := range windows {
		if w.Phase != phase.Accrete.String() || w.DiskCount < qualityMinDisk {
			continue
		}
		fillSum += float64(w.DiskCount) / float64(peak)
		medians = append(medians, w.DiskRadiusP50)
	}
	if len(medians) == 0 {
		return 0
	}

	fillScore := fillSum / float64(len(medians))

	stabilityScore := 0.0
	if len(medians) >= 2 {
		mean, std := telemetry.MeanStd(medians)
		if mean > 0 {
			c := std / mean
			stabilityScore = math.Exp(-c * c * 100)
		}
	}

	return clamp01(qualityWeightFill*fillScore + qualityWeightStability*stabilityScore)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
