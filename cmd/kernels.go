package cmd

import (
	"github.com/tseval/tseval/eval"
	"github.com/tseval/tseval/eval/distance"
)

// Thin constructors keeping Config.NewKernel readable.

func newDTW(c Config) eval.DistanceKernel { return distance.NewDTW(c.Storing) }

func newEDR(c Config) (eval.DistanceKernel, error) { return distance.NewEDR(c.Epsilon, c.Storing) }

func newERP(c Config) eval.DistanceKernel { return distance.NewERP(c.G, c.Storing) }

func newTWED(c Config) (eval.DistanceKernel, error) {
	return distance.NewTWED(c.Nu, c.Lambda, c.Storing)
}

func newManhattan(c Config) eval.DistanceKernel { return distance.NewManhattan(c.Storing) }

func newSakoeChibaDTW(c Config) (eval.DistanceKernel, error) {
	return distance.NewSakoeChibaDTW(c.R, c.W, c.Storing)
}

func newSakoeChibaEDR(c Config) (eval.DistanceKernel, error) {
	return distance.NewSakoeChibaEDR(c.Epsilon, c.R, c.W, c.Storing)
}

func newSakoeChibaERP(c Config) (eval.DistanceKernel, error) {
	return distance.NewSakoeChibaERP(c.G, c.R, c.W, c.Storing)
}

func newItakuraDTW(c Config) (eval.DistanceKernel, error) {
	return distance.NewItakuraDTW(c.R, c.W, c.Storing)
}
