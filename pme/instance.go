/*
 * instance.go, part of gopme.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program. If not, see
 * <http://www.gnu.org/licenses/>.
 */

// Package pme is the orchestrator: it owns an Instance's scratch grids,
// FFT plan and worker pool, and drives the spread -> forward transform
// -> convolve -> inverse transform -> probe pipeline that turns a set
// of point charges in a periodic cell into a reciprocal-space energy,
// force and virial. It also exposes the stable, narrow boundary
// (Create/Setup/SetLatticeVectors/ComputeERec/ComputeEFRec/
// ComputeEFVRec/Destroy) callers outside this module are meant to use.
package pme

import (
	"fmt"
	"math"

	"github.com/rmera/gopme"
	"github.com/rmera/gopme/influence"
	"github.com/rmera/gopme/internal/fft3"
	"github.com/rmera/gopme/internal/workerpool"
	"github.com/rmera/gopme/lattice"
	"github.com/rmera/gopme/matrix"
)

// state tracks the Instance lifecycle: construction must precede
// lattice assignment, which must precede any compute call.
type state int

const (
	unconfigured state = iota
	configured
	latticeSet
)

// Config holds the parameters fixed for an Instance's lifetime: the
// pairwise kernel exponent, the Ewald splitting parameter, the
// B-spline interpolation order, the FFT grid dimensions, the overall
// scale factor applied to every computed energy/force/virial (a unit
// conversion constant, e.g. Coulomb's constant in the caller's unit
// system), and the thread count the worker pool is sized to.
type Config[T matrix.Real] struct {
	RPower      int
	Kappa       T
	SplineOrder int
	GridA       int
	GridB       int
	GridC       int
	ScaleFactor T
	NumThreads  int
}

func (c Config[T]) validate() error {
	if c.RPower < 1 {
		return gopme.NewError("rPower must be a positive integer")
	}
	if c.Kappa <= 0 {
		return gopme.NewError("kappa must be positive")
	}
	if c.SplineOrder < 4 || c.SplineOrder%2 != 0 {
		return gopme.NewError("spline order must be an even integer >= 4")
	}
	if c.GridA < c.SplineOrder || c.GridB < c.SplineOrder || c.GridC < c.SplineOrder {
		return gopme.NewError("grid dimensions must be at least the spline order")
	}
	if c.ScaleFactor == 0 {
		return gopme.NewError("scale factor must be nonzero")
	}
	return nil
}

// Instance is the reciprocal-space PME engine: one per (configuration,
// lattice) pair, reused across every compute call against that lattice
// (and, if SetLatticeVectors is called again, across a new one).
type Instance[T matrix.Real] struct {
	cfg   Config[T]
	state state

	pool *workerpool.Pool
	plan *fft3.Plan

	lat      *lattice.Lattice[T]
	fracInv  *matrix.Matrix[T] // Cartesian -> fractional (lattice.Cartesian^-1)
	theta    *influence.Table[T]
	grid     []float64
	spectrum []complex128

	virial [6]float64
}

// Create returns a bare, unconfigured Instance, mirroring the
// flat-call boundary's two-phase create/setup split: Create never
// fails, since it does nothing but allocate the value; Setup is where
// configuration is validated and the worker pool spawned.
func Create[T matrix.Real]() *Instance[T] {
	return &Instance[T]{}
}

// Setup validates cfg and spawns the worker pool, moving inst from
// "unconfigured" to "configured" (awaiting a lattice before any compute
// call is valid).
func (inst *Instance[T]) Setup(cfg Config[T]) error {
	if err := cfg.validate(); err != nil {
		return gopme.Decorate(err, "pme.Setup")
	}
	inst.pool.Close() // no-op if this is the first Setup call
	inst.cfg = cfg
	inst.pool = workerpool.New(cfg.NumThreads)
	inst.state = configured
	return nil
}

// NewInstance is a convenience combining Create and Setup for callers
// that never need the bare two-phase boundary form.
func NewInstance[T matrix.Real](cfg Config[T]) (*Instance[T], error) {
	inst := Create[T]()
	if err := inst.Setup(cfg); err != nil {
		return nil, err
	}
	return inst, nil
}

// NumThreads reports the worker pool's size.
func (inst *Instance[T]) NumThreads() int { return inst.pool.NumWorkers() }

// Config returns a copy of the instance's fixed configuration.
func (inst *Instance[T]) Config() Config[T] { return inst.cfg }

// Destroy releases the instance's worker pool. An Instance must not be
// used after Destroy.
func (inst *Instance[T]) Destroy() {
	inst.pool.Close()
}

// SetLatticeVectors (re)builds the instance's lattice, reciprocal
// influence table and FFT plan. It must be called at least once before
// any compute call, and may be called again to move the same Instance
// (and its scratch) to a new cell, e.g. under NPT dynamics.
func (inst *Instance[T]) SetLatticeVectors(a, b, c, alpha, beta, gamma T, kind lattice.Type) error {
	if inst.state == unconfigured {
		panic(gopme.PanicMsg("gopme/pme: SetLatticeVectors called before Setup"))
	}
	lat, err := lattice.Build(a, b, c, alpha, beta, gamma, kind)
	if err != nil {
		return gopme.Decorate(err, "pme.SetLatticeVectors")
	}
	fracInv, err := matrix.Inverse(lat.Cartesian)
	if err != nil {
		return gopme.Decorate(err, "pme.SetLatticeVectors")
	}

	crystRecip := lat.Reciprocal.Clone()
	crystRecip.Scale(T(1/(2*math.Pi)), crystRecip)

	theta, err := influence.Build(inst.cfg.RPower, inst.cfg.Kappa, inst.cfg.SplineOrder,
		inst.cfg.GridA, inst.cfg.GridB, inst.cfg.GridC, crystRecip, lat.Volume)
	if err != nil {
		return gopme.Decorate(err, "pme.SetLatticeVectors")
	}

	inst.lat = lat
	inst.fracInv = fracInv
	inst.theta = theta
	inst.plan = fft3.NewPlan(inst.cfg.GridA, inst.cfg.GridB, inst.cfg.GridC, inst.pool)
	inst.grid = make([]float64, inst.cfg.GridA*inst.cfg.GridB*inst.cfg.GridC)
	inst.spectrum = make([]complex128, inst.plan.HalfComplexLen())
	inst.state = latticeSet
	return nil
}

// StressTensor converts the virial accumulated by the last
// ComputeEFVRec call into the symmetric 3x3 Cartesian stress tensor.
func (inst *Instance[T]) StressTensor() *matrix.Matrix[T] {
	var v [6]T
	for i, x := range inst.virial {
		v[i] = T(x)
	}
	return lattice.StressTensor(v)
}

func (inst *Instance[T]) requireLattice(caller string) error {
	switch inst.state {
	case unconfigured:
		panic(gopme.PanicMsg(fmt.Sprintf("gopme/pme: %s called before Setup", caller)))
	case configured:
		return gopme.NewError(fmt.Sprintf("%s: lattice not set", caller))
	}
	return nil
}
