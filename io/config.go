package io

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/collide"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/generate"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/sim"
)

const (
	ExampleSimulateFile = `[Simulate]

#######################
# Required Parameters #
#######################

# Trajectory file. Every written frame adds one row per disk.
Output = path/to/trajectory.csv

#######################
# Optional Parameters #
#######################

# Event log, one row per applied collision. It is the input to -Analyze.
# EventOutput = path/to/events.txt

# Random initial state. These are the defaults.
# Particles = 250
# Radius = 0.0005
# Mass = 1
# InitialVelocity = 1
# Seed = 0

# Container geometry. If ObstacleMass is positive, the obstacle starts at rest
# at the origin and moves like any other disk. Otherwise it is fixed.
# ContainerRadius = 0.05
# ObstacleRadius = 0.005
# ObstacleMass = 0

# Set to false to let disks pass through one another.
# InternalCollisions = true

# Simulated time at which the run stops.
# FinalTime = 1

# Lazy keeps stale predictions in the schedule and drops them when they come
# up. Rebuild re-predicts every disk after each collision. Lazy is much faster
# for large systems.
# Strategy = Lazy

# Only write a frame every OutputEvery collisions. The event log is never
# thinned.
# OutputEvery = 1

# Number of pending writes buffered between the simulation and the disk.
# SinkDepth = 64

# Read the initial state from a whitespace-separated table with the columns
#   id radius mass x y vx vy
# instead of generating it. Overrides Particles, Radius, Mass, and
# InitialVelocity.
# InitialConditions = path/to/particles.txt

# Output files which are useful for profiling and debugging.
# ProfileFile = prof.out
# LogFile = log.out
# Verbose = false`

	ExampleAnalyzeFile = `[Analyze]

#######################
# Required Parameters #
#######################

# Event log written by -Simulate.
EventInput = path/to/events.txt
# Pressure table.
Output = path/to/pressure.txt

# The same geometry the simulation was run with.
ContainerRadius = 0.05
ObstacleRadius = 0.005
FinalTime = 1

#######################
# Optional Parameters #
#######################

# Number of time intervals the pressure is averaged over.
# Bins = 20

# ID of the obstacle when it was simulated as a moving disk. Collisions with it
# count towards the obstacle's pressure.
# ObstacleID = -1

# Directory where figures are written. No figures are made if this is unset.
# PlotDir = path/to/plots

# ProfileFile = prof.out
# LogFile = log.out
# Verbose = false`
)

type SharedConfig struct {
	// Optional
	LogFile, ProfileFile string
	Verbose              bool
}

func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

type SimulateConfig struct {
	SharedConfig

	// Required
	Output string

	// Optional
	EventOutput                   string
	Particles                     int
	Radius, Mass, InitialVelocity float64
	Seed                          int64

	ContainerRadius, ObstacleRadius, ObstacleMass float64
	InternalCollisions                            bool

	FinalTime              float64
	Strategy               string
	OutputEvery, SinkDepth int
	InitialConditions      string
}

func DefaultSimulateWrapper() *SimulateWrapper {
	con := SimulateConfig{}
	con.Particles = 250
	con.Radius = 5e-4
	con.Mass = 1
	con.InitialVelocity = 1
	con.ContainerRadius = 0.05
	con.ObstacleRadius = 0.005
	con.InternalCollisions = true
	con.FinalTime = 1
	con.Strategy = "Lazy"
	con.OutputEvery = 1
	con.SinkDepth = 64
	return &SimulateWrapper{con}
}

func (con *SimulateConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SimulateConfig) ValidEventOutput() bool {
	return con.EventOutput != ""
}
func (con *SimulateConfig) ValidParticles() bool {
	return con.Particles >= 0
}
func (con *SimulateConfig) ValidRadius() bool {
	return positive(con.Radius)
}
func (con *SimulateConfig) ValidMass() bool {
	return positive(con.Mass)
}
func (con *SimulateConfig) ValidInitialVelocity() bool {
	return con.InitialVelocity >= 0 && !math.IsInf(con.InitialVelocity, 0)
}
func (con *SimulateConfig) ValidContainerRadius() bool {
	return positive(con.ContainerRadius)
}
func (con *SimulateConfig) ValidObstacleRadius() bool {
	return con.ObstacleRadius >= 0 && con.ObstacleRadius < con.ContainerRadius
}
func (con *SimulateConfig) ValidObstacleMass() bool {
	return con.ObstacleMass >= 0 && !math.IsInf(con.ObstacleMass, 0)
}
func (con *SimulateConfig) ValidFinalTime() bool {
	return positive(con.FinalTime)
}
func (con *SimulateConfig) ValidStrategy() bool {
	_, err := collide.ParseStrategy(con.Strategy)
	return err == nil
}
func (con *SimulateConfig) ValidOutputEvery() bool {
	return con.OutputEvery >= 0
}
func (con *SimulateConfig) ValidSinkDepth() bool {
	return con.SinkDepth > 0
}
func (con *SimulateConfig) ValidInitialConditions() bool {
	return con.InitialConditions != ""
}

// Check returns an error describing the first invalid field, if any.
func (con *SimulateConfig) Check() error {
	switch {
	case !con.ValidOutput():
		return errors.New("Invalid/non-existent 'Output' value.")
	case !con.ValidParticles():
		return errors.New("Invalid 'Particles' value.")
	case !con.ValidRadius():
		return errors.New("Invalid 'Radius' value.")
	case !con.ValidMass():
		return errors.New("Invalid 'Mass' value.")
	case !con.ValidInitialVelocity():
		return errors.New("Invalid 'InitialVelocity' value.")
	case !con.ValidContainerRadius():
		return errors.New("Invalid 'ContainerRadius' value.")
	case !con.ValidObstacleRadius():
		return errors.New(
			"Invalid 'ObstacleRadius' value. It must be non-negative and " +
				"smaller than 'ContainerRadius'.",
		)
	case !con.ValidObstacleMass():
		return errors.New("Invalid 'ObstacleMass' value.")
	case !con.ValidFinalTime():
		return errors.New("Invalid/non-existent 'FinalTime' value.")
	case !con.ValidStrategy():
		return errors.Errorf(
			"Invalid 'Strategy' value '%s'. Must be one of [Lazy | Rebuild].",
			con.Strategy,
		)
	case !con.ValidOutputEvery():
		return errors.New("Invalid 'OutputEvery' value.")
	case !con.ValidSinkDepth():
		return errors.New("Invalid 'SinkDepth' value.")
	}
	return nil
}

// Scene returns the container described by con.
func (con *SimulateConfig) Scene() collide.Scene {
	return collide.Scene{
		ContainerRadius:    con.ContainerRadius,
		ObstacleRadius:     con.ObstacleRadius,
		ObstacleMass:       con.ObstacleMass,
		InternalCollisions: con.InternalCollisions,
	}
}

// Sim returns the loop parameters described by con.
func (con *SimulateConfig) Sim() (sim.Config, error) {
	strat, err := collide.ParseStrategy(con.Strategy)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Scene:       con.Scene(),
		Horizon:     con.FinalTime,
		Strategy:    strat,
		OutputEvery: con.OutputEvery,
		Seed:        con.Seed,
		Log:         con.Verbose,
	}, nil
}

// Generator returns the settings for a random initial state.
func (con *SimulateConfig) Generator() generate.Settings {
	return generate.Settings{
		N:               con.Particles,
		Radius:          con.Radius,
		Mass:            con.Mass,
		InitialVelocity: con.InitialVelocity,
		Seed:            con.Seed,
		ContainerRadius: con.ContainerRadius,
		ObstacleRadius:  con.ObstacleRadius,
		ObstacleMass:    con.ObstacleMass,
	}
}

type AnalyzeConfig struct {
	SharedConfig

	// Required
	EventInput, Output              string
	ContainerRadius, ObstacleRadius float64
	FinalTime                       float64

	// Optional
	Bins       int
	ObstacleID int
	PlotDir    string
}

func DefaultAnalyzeWrapper() *AnalyzeWrapper {
	con := AnalyzeConfig{}
	con.Bins = 20
	con.ObstacleID = -1
	return &AnalyzeWrapper{con}
}

// Scene returns the container the analyzed run was simulated in.
func (con *AnalyzeConfig) Scene() collide.Scene {
	return collide.Scene{
		ContainerRadius: con.ContainerRadius,
		ObstacleRadius:  con.ObstacleRadius,
	}
}

func (con *AnalyzeConfig) ValidEventInput() bool {
	return con.EventInput != ""
}
func (con *AnalyzeConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *AnalyzeConfig) ValidContainerRadius() bool {
	return positive(con.ContainerRadius)
}
func (con *AnalyzeConfig) ValidObstacleRadius() bool {
	return con.ObstacleRadius >= 0 && con.ObstacleRadius < con.ContainerRadius
}
func (con *AnalyzeConfig) ValidFinalTime() bool {
	return positive(con.FinalTime)
}
func (con *AnalyzeConfig) ValidBins() bool {
	return con.Bins > 0
}
func (con *AnalyzeConfig) ValidPlotDir() bool {
	return con.PlotDir != ""
}

// Check returns an error describing the first invalid field, if any.
func (con *AnalyzeConfig) Check() error {
	switch {
	case !con.ValidEventInput():
		return errors.New("Invalid/non-existent 'EventInput' value.")
	case !con.ValidOutput():
		return errors.New("Invalid/non-existent 'Output' value.")
	case !con.ValidContainerRadius():
		return errors.New("Invalid/non-existent 'ContainerRadius' value.")
	case !con.ValidObstacleRadius():
		return errors.New("Invalid 'ObstacleRadius' value.")
	case !con.ValidFinalTime():
		return errors.New("Invalid/non-existent 'FinalTime' value.")
	case !con.ValidBins():
		return errors.New("Invalid 'Bins' value.")
	}
	return nil
}

type SimulateWrapper struct {
	Simulate SimulateConfig
}

type AnalyzeWrapper struct {
	Analyze AnalyzeConfig
}

// ReadConfig decodes fname into wrap, which should already hold the default
// values. Files ending in .toml are read as TOML and anything else as INI.
func ReadConfig(fname string, wrap interface{}) error {
	var err error
	if strings.ToLower(filepath.Ext(fname)) == ".toml" {
		_, err = toml.DecodeFile(fname, wrap)
	} else {
		err = gcfg.ReadFileInto(wrap, fname)
	}
	if err != nil {
		return errors.Wrapf(err, "reading config file %s", fname)
	}
	return nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
