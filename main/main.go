package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"runtime/pprof"
	"strings"
	"time"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/analyze"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/event"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/generate"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/io"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/particle"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/sim"
)

type FileGroup struct {
	log, prof *os.File
}

func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		simulateFile, analyzeFile, generateFile string
		exampleConfig                           string
	)
	vars := map[string]*string{
		"Simulate":      &simulateFile,
		"Analyze":       &analyzeFile,
		"Generate":      &generateFile,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&simulateFile, "Simulate", "",
		"Configuration file for [Simulate] mode.",
	)
	flag.StringVar(
		&analyzeFile, "Analyze", "",
		"Configuration file for [Analyze] mode.",
	)
	flag.StringVar(
		&generateFile, "Generate", "",
		"[Simulate] configuration file. Writes a random initial state to "+
			"its 'InitialConditions' file instead of running.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Simulate' "+
			"and 'Analyze'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Simulate", "Generate":
		fname := simulateFile
		if modeName == "Generate" {
			fname = generateFile
		}

		wrap := io.DefaultSimulateWrapper()
		if err := io.ReadConfig(fname, wrap); err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.Simulate

		if modeName == "Generate" {
			if !con.ValidInitialConditions() {
				log.Fatal("Invalid/non-existent 'InitialConditions' value.")
			}
			// The generated state is the output, so nothing is read.
			con.InitialConditions, con.Output = "", con.InitialConditions
		}
		if err := con.Check(); err != nil {
			log.Fatal(err.Error())
		}

		fg := openFileGroup(&con.SharedConfig)
		defer fg.Close()

		if modeName == "Generate" {
			generateMain(con)
		} else {
			simulateMain(con)
		}

	case "Analyze":
		wrap := io.DefaultAnalyzeWrapper()
		if err := io.ReadConfig(analyzeFile, wrap); err != nil {
			log.Fatal(err.Error())
		}
		con := &wrap.Analyze
		if err := con.Check(); err != nil {
			log.Fatal(err.Error())
		}

		fg := openFileGroup(&con.SharedConfig)
		defer fg.Close()

		analyzeMain(con)

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulate":
			fmt.Println(io.ExampleSimulateFile)
		case "Analyze":
			fmt.Println(io.ExampleAnalyzeFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Simulate' and 'Analyze'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but the simulator "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func openFileGroup(con *io.SharedConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		pprof.StartCPUProfile(fg.prof)
	}

	return fg
}

func initialState(con *io.SimulateConfig) []particle.Particle {
	if con.ValidInitialConditions() {
		ps, err := io.ReadParticles(con.InitialConditions)
		if err != nil {
			log.Fatal(err.Error())
		}
		if con.Verbose {
			log.Printf(
				"Read %d disks from %s.", len(ps), con.InitialConditions,
			)
		}
		return ps
	}

	ps, err := generate.Particles(con.Generator())
	if err != nil {
		log.Fatal(err.Error())
	}
	if con.Verbose {
		log.Printf("Generated %d disks with seed %d.", len(ps), con.Seed)
	}
	return ps
}

func generateMain(con *io.SimulateConfig) {
	ps := initialState(con)
	if err := io.WriteParticles(con.Output, ps); err != nil {
		log.Fatal(err.Error())
	}
}

func simulateMain(con *io.SimulateConfig) {
	ps := initialState(con)
	simCon, err := con.Sim()
	if err != nil {
		log.Fatal(err.Error())
	}

	files, err := io.OpenFileSink(con.Output, con.EventOutput)
	if err != nil {
		log.Fatal(err.Error())
	}
	sink := sim.NewAsyncSink(files, con.SinkDepth)

	s, err := sim.New(simCon, ps, sink)
	if err != nil {
		sink.Finish()
		log.Fatal(err.Error())
	}

	t0 := time.Now()
	if err := s.Run(); err != nil {
		log.Fatal(err.Error())
	}

	if con.Verbose {
		st := s.Stats()
		log.Printf(
			"Simulated %.4g s with %d events in %.3g s.",
			s.Now(), st.Accepted, time.Since(t0).Seconds(),
		)
	}
}

func analyzeMain(con *io.AnalyzeConfig) {
	events, err := io.ReadEventLog(con.EventInput)
	if err != nil {
		log.Fatal(err.Error())
	}

	bins, err := analyze.Pressure(
		events, con.Scene(), con.FinalTime, con.Bins, con.ObstacleID,
	)
	if err != nil {
		log.Fatal(err.Error())
	}

	f, err := os.Create(con.Output)
	if err != nil {
		log.Fatal(err.Error())
	}
	if err := analyze.WriteBins(f, bins); err != nil {
		log.Fatal(err.Error())
	}
	if err := f.Close(); err != nil {
		log.Fatal(err.Error())
	}

	hits := analyze.FirstHits(events, con.ObstacleID)
	if con.Verbose {
		counts := analyze.Counts(events)
		log.Printf(
			"%d events: %d %s, %d %s, %d %s. %d distinct obstacle hits.",
			len(events), counts[event.Wall], event.Wall,
			counts[event.Obstacle], event.Obstacle,
			counts[event.Particle], event.Particle, len(hits),
		)
	}

	if !con.ValidPlotDir() {
		return
	}
	if err := os.MkdirAll(con.PlotDir, 0777); err != nil {
		log.Fatal(err.Error())
	}
	analyze.PlotPressure(bins, path.Join(con.PlotDir, "pressure.png"))
	analyze.PlotFirstHits(
		hits, distinctDisks(events, con.ObstacleID),
		path.Join(con.PlotDir, "first_hits.png"),
	)
	plt.Execute()
}

// distinctDisks counts the disks which appear in the event log, leaving out
// the obstacle.
func distinctDisks(events []sim.EventRecord, obstacleID int) int {
	ids := map[int]bool{}
	for i := range events {
		ids[events[i].Subject] = true
		if events[i].Type == event.Particle {
			ids[events[i].Other] = true
		}
	}
	delete(ids, obstacleID)
	return len(ids)
}
