// experiment runs the benchmark levels against a bridge that is
// already hosting the autonomous controller:
//
//	1: four corners, static obstacles
//	2: four corners, moving obstacles at a fixed speed
//	3: speed sweep, four corners per speed, plus an HTML chart
//
// Results are written as JSON next to the chart.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teslashibe/go-navsim/internal/config"
	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/experiment"
	"github.com/teslashibe/go-navsim/pkg/sim"
)

func main() {
	outDir := flag.String("out", ".", "directory for result files")
	logLevel := flag.String("log", "info", "log level (debug, info, warn, error)")
	flag.Parse()
	log.Init(*logLevel)

	level := flag.Arg(0)
	if level != "1" && level != "2" && level != "3" {
		fmt.Fprintln(os.Stderr, "usage: experiment [-out dir] <level 1|2|3>")
		os.Exit(2)
	}

	client := sim.NewClient(config.SimAPI(fmt.Sprintf("http://127.0.0.1:%s", config.BridgePort())))
	runner := experiment.NewRunner(client, experiment.DefaultConfig())

	switch level {
	case "1":
		summary, err := runner.RunLevel1()
		exitOn(err)
		exitOn(experiment.WriteJSON(filepath.Join(*outDir, "level1.json"), summary))
		log.Info("level 1 done", "average_collisions", summary.AverageCollisions)

	case "2":
		summary, err := runner.RunLevel2()
		exitOn(err)
		exitOn(experiment.WriteJSON(filepath.Join(*outDir, "level2.json"), summary))
		log.Info("level 2 done", "average_collisions", summary.AverageCollisions)

	case "3":
		points, err := runner.RunLevel3()
		exitOn(err)
		exitOn(experiment.WriteJSON(filepath.Join(*outDir, "level3.json"), points))
		chart := filepath.Join(*outDir, "level3.html")
		exitOn(experiment.SaveSpeedChart(points, chart))
		log.Info("level 3 done", "points", len(points), "chart", chart)
	}
}

func exitOn(err error) {
	if err != nil {
		log.Error("experiment failed", "err", err)
		os.Exit(1)
	}
}
