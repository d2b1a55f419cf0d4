// navigate runs one polling navigation episode: capture a frame over
// HTTP, plan a heading, move, repeat until the goal corner is reached
// or the step budget runs out.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/teslashibe/go-navsim/internal/config"
	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/agent"
	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/sim"
	"github.com/teslashibe/go-navsim/pkg/video"
	"github.com/teslashibe/go-navsim/pkg/vision"
)

func main() {
	corner := flag.String("corner", "NE", "goal corner (NE/NW/SE/SW or TR/TL/BR/BL)")
	goalX := flag.Float64("x", 0, "explicit goal x (used with -z when -corner is empty)")
	goalZ := flag.Float64("z", 0, "explicit goal z")
	moving := flag.Bool("moving", false, "enable moving obstacles")
	speed := flag.Float64("speed", 0.06, "obstacle speed when -moving")
	maxSteps := flag.Int("max-steps", 0, "override the step budget")
	heuristic := flag.String("vision", vision.HeuristicHSV, "vision heuristic (hsv or density)")
	videoPath := flag.String("video", "", "record an annotated episode video to this path")
	logLevel := flag.String("log", "info", "log level (debug, info, warn, error)")
	flag.Parse()
	log.Init(*logLevel)

	cfg := agent.DefaultConfig()
	cfg.Corner = *corner
	if *corner == "" {
		cfg.Goal = &nav.Position{X: *goalX, Z: *goalZ}
	}
	cfg.MovingObstacles = *moving
	cfg.ObstacleSpeed = *speed
	if *maxSteps > 0 {
		cfg.MaxSteps = *maxSteps
	}

	pipeline, err := vision.NewPipeline(vision.Config{
		Heuristic:   *heuristic,
		NumHeadings: cfg.NumHeadings,
		FOVDeg:      cfg.FOVDeg,
	})
	if err != nil {
		log.Error("vision setup", "err", err)
		os.Exit(1)
	}

	var recorder agent.Recorder
	if *videoPath != "" {
		recorder = video.NewWriter(*videoPath, pipeline)
	}

	client := sim.NewClient(config.SimAPI(fmt.Sprintf("http://127.0.0.1:%s", config.BridgePort())))
	navigator := agent.New(client, pipeline, cfg, recorder)

	result, err := navigator.Run()
	if err != nil {
		log.Error("episode failed", "err", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(map[string]interface{}{
		"corner":       cfg.Corner,
		"goal_reached": result.GoalReached,
		"steps":        result.Steps,
		"collisions":   result.Collisions,
	}, "", "  ")
	fmt.Println(string(out))
}
