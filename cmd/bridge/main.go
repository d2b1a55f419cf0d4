// bridge serves the simulator control API: HTTP for clients, WebSocket
// for arena simulators. With -autonomous it also hosts the push-based
// controller that drives the robot to a corner on its own.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-navsim/internal/config"
	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/bridge"
)

func main() {
	port := flag.String("port", config.BridgePort(), "HTTP listen port")
	autonomous := flag.Bool("autonomous", false, "drive the robot with the built-in controller")
	corner := flag.String("corner", "NE", "goal corner for the autonomous controller")
	logLevel := flag.String("log", "info", "log level (debug, info, warn, error)")
	flag.Parse()
	log.Init(*logLevel)

	server := bridge.NewServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *autonomous {
		cfg := bridge.DefaultControllerConfig()
		cfg.Corner = *corner
		controller, err := bridge.NewController(server, cfg)
		if err != nil {
			log.Error("controller setup", "err", err)
			os.Exit(1)
		}
		go func() {
			if err := controller.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("controller stopped", "err", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
		server.Shutdown()
	}()

	if err := server.Listen(":" + *port); err != nil {
		log.Error("bridge server", "err", err)
		os.Exit(1)
	}
}
