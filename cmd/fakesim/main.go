// fakesim connects to the bridge as a simulated arena. It executes
// motion commands against a deterministic world model and streams
// synthetic camera frames back, so the whole stack can run headless.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-navsim/internal/config"
	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/fakesim"
	"github.com/teslashibe/go-navsim/pkg/protocol"
)

const (
	motionTick   = 100 * time.Millisecond
	writeTimeout = 10 * time.Second
)

func main() {
	bridgeURL := flag.String("bridge", "", "bridge WebSocket URL (default ws://localhost:<BRIDGE_PORT>/ws)")
	logLevel := flag.String("log", "info", "log level (debug, info, warn, error)")
	flag.Parse()
	log.Init(*logLevel)

	url := *bridgeURL
	if url == "" {
		url = fmt.Sprintf("ws://localhost:%s/ws", config.BridgePort())
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Error("dial bridge", "url", url, "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Info("connected to bridge", "url", url)

	world := fakesim.NewWorld()
	outbound := make(chan protocol.Event, 64)
	done := make(chan struct{})

	// Sole writer for the connection.
	go func() {
		for ev := range outbound {
			data, err := json.Marshal(ev)
			if err != nil {
				log.Warn("marshal event", "err", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn("write event", "err", err)
				return
			}
		}
	}()

	// Obstacle motion ticker.
	go func() {
		ticker := time.NewTicker(motionTick)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				emit(outbound, world.Step())
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			close(done)
			log.Info("bridge connection closed", "err", err)
			return
		}
		cmd, err := protocol.ParseCommand(data)
		if err != nil {
			log.Warn("bad command", "err", err)
			continue
		}

		if cmd.Name == protocol.CmdCaptureImage {
			ev, err := world.Capture()
			if err != nil {
				log.Warn("render frame", "err", err)
				continue
			}
			emit(outbound, []protocol.Event{ev})
			continue
		}
		emit(outbound, world.Apply(cmd))
	}
}

// emit queues events without blocking the read loop.
func emit(out chan<- protocol.Event, events []protocol.Event) {
	for _, ev := range events {
		select {
		case out <- ev:
		default:
		}
	}
}
