// Package bridge is the control-plane between HTTP clients (polling
// navigator, experiment runner) and arena simulators connected over
// WebSocket. It tracks episode state fed by simulator events and can
// host the push-based autonomous controller.
package bridge

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-navsim/internal/log"
	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/protocol"
)

// Server exposes the simulator control API.
type Server struct {
	app   *fiber.App
	hub   *Hub
	state *EpisodeState

	// onCapture, when set, receives every capture event in addition to
	// the state store. The push controller subscribes here.
	onCapture func(Capture)
}

// NewServer wires the fiber app, the hub, and the episode state.
func NewServer() *Server {
	s := &Server{
		hub:   NewHub(),
		state: NewEpisodeState(),
	}
	s.hub.OnEvent = s.handleSimulatorEvent

	app := fiber.New(fiber.Config{
		AppName:               "navsim bridge",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Post("/move", s.handleMove)
	app.Post("/move_rel", s.handleMoveRel)
	app.Post("/stop", s.handleStop)
	app.Post("/capture", s.handleCapture)
	app.Get("/last_capture", s.handleLastCapture)
	app.Post("/goal", s.handleGoal)
	app.Post("/obstacles/positions", s.handleObstaclePositions)
	app.Post("/obstacles/motion", s.handleObstacleMotion)
	app.Get("/collisions", s.handleCollisions)
	app.Post("/reset", s.handleReset)
	app.Get("/status", s.handleStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleSimulatorWS))

	s.app = app
	return s
}

// State returns the shared episode state.
func (s *Server) State() *EpisodeState {
	return s.state
}

// Hub returns the simulator hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// SetCaptureSink registers the push controller's frame intake. Must be
// called before Listen.
func (s *Server) SetCaptureSink(sink func(Capture)) {
	s.onCapture = sink
}

// Listen starts the hub and serves HTTP (and the /ws upgrade) on addr.
// Blocks.
func (s *Server) Listen(addr string) error {
	go s.hub.Run()
	log.Info("bridge listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleSimulatorWS services one simulator connection.
func (s *Server) handleSimulatorWS(conn *websocket.Conn) {
	newWSClient(s.hub, conn).run()
}

// handleSimulatorEvent is the single writer for EpisodeState. It runs
// on the WS read pumps.
func (s *Server) handleSimulatorEvent(data []byte) {
	ev, err := protocol.ParseEvent(data)
	if err != nil {
		log.Warn("unparseable simulator message", "err", err)
		return
	}
	switch ev.Type {
	case protocol.EventCollision:
		if ev.Collision {
			s.state.RecordCollision()
		}
	case protocol.EventCaptureResponse:
		c := s.state.RecordCapture(ev.Image, ev.Position, ev.HeadingDeg)
		if s.onCapture != nil {
			s.onCapture(c)
		}
	case protocol.EventGoalReached:
		s.state.SetGoalReached(ev.Position)
		log.Info("goal reached", "position", ev.Position)
	default:
		log.Debug("ignoring simulator message", "type", ev.Type)
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func (s *Server) broadcastOr400(c *fiber.Ctx, msg interface{}, status string) error {
	if err := s.hub.BroadcastJSON(msg); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"status": status, "command": msg})
}

func (s *Server) handleMove(c *fiber.Ctx) error {
	var req struct {
		X *float64 `json:"x"`
		Z *float64 `json:"z"`
	}
	if err := c.BodyParser(&req); err != nil || req.X == nil || req.Z == nil {
		return badRequest(c, `missing parameters: provide "x" and "z"`)
	}
	msg := protocol.NewMove(nav.Position{X: *req.X, Z: *req.Z})
	return s.broadcastOr400(c, msg, "move command sent")
}

func (s *Server) handleMoveRel(c *fiber.Ctx) error {
	var req struct {
		Turn     *float64 `json:"turn"`
		Distance *float64 `json:"distance"`
	}
	if err := c.BodyParser(&req); err != nil || req.Turn == nil || req.Distance == nil {
		return badRequest(c, `missing parameters: provide "turn" and "distance"`)
	}
	msg := protocol.NewMoveRelative(nav.Command{Turn: *req.Turn, Distance: *req.Distance})
	return s.broadcastOr400(c, msg, "move relative command sent")
}

func (s *Server) handleStop(c *fiber.Ctx) error {
	return s.broadcastOr400(c, protocol.NewStop(), "stop command sent")
}

func (s *Server) handleCapture(c *fiber.Ctx) error {
	return s.broadcastOr400(c, protocol.NewCaptureImage(), "capture command sent")
}

func (s *Server) handleLastCapture(c *fiber.Ctx) error {
	last := s.state.LastCapture()
	if last == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no capture yet"})
	}
	return c.JSON(last)
}

func (s *Server) handleGoal(c *fiber.Ctx) error {
	var req struct {
		Corner string   `json:"corner"`
		X      *float64 `json:"x"`
		Y      *float64 `json:"y"`
		Z      *float64 `json:"z"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid goal payload")
	}

	var pos nav.Position
	switch {
	case req.Corner != "":
		var err error
		pos, err = nav.CornerToCoords(req.Corner, nav.DefaultHalfExtent, nav.DefaultCornerMargin)
		if err != nil {
			return badRequest(c, err.Error())
		}
	case req.X != nil && req.Z != nil:
		pos = nav.Position{X: *req.X, Z: *req.Z}
		if req.Y != nil {
			pos.Y = *req.Y
		}
	default:
		return badRequest(c, `provide {"corner":"NE|NW|SE|SW"} or {"x":..,"z":..}`)
	}

	if err := s.hub.BroadcastJSON(protocol.NewSetGoal(pos)); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"status": "goal set", "goal": pos})
}

func (s *Server) handleObstaclePositions(c *fiber.Ctx) error {
	var req struct {
		Positions []nav.Position `json:"positions"`
	}
	if err := c.BodyParser(&req); err != nil || len(req.Positions) == 0 {
		return badRequest(c, `provide "positions" as a non-empty list`)
	}
	for i := range req.Positions {
		if req.Positions[i].Y == 0 {
			req.Positions[i].Y = 2 // default obstacle height
		}
	}
	msg := protocol.NewSetObstacles(req.Positions)
	if err := s.hub.BroadcastJSON(msg); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"status": "obstacles updated", "count": len(req.Positions)})
}

func (s *Server) handleObstacleMotion(c *fiber.Ctx) error {
	var req struct {
		Enabled    *bool       `json:"enabled"`
		Speed      *float64    `json:"speed"`
		Velocities [][]float64 `json:"velocities"`
		Bounds     *nav.Bounds `json:"bounds"`
		Bounce     *bool       `json:"bounce"`
	}
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return badRequest(c, `missing "enabled" boolean`)
	}

	speed := 0.05
	if req.Speed != nil {
		speed = *req.Speed
	}
	bounds := nav.ArenaBounds()
	if req.Bounds != nil {
		bounds = *req.Bounds
	}
	bounce := true
	if req.Bounce != nil {
		bounce = *req.Bounce
	}

	msg := protocol.NewSetObstacleMotion(*req.Enabled, speed, bounds, bounce)
	msg.Velocities = req.Velocities
	if err := s.hub.BroadcastJSON(msg); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"status": "obstacle motion updated", "config": msg})
}

func (s *Server) handleCollisions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"count": s.state.Collisions()})
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	s.state.Reset()
	if err := s.hub.BroadcastJSON(protocol.NewReset()); err != nil {
		// Counter is reset even with nobody connected.
		return c.JSON(fiber.Map{"status": "reset done (no simulators connected)", "collisions": 0})
	}
	return c.JSON(fiber.Map{"status": "reset broadcast", "collisions": 0})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	reached, pos := s.state.GoalReached()
	return c.JSON(fiber.Map{
		"collisions":    s.state.Collisions(),
		"goal_reached":  reached,
		"goal_position": pos,
	})
}
