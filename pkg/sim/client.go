// Package sim is the HTTP client for the simulator bridge. It is the
// polling transport of the control loop: it acquires fresh camera
// frames, issues relative motion, and reads world state. All planning
// lives elsewhere; this package is I/O only.
package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-navsim/internal/httpc"
	"github.com/teslashibe/go-navsim/pkg/nav"
	"github.com/teslashibe/go-navsim/pkg/protocol"
)

// ErrNoFrame is returned by AcquireFrame when no frame newer than the
// previously consumed one arrived within the wait window. It is
// retryable; real transport failures are returned as distinct errors.
var ErrNoFrame = errors.New("no fresh frame")

// pollInterval is how often AcquireFrame re-reads /last_capture while
// waiting for a fresh frame.
const pollInterval = 50 * time.Millisecond

// Frame is one camera capture: encoded image bytes plus the robot's
// reported position at capture time. Timestamp is the simulator's
// monotonic capture counter, used only to reject stale reads.
type Frame struct {
	Image     []byte
	Position  nav.Position
	Timestamp int64
}

// Status mirrors the bridge /status payload.
type Status struct {
	Collisions   int           `json:"collisions"`
	GoalReached  bool          `json:"goal_reached"`
	GoalPosition *nav.Position `json:"goal_position"`
}

// Client talks to the bridge HTTP API. It remembers the timestamp of
// the last consumed frame so every AcquireFrame returns a distinct
// capture. Not safe for concurrent use; episodes run sequentially on
// one client.
type Client struct {
	base string
	http *http.Client

	lastConsumedTS int64
	hasConsumed    bool
}

// NewClient creates a client for the given bridge base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: httpc.NewClient(httpc.DefaultTimeout),
	}
}

// Reset clears world and collision state.
func (c *Client) Reset() error {
	return c.postJSON("/reset", nil, nil)
}

// SetGoalCorner places the goal at a named arena corner. If the bridge
// response carries no goal position, the corner is resolved locally
// with the shared convention so both sides agree.
func (c *Client) SetGoalCorner(corner string) (nav.Position, error) {
	var resp struct {
		Goal     *nav.Position `json:"goal"`
		Position *nav.Position `json:"position"`
	}
	payload := map[string]string{"corner": corner}
	if err := c.postJSON("/goal", payload, &resp); err != nil {
		return nav.Position{}, err
	}
	if resp.Goal != nil {
		return *resp.Goal, nil
	}
	if resp.Position != nil {
		return *resp.Position, nil
	}
	return nav.CornerToCoords(corner, nav.DefaultHalfExtent, nav.DefaultCornerMargin)
}

// SetGoalCoords places the goal at explicit coordinates.
func (c *Client) SetGoalCoords(pos nav.Position) (nav.Position, error) {
	var resp struct {
		Goal *nav.Position `json:"goal"`
	}
	if err := c.postJSON("/goal", pos, &resp); err != nil {
		return nav.Position{}, err
	}
	if resp.Goal != nil {
		return *resp.Goal, nil
	}
	return pos, nil
}

// MoveRelative rotates by turn degrees then advances distance.
func (c *Client) MoveRelative(turn, distance float64) error {
	payload := map[string]float64{"turn": turn, "distance": distance}
	return c.postJSON("/move_rel", payload, nil)
}

// Stop halts the robot.
func (c *Client) Stop() error {
	return c.postJSON("/stop", nil, nil)
}

// Collisions reads the world's monotonic collision counter.
func (c *Client) Collisions() (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.getJSON("/collisions", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// SetObstacleMotion toggles moving obstacles.
func (c *Client) SetObstacleMotion(enabled bool, speed float64, bounds nav.Bounds, bounce bool) error {
	payload := map[string]interface{}{
		"enabled": enabled,
		"speed":   speed,
		"bounds":  bounds,
		"bounce":  bounce,
	}
	return c.postJSON("/obstacles/motion", payload, nil)
}

// Status reads collision count and goal-reached state.
func (c *Client) Status() (Status, error) {
	var st Status
	err := c.getJSON("/status", &st)
	return st, err
}

// lastCapture mirrors the bridge /last_capture payload.
type lastCapture struct {
	Timestamp int64         `json:"timestamp"`
	Image     string        `json:"image"`
	Position  *nav.Position `json:"position"`
}

// AcquireFrame triggers a capture and waits up to timeout for a frame
// distinct from the previously consumed one. Stale or missing frames
// inside the window degrade to ErrNoFrame; HTTP failures are surfaced
// to the caller.
func (c *Client) AcquireFrame(timeout time.Duration) (*Frame, error) {
	if err := c.postJSON("/capture", nil, nil); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var latest lastCapture
		if err := c.getJSON("/last_capture", &latest); err != nil {
			return nil, err
		}
		if latest.Timestamp == 0 || (c.hasConsumed && latest.Timestamp == c.lastConsumedTS) {
			time.Sleep(pollInterval)
			continue
		}
		if latest.Position == nil || latest.Image == "" {
			time.Sleep(pollInterval)
			continue
		}

		raw, err := protocol.DecodeImagePayload(latest.Image)
		if err != nil {
			return nil, err
		}
		c.lastConsumedTS = latest.Timestamp
		c.hasConsumed = true
		return &Frame{
			Image:     raw,
			Position:  *latest.Position,
			Timestamp: latest.Timestamp,
		}, nil
	}
	return nil, ErrNoFrame
}

func (c *Client) postJSON(path string, payload, out interface{}) error {
	body := []byte("{}")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", path, err)
		}
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(path, resp, out)
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(path, resp, out)
}

func decodeResponse(path string, resp *http.Response, out interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: bridge returned %s", path, resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
