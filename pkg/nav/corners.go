package nav

import (
	"fmt"
	"strings"
)

// Arena geometry. The floor is a square of side 2*DefaultHalfExtent
// centered at the origin; goals sit DefaultCornerMargin inside the
// walls.
const (
	DefaultHalfExtent   = 50.0
	DefaultCornerMargin = 5.0
)

// Bounds is the axis-aligned region moving obstacles are confined to.
type Bounds struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinZ float64 `json:"minZ"`
	MaxZ float64 `json:"maxZ"`
}

// ArenaBounds returns the default obstacle motion bounds.
func ArenaBounds() Bounds {
	e := DefaultHalfExtent - DefaultCornerMargin
	return Bounds{MinX: -e, MaxX: e, MinZ: -e, MaxZ: e}
}

// Corner sign convention, used everywhere in this repo:
// east is +x, west is -x, north is -z, south is +z. The screen-space
// aliases map TR=NE, TL=NW, BR=SE, BL=SW (the camera looks down -z, so
// "top" of the overhead view is north).
var cornerAliases = map[string]string{
	"NE": "NE", "EN": "NE", "TR": "NE",
	"NW": "NW", "WN": "NW", "TL": "NW",
	"SE": "SE", "ES": "SE", "BR": "SE",
	"SW": "SW", "WS": "SW", "BL": "SW",
}

// CornerToCoords resolves a named arena corner to world coordinates at
// the configured margin inward from the half extent. Returns an error
// for unknown names; episode setup must not start without a goal.
func CornerToCoords(corner string, halfExtent, margin float64) (Position, error) {
	canonical, ok := cornerAliases[strings.ToUpper(strings.TrimSpace(corner))]
	if !ok {
		return Position{}, fmt.Errorf("unknown corner %q (want NE/NW/SE/SW or TR/TL/BR/BL)", corner)
	}
	e := halfExtent - margin
	pos := Position{Y: 0}
	if strings.Contains(canonical, "E") {
		pos.X = e
	} else {
		pos.X = -e
	}
	if strings.Contains(canonical, "S") {
		pos.Z = e
	} else {
		pos.Z = -e
	}
	return pos, nil
}
