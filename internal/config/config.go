// Package config provides configuration helpers for go-navsim commands.
package config

import "os"

// Default endpoints. The bridge serves its HTTP control API on BridgePort
// and the simulator WebSocket on WSPort, matching the browser simulator.
const (
	DefaultBridgePort = "5000"
	DefaultWSHost     = "localhost"
	DefaultWSPort     = "8080"
)

// SimAPI returns the bridge HTTP base URL from the SIM_API env var.
// Falls back to the provided default if not set.
func SimAPI(defaultURL string) string {
	if u := os.Getenv("SIM_API"); u != "" {
		return u
	}
	return defaultURL
}

// BridgePort returns the HTTP port for the bridge from BRIDGE_PORT.
func BridgePort() string {
	if p := os.Getenv("BRIDGE_PORT"); p != "" {
		return p
	}
	return DefaultBridgePort
}

// WSHost returns the WebSocket bind host from WS_HOST.
func WSHost() string {
	if h := os.Getenv("WS_HOST"); h != "" {
		return h
	}
	return DefaultWSHost
}

// WSPort returns the WebSocket bind port from WS_PORT.
func WSPort() string {
	if p := os.Getenv("WS_PORT"); p != "" {
		return p
	}
	return DefaultWSPort
}
