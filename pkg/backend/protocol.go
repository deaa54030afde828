// Package backend is the public API for external cwal backends.
//
// An external backend is an executable placed in ~/.config/cwal/backends/.
// When run with --backend-info it prints an Info as JSON. It then speaks one
// of two protocols:
//
//   - json-stdio: cwal writes a Request as JSON to stdin and reads a JSON
//     array of {"r","g","b"} objects from stdout.
//   - go-plugin: the binary calls Serve and cwal talks to it over net/rpc
//     through github.com/hashicorp/go-plugin.
package backend

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion is the backend API version, MAJOR.MINOR.PATCH.
	ProtocolVersion = "0.1.0"

	// MinCompatibleVersion is the oldest backend API version cwal accepts.
	MinCompatibleVersion = "0.1.0"

	// InfoFlag is the argument cwal passes to query backend metadata.
	InfoFlag = "--backend-info"

	// PluginName is the key the quantizer is dispensed under.
	PluginName = "quantizer"
)

// Protocol is the transport an external backend speaks.
type Protocol string

const (
	// ProtocolGoPlugin is net/rpc over hashicorp/go-plugin.
	ProtocolGoPlugin Protocol = "go-plugin"

	// ProtocolJSON is one JSON request on stdin and one JSON response on stdout.
	ProtocolJSON Protocol = "json-stdio"
)

// Handshake must match between cwal and go-plugin backends.
// Only the major protocol version takes part; minor versions are checked via Info.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  uint(CurrentVersion().Major), // #nosec G115 -- constant, non-negative
	MagicCookieKey:   "CWAL_BACKEND",
	MagicCookieValue: "cwal_palette_backend",
}

// Info is printed by a backend in response to InfoFlag.
type Info struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	ProtocolVersion string   `json:"protocol_version"`
	Description     string   `json:"description"`
	BackendProtocol Protocol `json:"backend_protocol"`
}

// Request asks a backend for the base colours of an image.
type Request struct {
	ImagePath string `json:"image_path"`
	MaxColors int    `json:"max_colors"`
}

// RGB is one colour in a response.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}
