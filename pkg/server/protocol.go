package server

import (
	"fmt"

	"github.com/vango-dev/navcore/pkg/routes"
)

// Client message types.
const (
	TypeHello    = "hello"
	TypeNavigate = "navigate"
	TypeLocation = "location"
	TypeBack     = "back"
	TypeForward  = "forward"
)

// Server message ops.
const (
	OpPush    = "push"
	OpReplace = "replace"
	OpGo      = "go"
	OpMount   = "mount"
	OpState   = "state"
	OpError   = "error"
)

// ClientMessage is a message sent by the browser.
type ClientMessage struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Index   int    `json:"index,omitempty"`
	Replace bool   `json:"replace,omitempty"`
}

// Validate checks that the message has the fields its type needs.
func (m ClientMessage) Validate() error {
	switch m.Type {
	case TypeHello, TypeNavigate, TypeLocation:
		if m.Path == "" {
			return fmt.Errorf("%s message without path", m.Type)
		}
		if m.Index < 0 {
			return fmt.Errorf("%s message with negative index", m.Type)
		}
	case TypeBack, TypeForward:
	case "":
		return fmt.Errorf("message without type")
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// ServerMessage is a command sent to the browser.
type ServerMessage struct {
	Op      string        `json:"op"`
	Path    string        `json:"path,omitempty"`
	Delta   int           `json:"delta,omitempty"`
	View    routes.ViewID `json:"view,omitempty"`
	Index   int           `json:"index,omitempty"`
	Code    string        `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
}
