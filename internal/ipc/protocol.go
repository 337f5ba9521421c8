package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing      CommandType = "ping"
	CommandState     CommandType = "state"
	CommandExec      CommandType = "exec"
	CommandSetStatus CommandType = "set_status"
	CommandReload    CommandType = "reload"
	CommandQuit      CommandType = "quit"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// PingData is returned by ping.
type PingData struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ExecPayload runs a named window manager command. Arg is parsed the same
// way as the arg of a key binding; Args is the argv of spawn.
type ExecPayload struct {
	Command string   `json:"command"`
	Arg     string   `json:"arg,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// SetStatusPayload overrides the bar status text. An empty text hands the
// status back to the root window name.
type SetStatusPayload struct {
	Text string `json:"text"`
}

// Rect is a rectangle on the wire.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ClientInfo describes one managed window.
type ClientInfo struct {
	Window     uint32 `json:"window"`
	Name       string `json:"name"`
	Tags       uint32 `json:"tags"`
	Geometry   Rect   `json:"geometry"`
	Floating   bool   `json:"floating,omitempty"`
	Fullscreen bool   `json:"fullscreen,omitempty"`
	Urgent     bool   `json:"urgent,omitempty"`
	Fixed      bool   `json:"fixed,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID       int          `json:"id"`
	Screen   Rect         `json:"screen"`
	Work     Rect         `json:"work"`
	TagSet   uint32       `json:"tagset"`
	Layout   string       `json:"layout"`
	Symbol   string       `json:"symbol"`
	MFact    float64      `json:"mfact"`
	NMaster  int          `json:"nmaster"`
	ShowBar  bool         `json:"show_bar"`
	Selected uint32       `json:"selected,omitempty"`
	Clients  []ClientInfo `json:"clients"`
	Stack    []uint32     `json:"stack"`
}

// StateData represents the data returned by state
type StateData struct {
	SelectedMonitor int           `json:"selected_monitor"`
	Tags            []string      `json:"tags"`
	Status          string        `json:"status"`
	Monitors        []MonitorInfo `json:"monitors"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
