package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/1broseidon/tagwm/internal/runtimepath"
)

// ErrNotRunning is returned when no window manager listens on the socket.
var ErrNotRunning = errors.New("tagwm is not running")

// Client handles IPC communication with the window manager
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		if errors.Is(err, syscall.ENOENT) || errors.Is(err, syscall.ECONNREFUSED) || c.socketPath == "" {
			return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
		}
		return nil, fmt.Errorf("failed to connect to tagwm: %w", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("tagwm error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) send(command CommandType, payload any) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// Ping checks if the window manager is responding
func (c *Client) Ping() (*PingData, error) {
	resp, err := c.send(CommandPing, nil)
	if err != nil {
		return nil, err
	}
	var data PingData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse ping data: %w", err)
	}
	return &data, nil
}

// State retrieves a snapshot of monitors and clients.
func (c *Client) State() (*StateData, error) {
	resp, err := c.send(CommandState, nil)
	if err != nil {
		return nil, err
	}
	var state StateData
	if err := json.Unmarshal(resp.Data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state data: %w", err)
	}
	return &state, nil
}

// Exec runs a named window manager command.
func (c *Client) Exec(command, arg string, args []string) error {
	_, err := c.send(CommandExec, ExecPayload{Command: command, Arg: arg, Args: args})
	return err
}

// SetStatus overrides the bar status text.
func (c *Client) SetStatus(text string) error {
	_, err := c.send(CommandSetStatus, SetStatusPayload{Text: text})
	return err
}

// Reload asks the window manager to reload its configuration file.
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// Quit stops the window manager.
func (c *Client) Quit() error {
	_, err := c.send(CommandQuit, nil)
	return err
}
