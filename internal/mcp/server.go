package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/wm"
)

const (
	ServerName    = "tagwm"
	ServerVersion = "0.1.0"
)

// Remote is the slice of the IPC client the tools need.
type Remote interface {
	State() (*ipc.StateData, error)
	Exec(command, arg string, args []string) error
	SetStatus(text string) error
	Reload() error
}

// Server is the MCP server exposing window manager control.
type Server struct {
	mcpServer *mcpsdk.Server
	remote    Remote
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to a running
// window manager through remote.
func NewServer(remote Remote, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		remote: remote,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_state",
		Description: "Return the window manager state: tag names, status text, and for every monitor its geometry, selected tags, layout, master settings, clients and focus stack. Pass monitor to restrict the result to one monitor.",
	}, s.handleGetState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: fmt.Sprintf("Run a window manager command as if its key binding was pressed. Known commands: %s.", strings.Join(wm.CommandNames(), ", ")),
	}, s.handleRunCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_status",
		Description: "Override the status text drawn at the right of the bar. An empty text hands the status back to the root window name.",
	}, s.handleSetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload",
		Description: "Reload the configuration file. An invalid file is rejected and the running configuration stays in effect.",
	}, s.handleReload)
}
