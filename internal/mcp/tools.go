package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/wm"
)

func (s *Server) handleGetState(_ context.Context, _ *mcpsdk.CallToolRequest, args GetStateInput) (*mcpsdk.CallToolResult, GetStateOutput, error) {
	st, err := s.remote.State()
	if err != nil {
		return nil, GetStateOutput{}, fmt.Errorf("failed to read state: %w", err)
	}
	if args.Monitor != nil {
		m := *args.Monitor
		if m < 0 || m >= len(st.Monitors) {
			return nil, GetStateOutput{}, fmt.Errorf("monitor %d out of range (have %d)", m, len(st.Monitors))
		}
		st.Monitors = []ipc.MonitorInfo{st.Monitors[m]}
	}
	s.logger.Debug("mcp get_state", "monitors", len(st.Monitors))
	return nil, GetStateOutput{State: *st}, nil
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, RunCommandOutput, error) {
	name := strings.TrimSpace(args.Command)
	if name == "" {
		return nil, RunCommandOutput{}, fmt.Errorf("command is required")
	}
	if !slices.Contains(wm.CommandNames(), name) {
		return nil, RunCommandOutput{}, fmt.Errorf("unknown command %q", name)
	}
	if err := s.remote.Exec(name, args.Arg, args.Args); err != nil {
		s.logger.Warn("mcp run_command failed", "command", name, "error", err)
		return nil, RunCommandOutput{}, err
	}
	s.logger.Info("mcp run_command", "command", name, "arg", args.Arg)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Ran %s", name)},
		},
	}, RunCommandOutput{Command: name, OK: true}, nil
}

func (s *Server) handleSetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, args SetStatusInput) (*mcpsdk.CallToolResult, SetStatusOutput, error) {
	if err := s.remote.SetStatus(args.Text); err != nil {
		return nil, SetStatusOutput{}, fmt.Errorf("failed to set status: %w", err)
	}
	return nil, SetStatusOutput{Text: args.Text}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.remote.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	s.logger.Info("mcp reload")
	return nil, ReloadOutput{Reloaded: true}, nil
}
