package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tagwm/internal/runtimepath"
)

// Handler carries out IPC commands against the running window manager.
type Handler interface {
	State(ctx context.Context) (*StateData, error)
	Exec(ctx context.Context, p ExecPayload) error
	SetStatus(ctx context.Context, text string) error
	Reload(ctx context.Context) error
	Quit(ctx context.Context) error
}

// handlerTimeout bounds how long a request waits for the dispatcher.
const handlerTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	version      string
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// ServerConfig configures an IPC server. An empty SocketPath resolves the
// default runtime socket.
type ServerConfig struct {
	SocketPath string
	Version    string
	Logger     *slog.Logger
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig, handler Handler) (*Server, error) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		version:    cfg.Version,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections. A socket left behind by a
// live instance is refused; a stale one is replaced.
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, time.Second); err == nil {
		conn.Close()
		return fmt.Errorf("another instance is listening on %s", s.socketPath)
	}
	// Remove existing socket if present
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("ipc accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * handlerTimeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read error", "error", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	s.logger.Debug("ipc request", "command", req.Command)

	switch req.Command {
	case CommandPing:
		return s.ok(PingData{
			Version:       s.version,
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		})
	case CommandState:
		st, err := s.handler.State(ctx)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to read state: %v", err))
		}
		return s.ok(st)
	case CommandExec:
		var p ExecPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid exec payload: %v", err))
		}
		if p.Command == "" {
			return NewErrorResponse("command is required")
		}
		if err := s.handler.Exec(ctx, p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return s.ok(nil)
	case CommandSetStatus:
		var p SetStatusPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid set_status payload: %v", err))
		}
		if err := s.handler.SetStatus(ctx, p.Text); err != nil {
			return NewErrorResponse(err.Error())
		}
		return s.ok(nil)
	case CommandReload:
		if err := s.handler.Reload(ctx); err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to reload config: %v", err))
		}
		return s.ok(nil)
	case CommandQuit:
		if err := s.handler.Quit(ctx); err != nil {
			return NewErrorResponse(err.Error())
		}
		return s.ok(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server and waits for in-flight
// requests.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
