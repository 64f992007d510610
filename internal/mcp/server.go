package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ya-spark/netview-backendlog/internal/logging"
	"github.com/ya-spark/netview-backendlog/pkg/version"
)

const (
	serverName       = "NetView Logs"
	defaultTailLines = 50
	maxTailLines     = 1000
)

// Server is the MCP server for the NetView backend log directory.
type Server struct {
	mcp    *mcp.Server
	logs   *logging.RotatingLogger
	viewer *logging.Viewer
	logger *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// StatsInput is the (empty) input of log_stats.
type StatsInput struct{}

// FilesInput is the (empty) input of log_files.
type FilesInput struct{}

// FilesOutput lists log files, newest first.
type FilesOutput struct {
	Files []string `json:"files" jsonschema:"log file paths, newest (current) first"`
}

// TailInput defines the input schema for the log_tail tool.
type TailInput struct {
	Lines  int    `json:"lines,omitempty" jsonschema:"number of entries to return, default 50, max 1000"`
	Level  string `json:"level,omitempty" jsonschema:"minimum level: debug, info, warn or error"`
	Source string `json:"source,omitempty" jsonschema:"only return entries with this source label"`
}

// TailEntry is one log record as returned by log_tail.
type TailEntry struct {
	Time    string `json:"time,omitempty" jsonschema:"record timestamp, RFC 3339 UTC"`
	Level   string `json:"level,omitempty"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
	Line    string `json:"line" jsonschema:"the raw line as stored on disk"`
}

// TailOutput defines the output schema for the log_tail tool.
type TailOutput struct {
	Entries []TailEntry `json:"entries"`
}

var tools = []ToolInfo{
	{
		Name:        "log_stats",
		Description: "Size and file count of the NetView backend log directory, with the configured limits.",
	},
	{
		Name:        "log_files",
		Description: "List the NetView backend log files, newest first. The first file is the one being written.",
	},
	{
		Name:        "log_tail",
		Description: "Return the most recent NetView backend log entries across all rotated files, optionally filtered by minimum level and source.",
	},
}

// NewServer creates an MCP server reading from logs.
func NewServer(logs *logging.RotatingLogger) (*Server, error) {
	if logs == nil {
		return nil, errors.New("rotating logger is required")
	}

	s := &Server{
		logs: logs,
		viewer: logging.NewViewer(logging.ViewerConfig{
			NoColor: true,
			Prefix:  logs.Config().FilePrefix,
		}, nil),
		logger: slog.Default().With(slog.String("source", "mcp")),
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Version,
	}, nil)
	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), tools...)
}

// CallTool invokes a tool by name and returns its markdown rendering.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "log_stats":
		out, err := s.handleStats()
		if err != nil {
			return "", MapError(err)
		}
		return FormatStats(out), nil
	case "log_files":
		out, err := s.handleFiles()
		if err != nil {
			return "", MapError(err)
		}
		return FormatFiles(out.Files), nil
	case "log_tail":
		var in TailInput
		if n, ok := args["lines"].(float64); ok {
			in.Lines = int(n)
		}
		in.Level, _ = args["level"].(string)
		in.Source, _ = args["source"].(string)
		out, err := s.handleTail(ctx, in)
		if err != nil {
			return "", MapError(err)
		}
		return FormatTail(out.Entries), nil
	default:
		return "", NewMethodNotFoundError(name)
	}
}

// Serve runs the server over stdio until ctx is done or the client hangs up.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting MCP server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped")
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.mcpStatsHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.mcpFilesHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.mcpTailHandler)
	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

func (s *Server) mcpStatsHandler(_ context.Context, _ *mcp.CallToolRequest, _ StatsInput) (
	*mcp.CallToolResult,
	logging.Stats,
	error,
) {
	out, err := s.handleStats()
	if err != nil {
		return nil, logging.Stats{}, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpFilesHandler(_ context.Context, _ *mcp.CallToolRequest, _ FilesInput) (
	*mcp.CallToolResult,
	FilesOutput,
	error,
) {
	out, err := s.handleFiles()
	if err != nil {
		return nil, FilesOutput{}, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) mcpTailHandler(ctx context.Context, _ *mcp.CallToolRequest, in TailInput) (
	*mcp.CallToolResult,
	TailOutput,
	error,
) {
	out, err := s.handleTail(ctx, in)
	if err != nil {
		return nil, TailOutput{}, MapError(err)
	}
	return nil, out, nil
}

func (s *Server) handleStats() (logging.Stats, error) {
	return s.logs.Stats()
}

func (s *Server) handleFiles() (FilesOutput, error) {
	files, err := s.logs.Files()
	if err != nil {
		return FilesOutput{}, err
	}
	if files == nil {
		files = []string{}
	}
	return FilesOutput{Files: files}, nil
}

func (s *Server) handleTail(ctx context.Context, in TailInput) (TailOutput, error) {
	start := time.Now()
	requestID := generateRequestID()

	var level string
	if in.Level != "" {
		lvl, err := logging.ParseLevel(in.Level)
		if err != nil {
			return TailOutput{}, err
		}
		level = lvl.String()
	}
	lines := clampLimit(in.Lines, defaultTailLines, 1, maxTailLines)

	entries, err := s.viewer.WithFilter(level, in.Source).Tail(ctx, s.logs.Directory(), lines)
	if err != nil {
		s.logger.Error("log_tail failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return TailOutput{}, err
	}

	out := TailOutput{Entries: make([]TailEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, toTailEntry(e))
	}

	s.logger.Debug("log_tail completed",
		slog.String("request_id", requestID),
		slog.Int("lines", lines),
		slog.Int("result_count", len(out.Entries)),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

func toTailEntry(e logging.LogEntry) TailEntry {
	if !e.IsValid {
		return TailEntry{Message: e.Raw, Line: e.Raw}
	}
	return TailEntry{
		Time:    e.Time.UTC().Format(time.RFC3339Nano),
		Level:   e.Level,
		Source:  e.Source,
		Message: e.Msg,
		Line:    e.Raw,
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
