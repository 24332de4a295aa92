package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"

	"github.com/R167/lintbridge/internal/output"
	"github.com/R167/lintbridge/internal/runner"
	"github.com/R167/lintbridge/internal/security"
)

const (
	ToolLintProject = "lint_project"
	ToolLintStatus  = "lint_status"
)

var descriptions = map[string]string{
	ToolLintProject: "Run arduino-lint on an Arduino sketch or library directory and return its JSON report",
	ToolLintStatus:  "Report whether arduino-lint is installed, where it was found and which version it is",
}

// ToolNames lists every tool the server registers, sorted.
func ToolNames() []string {
	names := make([]string, 0, len(descriptions))
	for name := range descriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Linter is the part of *runner.Runner the server needs.
type Linter interface {
	Path() string
	IsAvailable() bool
	Version(ctx context.Context) (string, bool)
	LintProject(ctx context.Context, req runner.Request) (*runner.Outcome, error)
}

type Server struct {
	linter  Linter
	limiter *rate.Limiter
	logger  *slog.Logger
	version string
}

type Option func(*Server)

// WithLimiter bounds how fast lint processes are spawned.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version announced to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

func NewServer(linter Linter, opts ...Option) *Server {
	s := &Server{
		linter:  linter,
		limiter: security.NewToolLimiter(security.DefaultToolRate, security.DefaultToolBurst),
		logger:  slog.Default(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MCPServer builds the protocol server with every tool registered.
func (s *Server) MCPServer() *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "lintbridge",
		Version: s.version,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolLintProject,
		Description: descriptions[ToolLintProject],
	}, s.lintProject)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolLintStatus,
		Description: descriptions[ToolLintStatus],
	}, s.lintStatus)

	return server
}

// Run serves MCP over stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", slog.String("binary", s.linter.Path()))
	if err := s.MCPServer().Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		s.logger.Error("mcp server failed", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *Server) lintProject(ctx context.Context, _ *mcpsdk.CallToolRequest, input LintProjectInput) (*mcpsdk.CallToolResult, LintProjectOutput, error) {
	path, err := security.ValidateProjectPath(input.Path)
	if err != nil {
		return toolError(err.Error()), LintProjectOutput{}, nil
	}
	if err := security.ValidateOptionValue("compliance", input.Compliance); err != nil {
		return toolError(err.Error()), LintProjectOutput{}, nil
	}
	if err := security.ValidateOptionValue("library_manager", input.LibraryManager); err != nil {
		return toolError(err.Error()), LintProjectOutput{}, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, LintProjectOutput{}, fmt.Errorf("waiting for lint slot: %w", err)
		}
	}

	outcome, err := s.linter.LintProject(ctx, runner.Request{
		Path:           path,
		Compliance:     input.Compliance,
		LibraryManager: input.LibraryManager,
	})
	if errors.Is(err, runner.ErrNotInstalled) {
		s.logger.Warn("lint requested but arduino-lint is missing", slog.String("binary", s.linter.Path()))
		return toolError(err.Error() + "\n" + output.InstallHint), LintProjectOutput{}, nil
	}
	if err != nil {
		return nil, LintProjectOutput{}, err
	}

	out, err := newLintProjectOutput(outcome)
	if err != nil {
		return nil, LintProjectOutput{}, err
	}
	text, err := json.Marshal(outcome)
	if err != nil {
		return nil, LintProjectOutput{}, err
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(text)},
		},
	}, out, nil
}

func (s *Server) lintStatus(ctx context.Context, _ *mcpsdk.CallToolRequest, _ LintStatusInput) (*mcpsdk.CallToolResult, LintStatusOutput, error) {
	out := LintStatusOutput{
		Installed: s.linter.IsAvailable(),
		Path:      s.linter.Path(),
	}
	if out.Installed {
		if v, ok := s.linter.Version(ctx); ok {
			out.Version = v
		}
	}

	text := fmt.Sprintf("arduino-lint at %q: not installed\n%s", out.Path, output.InstallHint)
	if out.Installed {
		text = fmt.Sprintf("arduino-lint at %q: installed, version %s", out.Path, orUnknown(out.Version))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
	}, out, nil
}

func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: msg},
		},
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
