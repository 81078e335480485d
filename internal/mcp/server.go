package mcp

import (
	"context"
	"log/slog"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskminder/internal/reminder"
)

const (
	ServerName    = "deskminder"
	ServerVersion = "0.1.0"
)

// Store is the reminder store the tools operate on.
type Store interface {
	List(ctx context.Context) ([]*reminder.Reminder, error)
	Put(r *reminder.Reminder) error
	Delete(id string) error
	SetCompleted(id string, completed bool) (*reminder.Reminder, error)
	Resolve(ctx context.Context, prefix string) (string, error)
}

// Server is the MCP server exposing reminder management tools. The running
// widget picks up changes through the store watcher, so tools never talk to
// it directly.
type Server struct {
	mcpServer *mcpsdk.Server
	store     Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewServer creates a new MCP server over store.
func NewServer(store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:  store,
		logger: logger,
		now:    time.Now,
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
		Name:        "list_reminders",
		Description: "List desktop reminders ordered by their next occurrence. Completed reminders are hidden unless include_completed is set.",
	}, s.handleListReminders)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_reminder",
		Description: "Add a reminder to the desktop widget. Frequency defaults to a one-off reminder for today. Optionally pin it to a time (at) or a time range (from/to). Returns the created reminder with its ID.",
	}, s.handleAddReminder)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "complete_reminder",
		Description: "Mark a reminder completed, or pending again with undo=true. Accepts a full ID or a unique prefix.",
	}, s.handleCompleteReminder)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_reminder",
		Description: "Delete a reminder permanently. Accepts a full ID or a unique prefix.",
	}, s.handleRemoveReminder)
}
