package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"codeward/component/tool"
	"codeward/config"
	"codeward/pkg/schema"
	"codeward/safety"
)

// connectTimeout bounds startup per server so one hung subprocess
// cannot stall the whole session launch.
const connectTimeout = 15 * time.Second

// Loader starts configured MCP servers over stdio and registers their
// tools into the shared registry under mcp_<server>_<tool> names.
type Loader struct {
	mu      sync.Mutex
	clients []*client.Client
}

func NewLoader() *Loader {
	return &Loader{}
}

// ToolName builds the registry name for a remote tool.
func ToolName(server, remote string) string {
	return "mcp_" + server + "_" + remote
}

// Connect starts every configured server. A server that fails to start
// is logged and skipped; one bad entry must not take the session down.
func (l *Loader) Connect(ctx context.Context, servers []config.MCPServerConfig, registry *tool.Registry, catalog *safety.Catalog) {
	for _, cfg := range servers {
		if err := l.connectOne(ctx, cfg, registry, catalog); err != nil {
			slog.Warn("[mcp] server skipped", "name", cfg.Name, "error", err)
		}
	}
}

func (l *Loader) connectOne(ctx context.Context, cfg config.MCPServerConfig, registry *tool.Registry, catalog *safety.Catalog) error {
	if cfg.Name == "" || cfg.Command == "" {
		return fmt.Errorf("mcp server entry needs both name and command")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	c, err := client.NewStdioMCPClient(cfg.Command, cfg.Env, cfg.Args...)
	if err != nil {
		return fmt.Errorf("start %s: %w", cfg.Command, err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "codeward", Version: "dev"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		_ = c.Close()
		return fmt.Errorf("initialize: %w", err)
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = c.Close()
		return fmt.Errorf("list tools: %w", err)
	}

	for i := range listed.Tools {
		remote := &listed.Tools[i]
		name := ToolName(cfg.Name, remote.Name)

		description := remote.Description
		if description == "" {
			description = fmt.Sprintf("Tool %s provided by MCP server %s", remote.Name, cfg.Name)
		}

		registry.Register(&serverTool{
			client:      c,
			remote:      remote.Name,
			name:        name,
			description: description,
			schema:      toSchema(remote.InputSchema),
		})
		// Remote tools run code this process has never seen. Always
		// gated, whatever the server claims about them.
		catalog.Register(name, safety.Profile{
			Category: safety.CategoryOther,
			Reason:   fmt.Sprintf("Runs remote tool on MCP server %s", cfg.Name),
			Severity: safety.SeverityMedium,
			Gated:    true,
		})
	}

	l.mu.Lock()
	l.clients = append(l.clients, c)
	l.mu.Unlock()

	slog.Info("[mcp] server connected", "name", cfg.Name, "tools", len(listed.Tools))
	return nil
}

// Close shuts down every connected server subprocess.
func (l *Loader) Close() {
	l.mu.Lock()
	clients := l.clients
	l.clients = nil
	l.mu.Unlock()

	for _, c := range clients {
		_ = c.Close()
	}
}

func toSchema(in mcp.ToolInputSchema) *schema.Schema {
	if len(in.Properties) == 0 {
		return nil
	}
	return schema.Schema{Properties: in.Properties, Required: in.Required}.Ptr()
}

// serverTool adapts one remote MCP tool to the registry interface.
type serverTool struct {
	client      *client.Client
	remote      string
	name        string
	description string
	schema      *schema.Schema
}

func (t *serverTool) Definition() tool.Definition {
	return tool.Definition{
		Name:        t.name,
		Description: t.description,
		Schema:      t.schema,
		Dangerous:   true,
	}
}

func (t *serverTool) Invoke(ctx context.Context, arguments string) (string, error) {
	var args map[string]any
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", t.name, err)
		}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = t.remote
	req.Params.Arguments = args

	res, err := t.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("mcp call %s: %w", t.name, err)
	}

	text := flattenContent(res.Content)
	if res.IsError {
		if text == "" {
			text = "tool reported an error without details"
		}
		return "", fmt.Errorf("%s", text)
	}
	if text == "" {
		return "(no output)", nil
	}
	return text, nil
}

// flattenContent joins the text blocks of a result. Non-text content
// is skipped; the model only reads text.
func flattenContent(items []mcp.Content) string {
	var sb strings.Builder
	for _, item := range items {
		tc, ok := item.(mcp.TextContent)
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(tc.Text)
	}
	return sb.String()
}
