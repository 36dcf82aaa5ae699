// Package mcpserver exposes the export pipeline over MCP (Model Context
// Protocol) via stdio transport, so LLM tooling can inspect the blog source.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/outline"
)

// Server wraps the MCP server with ansuz tools. Every tool call re-reads the
// source outline, so results always reflect the file on disk.
type Server struct {
	mcp        *server.MCPServer
	sourcePath string
	opts       export.Options
}

// New creates an MCP server over the outline at sourcePath.
func New(sourcePath string, opts export.Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	s := &Server{sourcePath: sourcePath, opts: opts}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List every exportable post in the source outline with its resolved output path and metadata."),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Render a single post to its final markdown document (front matter plus body)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Resolved output path as reported by list_posts (e.g. posts/my-post.md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the outline conventions a subtree must follow to be exported. "+
			"Read this before editing the source document."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource("ansuz://post-format", "Post Format Contract",
			mcp.WithResourceDescription("Outline subtree conventions recognized by the exporter."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// exports parses the source file and resolves the exportable set.
func (s *Server) exports() ([]outline.Export, error) {
	f, err := os.Open(s.sourcePath)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	doc, err := outline.Parse(f)
	if err != nil {
		return nil, err
	}
	return doc.Exportables(s.opts.DefaultSection)
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exports, err := s.exports()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	posts := make([]models.Post, 0, len(exports))
	for _, ex := range exports {
		meta, synthErr := export.Synthesize(ex.Node, s.opts.DefaultDraft, s.opts.Location)
		if synthErr != nil {
			posts = append(posts, models.Post{Path: ex.Path, Title: ex.Node.Title})
			continue
		}
		posts = append(posts, models.Post{
			Path:  ex.Path,
			Title: meta.Title,
			Date:  meta.Date,
			Tags:  meta.Tags,
			Draft: meta.Draft,
		})
	}

	out, _ := json.MarshalIndent(posts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	exports, err := s.exports()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	for _, ex := range exports {
		if ex.Path != path {
			continue
		}
		meta, synthErr := export.Synthesize(ex.Node, s.opts.DefaultDraft, s.opts.Location)
		if synthErr != nil {
			return mcp.NewToolResultError(synthErr.Error()), nil
		}
		doc, renderErr := export.Render(meta, export.Transform(ex.Node.Body))
		if renderErr != nil {
			return mcp.NewToolResultError(renderErr.Error()), nil
		}
		return mcp.NewToolResultText(string(doc)), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
}

func (s *Server) getPostFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
